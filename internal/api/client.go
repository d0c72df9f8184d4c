// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout bounds non-streaming requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the retry budget for idempotent reads.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps the backoff.
	retryMaxDelay = 8 * time.Second

	// MaxResponseSize caps response bodies read into memory.
	MaxResponseSize = 10 * 1024 * 1024
)

// Shared transports with connection pooling; the streaming client has
// no client-level timeout, cancellation is context-driven.
var (
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
		Timeout: DefaultTimeout,
	}

	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
)

// TokenSource supplies the backend access token for each request. The
// session manager implements this by re-reading the token cache and
// re-checking expiry on every call rather than trusting an in-memory
// copy. Returns ErrNoSession when no valid token exists.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client talks to the ai-reddit backend API.
type Client struct {
	baseURL    string
	tokens     TokenSource
	maxRetries int
	limiter    *rate.Limiter
	log        *logrus.Entry
}

// NewClient creates a backend client.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		maxRetries: DefaultMaxRetries,
		// Polite per-client request budget; streaming connections are
		// long-lived and excluded.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		log:     logrus.WithField("component", "api"),
	}
}

// WithMaxRetries sets the retry budget for idempotent reads.
func (c *Client) WithMaxRetries(n int) *Client {
	c.maxRetries = n
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// createConversationRequest is the POST /conversations body.
type createConversationRequest struct {
	Title string `json:"title,omitempty"`
}

// sendMessageRequest is the POST /conversations/{id}/messages body.
type sendMessageRequest struct {
	Content string `json:"content"`
}

// sendMessageResponse carries the backend-assigned message ids.
type sendMessageResponse struct {
	UserMessageID      string `json:"userMessageId"`
	AssistantMessageID string `json:"assistantMessageId"`
}

// archiveRequest is the PUT /conversations/{id} body. Archive is the
// only user-facing delete; the record survives server-side.
type archiveRequest struct {
	Status string `json:"status"`
}

// ListConversations fetches the user's conversation list.
func (c *Client) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	var out []*model.Conversation
	if err := c.getJSON(ctx, "list_conversations", "/conversations", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetConversation fetches one conversation with its messages.
func (c *Client) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	var out model.Conversation
	if err := c.getJSON(ctx, "get_conversation", "/conversations/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateConversation creates a new conversation.
func (c *Client) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	const op = "create_conversation"

	var out model.Conversation
	err := c.doJSON(ctx, op, http.MethodPost, "/conversations", createConversationRequest{Title: title}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PostMessage submits user content and returns the backend-assigned
// message ids. Content must already be validated non-empty.
func (c *Client) PostMessage(ctx context.Context, conversationID, content string) (*sendMessageResponse, error) {
	const op = "send_message"

	var out sendMessageResponse
	path := "/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.doJSON(ctx, op, http.MethodPost, path, sendMessageRequest{Content: content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArchiveConversation sets the archive flag.
func (c *Client) ArchiveConversation(ctx context.Context, id string) error {
	const op = "archive_conversation"
	path := "/conversations/" + url.PathEscape(id)
	return c.doJSON(ctx, op, http.MethodPut, path, archiveRequest{Status: "archived"}, nil)
}

// DeleteConversation performs a hard delete. Kept for API parity; the
// UI only ever archives.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	const op = "delete_conversation"
	path := "/conversations/" + url.PathEscape(id)
	return c.doJSON(ctx, op, http.MethodDelete, path, nil, nil)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// getJSON performs an idempotent GET with retry/backoff.
func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return classify(op, ctx.Err())
			case <-time.After(backoffDelay(attempt)):
			}
		}

		err := c.doJSON(ctx, op, http.MethodGet, path, nil, out)
		if err == nil {
			return nil
		}

		var se *ServiceError
		if errors.As(err, &se) && se.Retryable() {
			lastErr = err
			c.log.WithField("op", op).WithField("attempt", attempt+1).Debug("retrying after transient failure")
			continue
		}
		return err
	}

	return lastErr
}

// doJSON performs a single authenticated request and decodes the
// response into out (out may be nil for empty responses).
func (c *Client) doJSON(ctx context.Context, op, method, path string, body, out any) error {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return classify(op, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return classify(op, err)
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return classify(op, fmt.Errorf("failed to marshal request: %w", err))
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return classify(op, err)
	}
	c.setHeaders(req, token)

	start := time.Now()
	resp, err := sharedHTTPClient.Do(req)
	if err != nil {
		return classify(op, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"op":       op,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("request complete")

	raw, err := readBody(resp)
	if err != nil {
		return classify(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(op, resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return classify(op, fmt.Errorf("failed to parse response: %w", err))
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ai-reddit-tui/0.1")
}

// readBody reads a response body with a size cap.
func readBody(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(raw)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded %d bytes", MaxResponseSize)
	}
	return raw, nil
}

// backoffDelay returns the exponential backoff for an attempt.
func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
