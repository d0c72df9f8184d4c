// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// =============================================================================
// STREAM TYPES
// =============================================================================

// StreamUpdate is one state of an in-flight assistant response. Text is
// always the full accumulated content so far; callers replace, never
// concatenate; the latest state wins.
type StreamUpdate struct {
	MessageID string
	Text      string
	Done      bool
	Err       error
}

// StreamCallback receives each accumulated state in order.
type StreamCallback func(StreamUpdate)

// streamChunk is the wire format of one SSE data event.
type streamChunk struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
	Error   string `json:"error,omitempty"`
}

// =============================================================================
// SSE READER
// =============================================================================

// sseReader parses Server-Sent Events from a response body.
type sseReader struct {
	reader *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{reader: bufio.NewReader(r)}
}

// readEvent returns the data payload of the next SSE event, or io.EOF
// when the stream ends. Non-data fields (event:, id:, retry:, comments)
// are ignored.
func (s *sseReader) readEvent() ([]byte, error) {
	var dataLines [][]byte

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Blank line terminates an event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("data:")) {
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
	}
}

// =============================================================================
// STREAMING RESPONSE CONSUMER
// =============================================================================

// StreamResponse opens the streaming connection for an assistant
// message and delivers accumulated text states through the callback.
// The transport guarantees ordering: one logical stream per message id,
// never multiplexed. Returns once the stream completes, fails, or the
// context is canceled.
func (c *Client) StreamResponse(ctx context.Context, conversationID, messageID string, callback StreamCallback) error {
	const op = "stream_response"

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return classify(op, err)
	}

	path := c.baseURL + "/conversations/" + url.PathEscape(conversationID) +
		"/messages/" + url.PathEscape(messageID) + "/stream"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return classify(op, err)
	}
	c.setHeaders(req, token)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := sharedStreamingClient.Do(req)
	if err != nil {
		return classify(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return classifyStatus(op, resp.StatusCode, raw)
	}

	return c.consumeStream(ctx, op, messageID, resp.Body, callback)
}

// consumeStream reads SSE events, accumulating chunk content so every
// callback carries the latest full text.
func (c *Client) consumeStream(ctx context.Context, op, messageID string, body io.Reader, callback StreamCallback) error {
	reader := newSSEReader(body)
	var accumulated strings.Builder

	for {
		select {
		case <-ctx.Done():
			return classify(op, ctx.Err())
		default:
		}

		data, err := reader.readEvent()
		if err != nil {
			if err == io.EOF {
				callback(StreamUpdate{MessageID: messageID, Text: accumulated.String(), Done: true})
				return nil
			}
			se := classify(op, err)
			callback(StreamUpdate{MessageID: messageID, Text: accumulated.String(), Err: se})
			return se
		}

		if bytes.Equal(data, []byte("[DONE]")) {
			callback(StreamUpdate{MessageID: messageID, Text: accumulated.String(), Done: true})
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks rather than aborting the stream.
			continue
		}

		if chunk.Error != "" {
			se := &ServiceError{Kind: KindTransient, Op: op, Message: chunk.Error}
			callback(StreamUpdate{MessageID: messageID, Text: accumulated.String(), Err: se})
			return se
		}

		accumulated.WriteString(chunk.Content)
		callback(StreamUpdate{MessageID: messageID, Text: accumulated.String()})

		if chunk.Done {
			callback(StreamUpdate{MessageID: messageID, Text: accumulated.String(), Done: true})
			return nil
		}
	}
}
