// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/cache"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/util"
)

// StreamApology replaces assistant content when a stream fails.
const StreamApology = "Sorry, something went wrong while generating this response. Please try again."

// blogProgressCap holds the length-estimated progress below 100% until
// the completion signal arrives.
const blogProgressCap = 90

// blogTargetLength is the content length treated as "about done" when
// estimating blog generation progress.
const blogTargetLength = 4000

// SendEvents are the callbacks driving the send-message protocol. Every
// callback is optional.
type SendEvents struct {
	// UserMessage fires immediately with the optimistic local message,
	// before any network call completes.
	UserMessage func(*model.Message)

	// AssistantPlaceholder fires once the backend accepted the send and
	// assigned message ids.
	AssistantPlaceholder func(*model.Message)

	// Content fires for each accumulated text state of the stream.
	Content func(messageID, text string)

	// Complete fires with the final content.
	Complete func(messageID, final string)

	// Progress fires for blog generation only, with a coarse 0-100
	// percentage.
	Progress func(percent int)
}

// Service wires the backend client to the shared conversation cache
// and implements the send/stream/archive protocols the views consume.
type Service struct {
	client *Client
	cache  *cache.ConversationCache
	log    *logrus.Entry
}

// NewService creates the conversation service.
func NewService(client *Client, convCache *cache.ConversationCache) *Service {
	return &Service{
		client: client,
		cache:  convCache,
		log:    logrus.WithField("component", "service"),
	}
}

// Client exposes the underlying API client for the non-interactive
// commands.
func (s *Service) Client() *Client {
	return s.client
}

// CacheStats reports the conversation cache counters, logged when the
// interactive session ends.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// =============================================================================
// LIST / GET
// =============================================================================

// Conversations returns the conversation list, served from the cache
// while it is fresh. force bypasses the freshness check.
func (s *Service) Conversations(ctx context.Context, force bool) ([]*model.Conversation, error) {
	if !force && !s.cache.IsStale(time.Now()) {
		list, _ := s.cache.Get()
		return list, nil
	}

	list, err := s.client.ListConversations(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetFromServer(list)
	return list, nil
}

// Conversation fetches a single conversation with messages.
func (s *Service) Conversation(ctx context.Context, id string) (*model.Conversation, error) {
	return s.client.GetConversation(ctx, id)
}

// Create starts a new conversation and invalidates the cached list so
// the next list render refetches.
func (s *Service) Create(ctx context.Context, title string) (*model.Conversation, error) {
	conv, err := s.client.CreateConversation(ctx, title)
	if err != nil {
		return nil, err
	}
	s.cache.Clear()
	return conv, nil
}

// =============================================================================
// SEND MESSAGE PROTOCOL
// =============================================================================

// SendMessage runs the full send protocol against a conversation:
//
//  1. validate non-empty trimmed input
//  2. optimistic local user message (temporary id)
//  3. POST the trimmed content
//  4. empty assistant placeholder under the backend-assigned id
//  5. stream keyed by that id, each state replacing placeholder content
//  6. final content on completion
//
// On stream failure the placeholder content becomes StreamApology and
// the classified error is returned through the shared path.
func (s *Service) SendMessage(ctx context.Context, conv *model.Conversation, content string, ev SendEvents) error {
	return s.send(ctx, conv, content, false, ev)
}

// GenerateBlog is the blog-generation variant: same placeholder-then-
// stream shape, with the IsBlog flag set and coarse length-based
// progress reported through ev.Progress.
func (s *Service) GenerateBlog(ctx context.Context, conv *model.Conversation, content string, ev SendEvents) error {
	return s.send(ctx, conv, content, true, ev)
}

func (s *Service) send(ctx context.Context, conv *model.Conversation, content string, isBlog bool, ev SendEvents) error {
	const op = "send_message"

	trimmed, ok := util.TrimmedOrEmpty(content)
	if !ok {
		return classify(op, ErrEmptyInput)
	}

	// Optimistic user message so the UI updates before the network.
	userMsg := model.NewUserMessage(trimmed)
	conv.AddMessage(userMsg)
	if ev.UserMessage != nil {
		ev.UserMessage(userMsg)
	}

	resp, err := s.client.PostMessage(ctx, conv.ID, trimmed)
	if err != nil {
		return err
	}
	if resp.UserMessageID != "" {
		conv.ReplaceMessageID(userMsg.ID, resp.UserMessageID)
	}

	placeholder := model.NewAssistantPlaceholder(resp.AssistantMessageID)
	placeholder.IsBlog = isBlog
	conv.AddMessage(placeholder)
	if ev.AssistantPlaceholder != nil {
		ev.AssistantPlaceholder(placeholder)
	}

	streamErr := s.client.StreamResponse(ctx, conv.ID, placeholder.ID, func(u StreamUpdate) {
		switch {
		case u.Err != nil:
			// Terminal; handled below.
		case u.Done:
			placeholder.Finalize(u.Text)
			// Resetting the bar after a hold is the view's concern; no
			// callback fires after Complete.
			if isBlog && ev.Progress != nil {
				ev.Progress(100)
			}
			if ev.Complete != nil {
				ev.Complete(placeholder.ID, u.Text)
			}
		default:
			placeholder.SetContent(u.Text)
			if isBlog && ev.Progress != nil {
				ev.Progress(estimateBlogProgress(len(u.Text)))
			}
			if ev.Content != nil {
				ev.Content(placeholder.ID, u.Text)
			}
		}
	})

	if streamErr != nil {
		placeholder.Finalize(StreamApology)
		if ev.Content != nil {
			ev.Content(placeholder.ID, StreamApology)
		}
		s.log.WithField("conversation", conv.ID).WithError(streamErr).Warn("stream failed")
		return streamErr
	}

	return nil
}

// estimateBlogProgress maps accumulated content length to a 0-90
// percentage; only the completion signal reaches 100.
func estimateBlogProgress(length int) int {
	pct := length * blogProgressCap / blogTargetLength
	if pct > blogProgressCap {
		pct = blogProgressCap
	}
	return pct
}

// =============================================================================
// ARCHIVE / DELETE
// =============================================================================

// Archive archives a conversation and removes it from the cached list
// immediately, without waiting for a refetch.
func (s *Service) Archive(ctx context.Context, id string) error {
	if err := s.client.ArchiveConversation(ctx, id); err != nil {
		return err
	}
	s.cache.Remove(id)
	return nil
}
