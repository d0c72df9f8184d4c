// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// Bubble Tea message types the view consumes: conversation loading,
// the send protocol, stream progress, and copy feedback.

import (
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
)

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ConversationLoadedMsg delivers a fetched conversation with its
// messages.
type ConversationLoadedMsg struct {
	Conversation *model.Conversation
	Err          error
}

// =============================================================================
// SEND / STREAM MESSAGES
// =============================================================================

// UserMessageMsg carries the optimistic local user message, shown
// before the network round trip completes.
type UserMessageMsg struct {
	Message *model.Message
}

// PlaceholderMsg signals that the backend accepted the send and the
// empty assistant bubble should appear.
type PlaceholderMsg struct {
	Message *model.Message
}

// StreamContentMsg delivers a debounced accumulated-content state for
// the streaming assistant message. Text replaces previous content.
type StreamContentMsg struct {
	MessageID string
	Text      string
}

// StreamDoneMsg signals stream completion with the final content.
type StreamDoneMsg struct {
	MessageID string
	Text      string
}

// StreamErrMsg signals that the send or stream failed. The assistant
// placeholder already carries the apology text.
type StreamErrMsg struct {
	Err error
}

// BlogProgressMsg reports coarse blog generation progress (0-100).
type BlogProgressMsg struct {
	Percent int
}

// =============================================================================
// COPY MESSAGES
// =============================================================================

// CopiedMsg reports the outcome of a code block copy.
type CopiedMsg struct {
	Err error
}

// CopyLabelResetMsg fires when the "Copied!" label should revert.
type CopyLabelResetMsg struct{}
