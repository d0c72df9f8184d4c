// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations,
// messages and the signed-in user.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// TempIDPrefix marks locally-created ids that have not been confirmed
// by the backend yet. Optimistically appended messages carry one until
// the server response (or the stream keyed by the real id) supersedes
// them.
const TempIDPrefix = "tmp_"

// Message is a single message in a conversation.
type Message struct {
	ID             string    `json:"messageId"`
	ConversationID string    `json:"conversationId,omitempty"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	IsBlog         bool      `json:"isBlog"`
	CreatedAt      time.Time `json:"createdAt"`

	// IsStreaming marks an assistant placeholder whose content is still
	// being replaced by the stream. Not part of the wire format.
	IsStreaming bool `json:"-"`
}

// NewUserMessage creates an optimistic local user message with a
// temporary id.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        NewTempID(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewAssistantPlaceholder creates the empty assistant message that a
// stream fills in. messageID is the backend-assigned id the stream is
// keyed by.
func NewAssistantPlaceholder(messageID string) *Message {
	return &Message{
		ID:          messageID,
		Role:        RoleAssistant,
		Content:     "",
		CreatedAt:   time.Now(),
		IsStreaming: true,
	}
}

// NewTempID generates a temporary client-side message id.
func NewTempID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTemporary reports whether the message still carries a client-side id.
func (m *Message) IsTemporary() bool {
	return strings.HasPrefix(m.ID, TempIDPrefix)
}

// SetContent replaces the message content with the latest full text
// from the stream. Streams deliver accumulated states, not deltas, so
// replacement (never append) is the correct operation here.
func (m *Message) SetContent(text string) {
	m.Content = text
}

// Finalize marks a streaming placeholder complete with its final text.
func (m *Message) Finalize(text string) {
	m.Content = text
	m.IsStreaming = false
}

// IsEmpty reports whether the message has no content.
func (m *Message) IsEmpty() bool {
	return m.Content == ""
}

// Preview returns a rune-safe truncated preview of the content.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.Content, maxLen)
}
