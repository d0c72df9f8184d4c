// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a chat conversation with its metadata and ordered
// messages. A conversation is owned by a single user and mutated only
// by send, archive and delete operations.
type Conversation struct {
	ID           string    `json:"conversationId"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int       `json:"messageCount"`

	// ForkedFrom references the conversation this one was forked from,
	// empty for originals.
	ForkedFrom string `json:"forkedFrom,omitempty"`

	Messages []*Message `json:"messages,omitempty"`
}

// AddMessage appends a message and updates metadata.
func (c *Conversation) AddMessage(msg *Message) {
	msg.ConversationID = c.ID
	c.Messages = append(c.Messages, msg)
	c.MessageCount = len(c.Messages)
	c.UpdatedAt = time.Now()
}

// LastMessage returns the most recent message, or nil if empty.
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageByID returns a message by its id, or nil.
func (c *Conversation) MessageByID(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// ReplaceMessageID swaps a temporary id for the backend-assigned one
// once the server confirms the send.
func (c *Conversation) ReplaceMessageID(tempID, realID string) bool {
	for _, msg := range c.Messages {
		if msg.ID == tempID {
			msg.ID = realID
			return true
		}
	}
	return false
}

// StreamingMessage returns the in-flight assistant placeholder, or nil
// when no stream is active. At most one stream is ever attached to a
// conversation.
func (c *Conversation) StreamingMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].IsStreaming {
			return c.Messages[i]
		}
	}
	return nil
}

// Preview returns a short summary line for list views.
func (c *Conversation) Preview() string {
	if c.Title != "" {
		return c.Title
	}
	if last := c.LastMessage(); last != nil {
		return last.Preview(60)
	}
	return "New conversation"
}

// =============================================================================
// USER PROFILE
// =============================================================================

// UserProfile is the identity confirmed by the OAuth provider. It is
// derived from the id-token claims and never persisted by this client.
type UserProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}
