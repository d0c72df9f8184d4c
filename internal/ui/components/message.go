// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the TUI.
package components

import (
	"strings"
	"time"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/markdown"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/styles"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/util"
)

// MessageView renders chat messages as bordered bubbles. Assistant
// content goes through the markdown renderer; user content is shown
// verbatim.
type MessageView struct {
	theme    *styles.Theme
	renderer *markdown.Renderer
}

// NewMessageView creates a message renderer with the given theme.
func NewMessageView(theme *styles.Theme) *MessageView {
	return &MessageView{
		theme:    theme,
		renderer: markdown.NewRenderer(),
	}
}

// Render draws one message bubble at the given width. showTimestamp
// appends a relative time beneath the bubble.
func (v *MessageView) Render(msg *model.Message, width int, showTimestamp bool) string {
	if width < 20 {
		width = 20
	}
	bubbleWidth := width * 4 / 5

	var body string
	var style = v.theme.AssistantBubble

	switch {
	case msg.Role == model.RoleUser:
		style = v.theme.UserBubble
		body = strings.TrimRight(msg.Content, "\n")
	case msg.IsStreaming && msg.Content == "":
		style = v.theme.StreamingBubble
		body = "..."
	case msg.IsStreaming:
		style = v.theme.StreamingBubble
		body = v.renderer.RenderTerminal(msg.Content, true, bubbleWidth-4)
	default:
		body = v.renderer.RenderTerminal(msg.Content, false, bubbleWidth-4)
	}

	bubble := style.Width(bubbleWidth).Render(body)

	if showTimestamp && !msg.CreatedAt.IsZero() {
		stamp := v.theme.Timestamp.Render(util.RelativeTime(msg.CreatedAt))
		bubble += "\n" + stamp
	}
	return bubble
}

// CodeBlocks returns the extractable code blocks of a message, for the
// copy keybinding.
func (v *MessageView) CodeBlocks(msg *model.Message) []markdown.CodeBlock {
	if msg == nil || msg.Role != model.RoleAssistant {
		return nil
	}
	return markdown.ExtractCodeBlocks(msg.Content)
}

// CopyState tracks the transient "Copied!" label for the chat view.
type CopyState struct {
	button markdown.CopyButton
}

// Copy writes the block's raw source to the clipboard.
func (s *CopyState) Copy(block markdown.CodeBlock) error {
	return s.button.Copy(block)
}

// Label returns "Copied!" for a short window after a copy, otherwise
// "Copy".
func (s *CopyState) Label() string {
	return s.button.Label(time.Now())
}
