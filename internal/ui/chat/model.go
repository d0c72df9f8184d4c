// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the conversation detail view.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/api"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/components"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/styles"
)

// State is the chat view's lifecycle position.
type State int

const (
	StateLoading   State = iota // Fetching the conversation
	StateReady                  // Ready for input
	StateStreaming              // Assistant response in flight
	StateError                  // Showing an error
)

// BackMsg asks the root model to return to the conversation list.
type BackMsg struct{}

// SignInRequestMsg asks the root model to run the sign-in flow.
type SignInRequestMsg struct{}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	state State
	theme *styles.Theme

	width  int
	height int

	svc            *api.Service
	conversationID string
	conversation   *model.Conversation

	// items is the view's own copy of the message list. The service
	// goroutine mutates the conversation during a send, so rendering
	// reads only this slice; it is resynced once the stream finishes.
	items []*model.Message

	// Streaming bridge; nil when idle.
	stream           chan tea.Msg
	debounceInterval time.Duration
	streamingMsgID   string
	blogProgress     int

	// Components
	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model
	messages *components.MessageView
	status   *components.StatusBar
	banner   *components.ErrorBanner
	copy     components.CopyState

	keys KeyMap

	// lastSend remembers the failed input for the retry binding.
	lastSend     string
	lastSendBlog bool
}

// New creates the chat view for one conversation.
func New(svc *api.Service, conversationID string, theme *styles.Theme, debounceInterval time.Duration) Model {
	input := textarea.New()
	input.Placeholder = "Message..."
	input.CharLimit = 4000
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		state:            StateLoading,
		theme:            theme,
		svc:              svc,
		conversationID:   conversationID,
		debounceInterval: debounceInterval,
		viewport:         viewport.New(0, 0),
		input:            input,
		spin:             sp,
		messages:         components.NewMessageView(theme),
		status:           components.NewStatusBar(theme),
		keys:             DefaultKeyMap(),
	}
}

// Init fetches the conversation.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadConversation(), m.spin.Tick, textarea.Blink)
}

// Conversation returns the loaded conversation, or nil while loading.
func (m Model) Conversation() *model.Conversation {
	return m.conversation
}

// Streaming reports whether an assistant response is in flight.
func (m Model) Streaming() bool {
	return m.state == StateStreaming
}
