// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/api"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/components"
)

// blogProgressHold is how long the finished progress bar stays at 100%.
const blogProgressHold = 2 * time.Second

// blogProgressResetMsg clears the progress bar after the hold.
type blogProgressResetMsg struct{}

// Update handles one Bubble Tea message.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.Resize(msg.Width, msg.Height)
		m.layout()
		m.refreshViewport(true)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state == StateLoading || m.state == StateStreaming {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case ConversationLoadedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.banner = components.BannerFor(msg.Err)
			return m, nil
		}
		m.conversation = msg.Conversation
		m.items = append([]*model.Message(nil), msg.Conversation.Messages...)
		m.state = StateReady
		m.banner = nil
		m.refreshViewport(true)
		return m, nil

	case UserMessageMsg:
		m.items = append(m.items, msg.Message)
		m.refreshViewport(true)
		return m, m.waitStream()

	case PlaceholderMsg:
		m.items = append(m.items, msg.Message)
		m.streamingMsgID = msg.Message.ID
		m.refreshViewport(true)
		return m, m.waitStream()

	case StreamContentMsg:
		if item := m.itemByID(msg.MessageID); item != nil {
			item.SetContent(msg.Text)
		}
		m.refreshViewport(true)
		return m, m.waitStream()

	case StreamDoneMsg:
		if item := m.itemByID(msg.MessageID); item != nil {
			item.Finalize(msg.Text)
		}
		m.streamingMsgID = ""
		m.refreshViewport(true)
		return m, m.waitStream()

	case StreamErrMsg:
		m.state = StateError
		m.banner = components.BannerFor(msg.Err)
		if m.banner != nil && m.banner.Retryable {
			m.banner.Hint = "press ctrl+r to retry"
		}
		// The placeholder already carries the apology text.
		if item := m.itemByID(m.streamingMsgID); item != nil {
			item.Finalize(streamApologyFor(item))
		}
		m.streamingMsgID = ""
		m.refreshViewport(true)
		return m, m.waitStream()

	case BlogProgressMsg:
		m.blogProgress = msg.Percent
		return m, m.waitStream()

	case streamFinishedMsg:
		m.stream = nil
		if m.conversation != nil {
			// The send goroutine is done; the conversation is
			// authoritative again.
			m.items = append([]*model.Message(nil), m.conversation.Messages...)
		}
		if m.state == StateStreaming {
			m.state = StateReady
		}
		m.refreshViewport(true)
		if m.blogProgress > 0 {
			return m, tea.Tick(blogProgressHold, func(time.Time) tea.Msg {
				return blogProgressResetMsg{}
			})
		}
		return m, nil

	case blogProgressResetMsg:
		m.blogProgress = 0
		return m, nil

	case CopiedMsg:
		if msg.Err != nil {
			m.banner = &components.ErrorBanner{Message: "Copy failed: clipboard unavailable."}
		}
		return m, nil

	case CopyLabelResetMsg:
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.state != StateStreaming {
			return m, func() tea.Msg { return BackMsg{} }
		}
		return m, nil

	case key.Matches(msg, m.keys.Send):
		return m.submit(false)

	case key.Matches(msg, m.keys.Blog):
		return m.submit(true)

	case key.Matches(msg, m.keys.Retry):
		if m.state == StateError && m.banner != nil && m.banner.NeedsSignIn {
			return m, func() tea.Msg { return SignInRequestMsg{} }
		}
		if m.state == StateError && m.lastSend != "" {
			m.state = StateStreaming
			m.banner = nil
			cmd := m.startSend(m.lastSend, m.lastSendBlog)
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m.copyLastCodeBlock()

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.ScrollDn):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a send (or blog generation) from the input box.
func (m Model) submit(blog bool) (Model, tea.Cmd) {
	if m.state != StateReady || m.conversation == nil {
		return m, nil
	}

	content := m.input.Value()
	if content == "" {
		return m, nil
	}

	m.input.Reset()
	m.banner = nil
	m.lastSend = content
	m.lastSendBlog = blog
	m.state = StateStreaming

	cmd := m.startSend(content, blog)
	return m, cmd
}

// copyLastCodeBlock copies the last code block of the most recent
// assistant message.
func (m Model) copyLastCodeBlock() (Model, tea.Cmd) {
	for i := len(m.items) - 1; i >= 0; i-- {
		blocks := m.messages.CodeBlocks(m.items[i])
		if len(blocks) > 0 {
			return m, m.copyBlock(blocks[len(blocks)-1])
		}
	}
	return m, nil
}

func (m *Model) itemByID(id string) *model.Message {
	if id == "" {
		return nil
	}
	for _, item := range m.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// streamApologyFor keeps already-delivered apology text; the content
// event usually lands before the error does.
func streamApologyFor(item *model.Message) string {
	if item.Content != "" {
		return item.Content
	}
	return api.StreamApology
}
