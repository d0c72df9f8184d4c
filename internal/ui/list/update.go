// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package list

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/components"
)

// Update handles one Bubble Tea message.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state == StateLoading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case snapshotMsg:
		// Only fills the gap while the network fetch is in flight.
		if m.state == StateLoading && len(msg.conversations) > 0 {
			m.state = StateReady
			m.conversations = msg.conversations
			m.fromSnapshot = true
			m.clampCursor()
		}
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			// Keep showing snapshot rows under the banner if we have
			// them.
			if m.fromSnapshot {
				m.state = StateReady
			} else {
				m.state = StateError
			}
			m.banner = components.BannerFor(msg.err)
			return m, nil
		}
		m.state = StateReady
		m.banner = nil
		m.conversations = msg.conversations
		m.fromSnapshot = false
		m.clampCursor()
		return m, nil

	case createdMsg:
		if msg.err != nil {
			m.banner = components.BannerFor(msg.err)
			return m, nil
		}
		return m, func() tea.Msg {
			return OpenConversationMsg{Conversation: msg.conversation}
		}

	case archivedMsg:
		if msg.err != nil {
			// Put the row back where it was.
			if conv, ok := m.archived[msg.id]; ok {
				m.conversations = append(m.conversations, conv)
				delete(m.archived, msg.id)
			}
			m.banner = components.BannerFor(msg.err)
			return m, nil
		}
		delete(m.archived, msg.id)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.conversations)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Open):
		if conv := m.selected(); conv != nil {
			return m, func() tea.Msg {
				return OpenConversationMsg{Conversation: conv}
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		return m, m.create()

	case key.Matches(msg, m.keys.Archive):
		conv := m.selected()
		if conv == nil {
			return m, nil
		}
		// Optimistic removal; archivedMsg restores on failure.
		m.archived[conv.ID] = conv
		m.conversations = append(m.conversations[:m.cursor], m.conversations[m.cursor+1:]...)
		m.clampCursor()
		return m, m.archive(conv.ID)

	case key.Matches(msg, m.keys.Refresh):
		m.state = StateLoading
		m.banner = nil
		return m, tea.Batch(m.load(true), m.spin.Tick)

	case key.Matches(msg, m.keys.SignIn):
		if m.banner != nil && m.banner.NeedsSignIn {
			return m, func() tea.Msg { return SignInRequestMsg{} }
		}
		return m, nil
	}

	return m, nil
}

func (m Model) selected() *model.Conversation {
	if m.cursor < 0 || m.cursor >= len(m.conversations) {
		return nil
	}
	return m.conversations[m.cursor]
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.conversations) {
		m.cursor = len(m.conversations) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
