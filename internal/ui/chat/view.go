// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/components"
)

// inputHeight is the fixed height of the compose box.
const inputHeight = 3

// layout sizes the viewport and input to the current window.
func (m *Model) layout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}

	header := 1
	status := 1
	banner := 0
	if m.banner != nil {
		banner = 1
	}

	m.viewport.Width = m.width
	m.viewport.Height = m.height - header - status - banner - inputHeight - 2
	if m.viewport.Height < 3 {
		m.viewport.Height = 3
	}
	m.input.SetWidth(m.width - 4)
}

// refreshViewport re-renders the message list into the viewport.
// gotoBottom keeps the latest message in view, which is what streaming
// wants; manual scrolling skips it.
func (m *Model) refreshViewport(gotoBottom bool) {
	if m.width <= 0 {
		return
	}

	var b strings.Builder
	for i, item := range m.items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.messages.Render(item, m.width, true))
	}
	m.viewport.SetContent(b.String())

	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// View draws the chat screen.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	if m.state == StateLoading {
		loading := lipgloss.Place(
			m.width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center,
			m.spin.View()+" Loading conversation...",
		)
		sections = append(sections, loading)
	} else {
		sections = append(sections, m.viewport.View())
	}

	if m.banner != nil {
		sections = append(sections, m.banner.Render(m.theme, m.width))
	}

	sections = append(sections, m.renderInput())
	sections = append(sections, m.renderStatus())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := "New conversation"
	if m.conversation != nil && m.conversation.Title != "" {
		title = m.conversation.Title
	}

	right := ""
	switch {
	case m.blogProgress > 0:
		right = m.theme.StatusKey.Render(fmt.Sprintf("blog %d%%", m.blogProgress))
	case m.state == StateStreaming:
		right = m.spin.View() + " generating"
	}

	left := m.theme.HeaderTitle.Render(title)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m Model) renderStatus() string {
	shortcuts := []components.Shortcut{
		{Key: "enter", Desc: "send"},
		{Key: "ctrl+b", Desc: "blog"},
		{Key: "ctrl+y", Desc: m.copy.Label()},
		{Key: "esc", Desc: "back"},
	}
	if m.state == StateError {
		shortcuts = append(shortcuts, components.Shortcut{Key: "ctrl+r", Desc: "retry"})
	}
	return m.status.Render(shortcuts, m.width)
}
