// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/components"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/util"
)

// View draws the conversation list.
func (m Model) View() string {
	if m.width <= 0 {
		return ""
	}

	var sections []string
	sections = append(sections, m.theme.Header.Width(m.width).Render(
		m.theme.HeaderTitle.Render("Conversations")))

	switch {
	case m.state == StateLoading:
		sections = append(sections, lipgloss.Place(
			m.width, m.listHeight(),
			lipgloss.Center, lipgloss.Center,
			m.spin.View()+" Loading conversations...",
		))
	case len(m.conversations) == 0:
		sections = append(sections, lipgloss.Place(
			m.width, m.listHeight(),
			lipgloss.Center, lipgloss.Center,
			m.theme.ListMeta.Render("No conversations yet. Press n to start one."),
		))
	default:
		sections = append(sections, m.renderRows())
	}

	if m.banner != nil {
		sections = append(sections, m.banner.Render(m.theme, m.width))
	}

	sections = append(sections, m.renderStatus())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) listHeight() int {
	h := m.height - 3
	if m.banner != nil {
		h--
	}
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) renderRows() string {
	// Each row takes two lines plus a blank; keep the cursor in view.
	perRow := 3
	visible := m.listHeight() / perRow
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.conversations) {
		end = len(m.conversations)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteString("\n")
		}
		b.WriteString(m.renderRow(m.conversations[i], i == m.cursor))
	}
	return b.String()
}

func (m Model) renderRow(conv *model.Conversation, selected bool) string {
	style := m.theme.ListItem
	if selected {
		style = m.theme.ListItemSelected
	}

	// Long titles wrap inside the row style and break the per-row height
	// assumption in renderRows, so clip them to the padded content area.
	title := m.theme.ListTitle.Render(util.TruncateWidth(conv.Preview(), m.width-8))
	meta := fmt.Sprintf("%d messages · %s",
		conv.MessageCount, util.RelativeTime(conv.UpdatedAt))
	if conv.ForkedFrom != "" {
		meta += " · forked"
	}

	body := title + "\n" + m.theme.ListMeta.Render(meta)
	return style.Width(m.width - 4).Render(body)
}

func (m Model) renderStatus() string {
	shortcuts := []components.Shortcut{
		{Key: "enter", Desc: "open"},
		{Key: "n", Desc: "new"},
		{Key: "a", Desc: "archive"},
		{Key: "r", Desc: "refresh"},
		{Key: "q", Desc: "quit"},
	}
	if m.banner != nil && m.banner.NeedsSignIn {
		shortcuts = append(shortcuts, components.Shortcut{Key: "s", Desc: "sign in"})
	}
	return m.status.Render(shortcuts, m.width)
}
