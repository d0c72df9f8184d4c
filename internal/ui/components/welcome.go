// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/styles"
)

// Welcome renders the signed-out landing view with the sign-in
// prompt, and the auth error banner when one is active.
type Welcome struct {
	theme *styles.Theme
}

// NewWelcome creates the landing view renderer.
func NewWelcome(theme *styles.Theme) *Welcome {
	return &Welcome{theme: theme}
}

// Render draws the landing screen. banner is the active auth error
// message ("" for none); signingIn switches the prompt to a progress
// note.
func (w *Welcome) Render(width, height int, banner string, signingIn bool) string {
	var b strings.Builder

	b.WriteString(w.theme.HeaderTitle.Render("AI Reddit"))
	b.WriteString("\n\n")
	b.WriteString("Converse with an AI, turn threads into posts, share them.\n\n")

	if banner != "" {
		b.WriteString(w.theme.ErrorBanner.Width(width * 2 / 3).Render(banner))
		b.WriteString("\n\n")
	}

	if signingIn {
		b.WriteString(w.theme.Spinner.Render("Waiting for the browser sign-in to finish..."))
	} else {
		b.WriteString(w.theme.StatusKey.Render("s") + "  Sign in with Google\n")
		b.WriteString(w.theme.StatusKey.Render("q") + "  Quit")
	}

	content := b.String()
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
