// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/styles"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/util"
)

// Shortcut pairs a key with what it does, for the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar renders the bottom help row.
type StatusBar struct {
	theme *styles.Theme
}

// NewStatusBar creates a status bar with the given theme.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{theme: theme}
}

// Render draws the shortcuts, dropping trailing entries that do not
// fit so the bar stays a single line on narrow terminals.
func (s *StatusBar) Render(shortcuts []Shortcut, width int) string {
	var parts []string
	used := 0
	for _, sc := range shortcuts {
		w := util.StringWidth(sc.Key + " " + sc.Desc)
		if len(parts) > 0 {
			w += 2
		}
		if width > 0 && used+w > width {
			break
		}
		used += w
		parts = append(parts,
			s.theme.StatusKey.Render(sc.Key)+" "+s.theme.StatusDesc.Render(sc.Desc))
	}
	line := strings.Join(parts, "  ")
	return s.theme.StatusBar.Width(width).Render(line)
}
