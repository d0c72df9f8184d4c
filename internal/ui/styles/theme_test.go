// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme(120, 40)
	if theme.Width != 120 || theme.Height != 40 {
		t.Errorf("dimensions = %dx%d, want 120x40", theme.Width, theme.Height)
	}
}

func TestResize(t *testing.T) {
	theme := NewTheme(80, 24)
	theme.Resize(200, 50)
	if theme.Width != 200 || theme.Height != 50 {
		t.Errorf("dimensions = %dx%d, want 200x50", theme.Width, theme.Height)
	}
}
