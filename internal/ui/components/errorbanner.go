// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/api"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/styles"
)

// ErrorBanner maps a service error to the banner the views draw. The
// authentication-required kind gets a sign-in prompt instead of a
// generic error, so callers can branch on NeedsSignIn.
type ErrorBanner struct {
	Message     string
	Hint        string
	NeedsSignIn bool
	Retryable   bool
}

// BannerFor builds the banner for a classified error. Returns nil for
// a nil error.
func BannerFor(err error) *ErrorBanner {
	if err == nil {
		return nil
	}

	kind := api.KindOf(err)
	msg := userMessage(err)

	switch kind {
	case api.KindAuthenticationRequired:
		return &ErrorBanner{
			Message:     msg,
			Hint:        "press s to sign in",
			NeedsSignIn: true,
		}
	case api.KindTransient:
		return &ErrorBanner{
			Message:   msg,
			Hint:      "press r to retry",
			Retryable: true,
		}
	case api.KindNotFound:
		return &ErrorBanner{
			Message: msg,
			Hint:    "press esc to go back",
		}
	case api.KindValidation, api.KindPermissionDenied:
		return &ErrorBanner{Message: msg}
	default:
		return &ErrorBanner{
			Message:   msg,
			Hint:      "press r to retry",
			Retryable: true,
		}
	}
}

// userMessage prefers the classified user-facing text over the raw
// error string.
func userMessage(err error) string {
	var se *api.ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return "Something went wrong. Please try again."
}

// Render draws the banner with the theme's error styling.
func (b *ErrorBanner) Render(theme *styles.Theme, width int) string {
	if b == nil {
		return ""
	}

	style := theme.ErrorBanner
	if b.Retryable {
		style = theme.WarningBanner
	}
	if b.NeedsSignIn {
		style = theme.InfoBanner
	}

	text := b.Message
	if b.Hint != "" {
		text += "  " + theme.Help.Render("("+b.Hint+")")
	}
	return style.Width(width - 2).Render(text)
}
