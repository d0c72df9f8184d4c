// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small leaf utilities shared across the client.
package util

import (
	"strconv"
	"time"
)

// RelativeTime formats a timestamp as a short human-readable age
// relative to now: "just now", "3m ago", "3h ago", "2d ago". Anything
// older than a week falls back to an absolute date.
func RelativeTime(t time.Time) string {
	return RelativeTimeAt(t, time.Now())
}

// RelativeTimeAt is RelativeTime with an explicit reference time.
func RelativeTimeAt(t, now time.Time) string {
	d := now.Sub(t)

	switch {
	case d < 0:
		// Clock skew between client and backend timestamps.
		return "just now"
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d.Hours())) + "h ago"
	case d < 7*24*time.Hour:
		return strconv.Itoa(int(d.Hours()/24)) + "d ago"
	}

	if t.Year() == now.Year() {
		return t.Format("Jan 2")
	}
	return t.Format("Jan 2, 2006")
}
