// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown converts raw (possibly mid-stream, truncated)
// Markdown into safe rendered output. The HTML path runs goldmark and a
// bluemonday allow-list policy; the terminal path runs glamour with
// chroma-highlighted code blocks.
package markdown

import (
	"regexp"
	"strings"
)

// Fence is the code fence delimiter the cleanup passes balance.
const Fence = "```"

var (
	// A line consisting only of 1-6 hashes at the end of the buffer is
	// a heading the stream has not finished yet.
	trailingHeadingRe = regexp.MustCompile(`(^|\n)#{1,6}[ \t]*$`)

	// A bare bullet or ordered-list marker with no content after it.
	trailingListRe = regexp.MustCompile(`(^|\n)(?:[-*+]|\d+\.)[ \t]*$`)

	// "[label](partial-url" at the very end of the buffer, closing
	// paren not received yet. Anchored so brackets earlier in the
	// buffer are never touched.
	trailingLinkURLRe = regexp.MustCompile(`\[[^\]\n]*\]\([^)\s]*$`)

	// A "[" on the final line that never got its "]".
	trailingLinkOpenRe = regexp.MustCompile(`\[[^\]\n]*$`)
)

// CleanupStreaming patches incomplete Markdown syntax at the tail of a
// partially received buffer so the parser renders sensibly between
// chunks. The passes are heuristic and intentionally lossy at the tail
// only; content that was already complete earlier in the buffer is
// never altered. Applying the function twice yields the same result.
func CleanupStreaming(text string) string {
	if text == "" {
		return text
	}

	// Fence balancing runs last: the strip passes may shorten the tail,
	// and a fence appended before them could be stripped again, leaving
	// the count odd.
	text = stripDanglingLink(text)
	text = stripTrailingHeading(text)
	text = stripTrailingListMarker(text)
	text = closeOpenFence(text)

	return text
}

// closeOpenFence appends a closing fence when an odd number of
// triple-backtick fences exist, so the parser does not swallow all
// trailing content as one giant code block.
func closeOpenFence(text string) string {
	if strings.Count(text, Fence)%2 == 0 {
		return text
	}
	if strings.HasSuffix(text, "\n") {
		return text + Fence
	}
	return text + "\n" + Fence
}

// stripTrailingHeading drops hash characters at the end of the buffer
// that have no heading text after them yet. "# Title" is left alone.
func stripTrailingHeading(text string) string {
	return trailingHeadingRe.ReplaceAllString(text, "$1")
}

// stripTrailingListMarker drops a list-item marker with no content.
func stripTrailingListMarker(text string) string {
	return trailingListRe.ReplaceAllString(text, "$1")
}

// stripDanglingLink drops an unterminated link construct at the very
// end of the buffer: either "[label](partial-url" with no closing
// paren, or a "[" on the final line that was never closed. Brackets
// earlier in the buffer, matched or not, are left alone.
func stripDanglingLink(text string) string {
	if loc := trailingLinkURLRe.FindStringIndex(text); loc != nil {
		return strings.TrimRight(text[:loc[0]], " \t")
	}
	if loc := trailingLinkOpenRe.FindStringIndex(text); loc != nil {
		return strings.TrimRight(text[:loc[0]], " \t")
	}
	return text
}
