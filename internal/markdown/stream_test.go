// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strings"
	"testing"
)

// =============================================================================
// FENCE BALANCING
// =============================================================================

func TestCleanupClosesOddFences(t *testing.T) {
	inputs := []string{
		"```go\nfunc main() {",
		"intro\n```python\nprint(1)\n",
		"```",
		"a\n```\ncode\n```\nb\n```js\npartial",
	}

	for _, in := range inputs {
		out := CleanupStreaming(in)
		if strings.Count(out, Fence)%2 != 0 {
			t.Errorf("odd fence count survived cleanup: %q -> %q", in, out)
		}
	}
}

func TestCleanupLeavesBalancedFences(t *testing.T) {
	in := "```go\nfunc main() {}\n```\ndone"
	if out := CleanupStreaming(in); out != in {
		t.Errorf("balanced fences modified: %q -> %q", in, out)
	}
}

// =============================================================================
// TRAILING HEADING
// =============================================================================

func TestCleanupStripsBareTrailingHeading(t *testing.T) {
	for _, hashes := range []string{"#", "##", "###", "####", "#####", "######"} {
		in := "Some text.\n" + hashes
		out := CleanupStreaming(in)
		if strings.HasSuffix(out, hashes) {
			t.Errorf("trailing %q not stripped: %q", hashes, out)
		}
	}

	// With trailing whitespace after the hashes.
	if out := CleanupStreaming("text\n##  "); strings.Contains(out, "#") {
		t.Errorf("trailing heading with spaces not stripped: %q", out)
	}

	// Buffer that is nothing but a heading marker.
	if out := CleanupStreaming("##"); strings.Contains(out, "#") {
		t.Errorf("lone heading marker not stripped: %q", out)
	}
}

func TestCleanupKeepsCompleteHeading(t *testing.T) {
	in := "intro\n# Title"
	if out := CleanupStreaming(in); out != in {
		t.Errorf("complete heading modified: %q -> %q", in, out)
	}
}

// =============================================================================
// TRAILING LIST MARKER
// =============================================================================

func TestCleanupStripsBareListMarker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Items:\n- first\n-", "Items:\n- first\n"},
		{"Items:\n* first\n*", "Items:\n* first\n"},
		{"Items:\n1. first\n2.", "Items:\n1. first\n"},
		{"Items:\n- first\n- ", "Items:\n- first\n"},
		// A list item with content stays.
		{"Items:\n- first\n- second", "Items:\n- first\n- second"},
	}
	for _, tt := range tests {
		if got := CleanupStreaming(tt.in); got != tt.want {
			t.Errorf("CleanupStreaming(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// DANGLING LINKS
// =============================================================================

func TestCleanupStripsDanglingLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"open bracket", "see [the do", "see"},
		{"open url", "see [docs](https://exa", "see"},
		{"complete link kept", "see [docs](https://example.com) now", "see [docs](https://example.com) now"},
		{"earlier complete link kept", "[a](https://x.dev) then [b", "[a](https://x.dev) then"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanupStreaming(tt.in); got != tt.want {
				t.Errorf("CleanupStreaming(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanupKeepsContentAfterUnmatchedBracket(t *testing.T) {
	// An unmatched "[" in an earlier line is finished content, not a
	// dangling link; nothing after it may be dropped.
	in := "The array a[5 overflows.\n\nA totally complete later paragraph."
	if got := CleanupStreaming(in); got != in {
		t.Errorf("content after mid-buffer bracket altered:\n in: %q\nout: %q", in, got)
	}
}

func TestCleanupBalancesFenceAfterBracketStrip(t *testing.T) {
	// The bracket strip shortens the tail; the fence appended for the
	// open ```go block must survive it.
	in := "intro ```go\nitems[0 = x"
	out := CleanupStreaming(in)
	if strings.Count(out, Fence)%2 != 0 {
		t.Errorf("odd fence count after cleanup: %q -> %q", in, out)
	}
	if out != CleanupStreaming(out) {
		t.Errorf("not idempotent: %q -> %q", out, CleanupStreaming(out))
	}
}

// =============================================================================
// GENERAL PROPERTIES
// =============================================================================

func TestCleanupIsIdempotent(t *testing.T) {
	inputs := []string{
		"```go\npartial",
		"text\n##",
		"list:\n- ",
		"see [link](https://part",
		"plain paragraph with **bold** and a [link](https://example.com).",
	}

	for _, in := range inputs {
		once := CleanupStreaming(in)
		twice := CleanupStreaming(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCleanupEmptyInput(t *testing.T) {
	if out := CleanupStreaming(""); out != "" {
		t.Errorf("empty input changed: %q", out)
	}
}

func TestCleanupDoesNotTouchEarlierContent(t *testing.T) {
	prefix := "# Done heading\n\n- done item\n\n[done](https://example.com)\n\n```go\nfmt.Println(1)\n```\n\n"
	in := prefix + "```python\npartial"
	out := CleanupStreaming(in)
	if !strings.HasPrefix(out, prefix) {
		t.Errorf("earlier complete content was altered:\n%q", out)
	}
}
