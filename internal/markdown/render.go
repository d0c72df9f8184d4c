// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"bytes"
	"errors"
	"html"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts Markdown into sanitized HTML or styled terminal
// output. One Renderer is shared per view; it is safe for concurrent
// use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu    sync.Mutex
	term  *glamour.TermRenderer
	width int
}

// NewRenderer builds a renderer with tables, strikethrough, fenced code
// and autolinks enabled, and an allow-list sanitizer over the output.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			// Raw HTML in the source is escaped by goldmark's default
			// renderer; the sanitizer strips anything that remains.
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.Linkify,
			),
		),
		policy: sanitizePolicy(),
	}
}

// sanitizePolicy builds the allow-list: tables, headings, emphasis,
// strikethrough, code, links, blockquotes, lists. Links always come out
// with target="_blank" and rel="noopener noreferrer nofollow"; relative
// URLs are rejected outright so every surviving link gets the full
// attribute set.
func sanitizePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "hr",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"em", "strong", "del", "s",
		"ul", "ol", "li",
		"blockquote",
		"pre", "code",
		"table", "thead", "tbody", "tr", "th", "td",
	)
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code")
	p.AllowAttrs("align").Matching(bluemonday.CellAlign).OnElements("th", "td")

	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.AllowRelativeURLs(false)
	p.RequireNoFollowOnLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return p
}

// RenderHTML converts text to sanitized HTML. With streaming set, the
// tail cleanup passes run first. Conversion failure degrades to the
// escaped raw text rather than surfacing an error to the host view.
func (r *Renderer) RenderHTML(text string, streaming bool) string {
	if streaming {
		text = CleanupStreaming(text)
	}

	out, err := r.convert(text)
	if err != nil {
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return r.policy.Sanitize(out)
}

// convert isolates the goldmark call so a parser panic on malformed
// input degrades instead of crashing the view.
func (r *Renderer) convert(text string) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errRenderPanic
		}
	}()

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderTerminal converts text to styled terminal output at the given
// wrap width. Any glamour failure falls back to the plain text.
func (r *Renderer) RenderTerminal(text string, streaming bool, width int) string {
	if streaming {
		text = CleanupStreaming(text)
	}

	term, err := r.termRenderer(width)
	if err != nil {
		return text
	}

	out, err := term.Render(text)
	if err != nil {
		return text
	}
	return out
}

// termRenderer returns the cached glamour renderer, rebuilding it when
// the wrap width changes (terminal resize).
func (r *Renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = 80
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.term != nil && r.width == width {
		return r.term, nil
	}

	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}

	r.term = term
	r.width = width
	return term, nil
}

var errRenderPanic = errors.New("markdown: renderer panic")
