// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CopiedDuration is how long the copy affordance shows "Copied!" before
// reverting to "Copy".
const CopiedDuration = 1750 * time.Millisecond

// =============================================================================
// CODE BLOCK EXTRACTION
// =============================================================================

// CodeBlock is a fenced code block extracted from Markdown text.
type CodeBlock struct {
	Language string
	Code     string
}

// ExtractCodeBlocks returns all fenced code blocks in order. An
// unclosed trailing block (mid-stream) is included with whatever
// content has arrived.
func ExtractCodeBlocks(text string) []CodeBlock {
	var blocks []CodeBlock
	var inBlock bool
	var language string
	var codeLines []string

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, Fence) {
			if inBlock {
				blocks = append(blocks, CodeBlock{
					Language: language,
					Code:     strings.Join(codeLines, "\n"),
				})
				inBlock = false
				language = ""
				codeLines = nil
			} else {
				inBlock = true
				language = strings.TrimSpace(strings.TrimPrefix(line, Fence))
			}
			continue
		}
		if inBlock {
			codeLines = append(codeLines, line)
		}
	}

	if inBlock && len(codeLines) > 0 {
		blocks = append(blocks, CodeBlock{
			Language: language,
			Code:     strings.Join(codeLines, "\n"),
		})
	}

	return blocks
}

// HasLanguage reports whether the block carries a language tag chroma
// recognizes. Unlabeled or unknown blocks render as plain preformatted
// text.
func (b CodeBlock) HasLanguage() bool {
	return b.Language != "" && lexers.Get(b.Language) != nil
}

// DisplayLanguage returns the language name title-cased for the header
// bar ("go" -> "Go").
func (b CodeBlock) DisplayLanguage() string {
	if b.Language == "" {
		return ""
	}
	return cases.Title(language.English).String(b.Language)
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Highlight applies chroma terminal highlighting to the block. Blocks
// without a recognized language, and any tokenization failure, come
// back as the unmodified source.
func (b CodeBlock) Highlight() string {
	if !b.HasLanguage() {
		return b.Code
	}
	return highlightCode(b.Code, b.Language)
}

func highlightCode(code, lang string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// =============================================================================
// COPY AFFORDANCE
// =============================================================================

// CopyFunc writes text to the system clipboard. Swappable for tests.
var CopyFunc = clipboard.WriteAll

// CopyButton tracks the Copy/Copied! toggle for one code block.
type CopyButton struct {
	mu       sync.Mutex
	copiedAt time.Time
}

// Copy writes the raw, un-highlighted source text to the clipboard and
// starts the "Copied!" window.
func (cb *CopyButton) Copy(block CodeBlock) error {
	if err := CopyFunc(block.Code); err != nil {
		return err
	}

	cb.mu.Lock()
	cb.copiedAt = time.Now()
	cb.mu.Unlock()
	return nil
}

// Label returns "Copied!" inside the feedback window and "Copy"
// otherwise.
func (cb *CopyButton) Label(now time.Time) string {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.copiedAt.IsZero() && now.Sub(cb.copiedAt) < CopiedDuration {
		return "Copied!"
	}
	return "Copy"
}

// =============================================================================
// TERMINAL RENDERING
// =============================================================================

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	blockStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// RenderTerminalBlock renders the block with its header bar (language
// name plus the copy label) above the highlighted source.
func (b CodeBlock) RenderTerminalBlock(button *CopyButton, maxWidth int) string {
	if maxWidth < 24 {
		maxWidth = 24
	}

	var header string
	if b.HasLanguage() {
		header = headerStyle.Render(b.DisplayLanguage()+"  ·  "+button.Label(time.Now())) + "\n"
	}

	body := b.Highlight()
	return blockStyle.MaxWidth(maxWidth).Render(header + body)
}
