// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"testing"
	"time"
)

func TestExtractCodeBlocks(t *testing.T) {
	text := "intro\n```go\nfunc main() {}\n```\nmiddle\n```\nplain\n```\n"

	blocks := ExtractCodeBlocks(text)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}

	if blocks[0].Language != "go" || blocks[0].Code != "func main() {}" {
		t.Errorf("block 0 = %+v", blocks[0])
	}
	if blocks[1].Language != "" || blocks[1].Code != "plain" {
		t.Errorf("block 1 = %+v", blocks[1])
	}
}

func TestExtractCodeBlocksUnclosedTail(t *testing.T) {
	blocks := ExtractCodeBlocks("```python\nprint(1)")
	if len(blocks) != 1 {
		t.Fatalf("expected the unclosed block, got %d", len(blocks))
	}
	if blocks[0].Language != "python" || blocks[0].Code != "print(1)" {
		t.Errorf("block = %+v", blocks[0])
	}
}

func TestHasLanguage(t *testing.T) {
	if !(CodeBlock{Language: "go"}).HasLanguage() {
		t.Error("go should be a recognized language")
	}
	if (CodeBlock{Language: ""}).HasLanguage() {
		t.Error("unlabeled block has no language")
	}
	if (CodeBlock{Language: "notareallang999"}).HasLanguage() {
		t.Error("unknown tag should not count as recognized")
	}
}

func TestDisplayLanguage(t *testing.T) {
	if got := (CodeBlock{Language: "go"}).DisplayLanguage(); got != "Go" {
		t.Errorf("DisplayLanguage = %q", got)
	}
	if got := (CodeBlock{}).DisplayLanguage(); got != "" {
		t.Errorf("empty language should stay empty, got %q", got)
	}
}

func TestHighlightUnknownLanguagePassthrough(t *testing.T) {
	b := CodeBlock{Language: "", Code: "just text"}
	if got := b.Highlight(); got != "just text" {
		t.Errorf("unlabeled block should pass through, got %q", got)
	}
}

func TestCopyButtonWritesRawSource(t *testing.T) {
	var copied string
	orig := CopyFunc
	CopyFunc = func(s string) error {
		copied = s
		return nil
	}
	defer func() { CopyFunc = orig }()

	block := CodeBlock{Language: "go", Code: "fmt.Println(\"hi\")"}
	var btn CopyButton
	if err := btn.Copy(block); err != nil {
		t.Fatalf("Copy failed: %v", err)
	}

	// The clipboard receives the exact un-highlighted source.
	if copied != block.Code {
		t.Errorf("clipboard got %q, want %q", copied, block.Code)
	}
}

func TestCopyButtonLabelReverts(t *testing.T) {
	orig := CopyFunc
	CopyFunc = func(string) error { return nil }
	defer func() { CopyFunc = orig }()

	var btn CopyButton
	now := time.Now()

	if got := btn.Label(now); got != "Copy" {
		t.Errorf("initial label = %q", got)
	}

	if err := btn.Copy(CodeBlock{Code: "x"}); err != nil {
		t.Fatal(err)
	}

	if got := btn.Label(time.Now()); got != "Copied!" {
		t.Errorf("label right after copy = %q", got)
	}
	if got := btn.Label(time.Now().Add(CopiedDuration + time.Millisecond)); got != "Copy" {
		t.Errorf("label after window = %q", got)
	}
}
