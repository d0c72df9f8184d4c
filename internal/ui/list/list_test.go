// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package list

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/styles"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/util"
)

func newTestModel(t *testing.T, convs ...*model.Conversation) Model {
	t.Helper()
	m := New(nil, nil, styles.NewTheme(80, 24))
	m.width = 80
	m.height = 24
	m, _ = m.Update(loadedMsg{conversations: convs})
	return m
}

func conv(id string) *model.Conversation {
	return &model.Conversation{ID: id, Title: "Conversation " + id}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLoadedSetsReady(t *testing.T) {
	m := newTestModel(t, conv("c1"), conv("c2"))
	if m.state != StateReady {
		t.Fatalf("state = %v, want Ready", m.state)
	}
	if len(m.conversations) != 2 {
		t.Fatalf("conversations = %d, want 2", len(m.conversations))
	}
}

func TestLoadErrorShowsBanner(t *testing.T) {
	m := New(nil, nil, styles.NewTheme(80, 24))
	m, _ = m.Update(loadedMsg{err: errors.New("boom")})
	if m.state != StateError {
		t.Fatalf("state = %v, want Error", m.state)
	}
	if m.banner == nil {
		t.Fatal("expected banner")
	}
}

func TestSnapshotFillsLoadingGap(t *testing.T) {
	m := New(nil, nil, styles.NewTheme(80, 24))

	m, _ = m.Update(snapshotMsg{conversations: []*model.Conversation{conv("c1")}})
	if m.state != StateReady || !m.fromSnapshot {
		t.Fatal("snapshot should render while the fetch is in flight")
	}

	// Server list supersedes the snapshot.
	m, _ = m.Update(loadedMsg{conversations: []*model.Conversation{conv("c1"), conv("c2")}})
	if m.fromSnapshot {
		t.Fatal("server data should clear the snapshot flag")
	}
	if len(m.conversations) != 2 {
		t.Fatalf("conversations = %d, want 2", len(m.conversations))
	}
}

func TestSnapshotSurvivesFetchFailure(t *testing.T) {
	m := New(nil, nil, styles.NewTheme(80, 24))
	m, _ = m.Update(snapshotMsg{conversations: []*model.Conversation{conv("c1")}})

	m, _ = m.Update(loadedMsg{err: errors.New("backend down")})

	if m.state != StateReady {
		t.Fatalf("state = %v, want Ready with snapshot rows", m.state)
	}
	if len(m.conversations) != 1 {
		t.Fatal("snapshot rows should survive the failed fetch")
	}
	if m.banner == nil {
		t.Fatal("failure should still surface a banner")
	}
}

func TestCursorMovementClamps(t *testing.T) {
	m := newTestModel(t, conv("c1"), conv("c2"))

	m, _ = m.handleKey(keyMsg("k"))
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0 at top", m.cursor)
	}

	m, _ = m.handleKey(keyMsg("j"))
	m, _ = m.handleKey(keyMsg("j"))
	m, _ = m.handleKey(keyMsg("j"))
	if m.cursor != 1 {
		t.Fatalf("cursor = %d, want clamped to 1", m.cursor)
	}
}

func TestOpenEmitsSelection(t *testing.T) {
	m := newTestModel(t, conv("c1"), conv("c2"))
	m, _ = m.handleKey(keyMsg("j"))

	_, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	open, ok := cmd().(OpenConversationMsg)
	if !ok {
		t.Fatalf("msg = %T, want OpenConversationMsg", cmd())
	}
	if open.Conversation.ID != "c2" {
		t.Fatalf("opened %s, want c2", open.Conversation.ID)
	}
}

func TestArchiveRemovesRowOptimistically(t *testing.T) {
	m := newTestModel(t, conv("c1"), conv("c2"))

	m, _ = m.handleKey(keyMsg("a"))

	if len(m.conversations) != 1 {
		t.Fatalf("conversations = %d, want 1 after optimistic removal", len(m.conversations))
	}
	if m.conversations[0].ID != "c2" {
		t.Fatalf("remaining = %s, want c2", m.conversations[0].ID)
	}
	if _, ok := m.archived["c1"]; !ok {
		t.Fatal("removed row should be remembered for rollback")
	}
}

func TestArchiveFailureRestoresRow(t *testing.T) {
	m := newTestModel(t, conv("c1"))
	m, _ = m.handleKey(keyMsg("a"))

	m, _ = m.Update(archivedMsg{id: "c1", err: errors.New("http 500")})

	if len(m.conversations) != 1 {
		t.Fatal("row should be restored on failure")
	}
	if m.banner == nil {
		t.Fatal("expected a banner on archive failure")
	}
}

func TestArchiveSuccessForgetsRollback(t *testing.T) {
	m := newTestModel(t, conv("c1"))
	m, _ = m.handleKey(keyMsg("a"))

	m, _ = m.Update(archivedMsg{id: "c1"})

	if len(m.conversations) != 0 {
		t.Fatal("row should stay removed")
	}
	if len(m.archived) != 0 {
		t.Fatal("rollback entry should be dropped")
	}
}

func TestRenderRowClipsLongTitle(t *testing.T) {
	long := &model.Conversation{ID: "c1", Title: strings.Repeat("x", 200)}
	m := newTestModel(t, long)

	row := m.renderRow(long, false)
	lines := strings.Split(row, "\n")
	if len(lines) != 2 {
		t.Fatalf("row has %d lines, want title and meta only", len(lines))
	}
	for _, line := range lines {
		if w := util.StringWidth(stripAnsi(line)); w > m.width {
			t.Fatalf("row line width %d exceeds view width %d", w, m.width)
		}
	}
}

var ansiRe = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripAnsi(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func TestCursorClampsAfterArchiveLast(t *testing.T) {
	m := newTestModel(t, conv("c1"), conv("c2"))
	m, _ = m.handleKey(keyMsg("j"))
	m, _ = m.handleKey(keyMsg("a"))

	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}
}
