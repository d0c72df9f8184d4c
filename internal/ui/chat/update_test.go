// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/api"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m := New(nil, "c1", styles.NewTheme(80, 24), 0)
	m.width = 80
	m.height = 24
	return m
}

func loadedModel(t *testing.T) Model {
	t.Helper()
	m := newTestModel(t)
	conv := &model.Conversation{ID: "c1", Title: "Test"}
	m, _ = m.Update(ConversationLoadedMsg{Conversation: conv})
	return m
}

func TestConversationLoaded(t *testing.T) {
	m := newTestModel(t)
	conv := &model.Conversation{
		ID:    "c1",
		Title: "Test",
		Messages: []*model.Message{
			{ID: "m1", Role: model.RoleUser, Content: "hi"},
		},
	}

	m, _ = m.Update(ConversationLoadedMsg{Conversation: conv})

	if m.state != StateReady {
		t.Fatalf("state = %v, want Ready", m.state)
	}
	if len(m.items) != 1 {
		t.Fatalf("items = %d, want 1", len(m.items))
	}
}

func TestConversationLoadError(t *testing.T) {
	m := newTestModel(t)
	m, _ = m.Update(ConversationLoadedMsg{Err: errors.New("boom")})

	if m.state != StateError {
		t.Fatalf("state = %v, want Error", m.state)
	}
	if m.banner == nil {
		t.Fatal("expected an error banner")
	}
}

func TestStreamContentReplacesPlaceholder(t *testing.T) {
	m := loadedModel(t)

	placeholder := model.NewAssistantPlaceholder("a1")
	m, _ = m.Update(PlaceholderMsg{Message: placeholder})
	m, _ = m.Update(StreamContentMsg{MessageID: "a1", Text: "Hello"})
	m, _ = m.Update(StreamContentMsg{MessageID: "a1", Text: "Hello there"})

	item := m.itemByID("a1")
	if item == nil {
		t.Fatal("placeholder not tracked")
	}
	if item.Content != "Hello there" {
		t.Fatalf("content = %q, want replaced accumulated text", item.Content)
	}
	if !item.IsStreaming {
		t.Fatal("message should still be streaming")
	}
}

func TestStreamDoneFinalizes(t *testing.T) {
	m := loadedModel(t)

	m, _ = m.Update(PlaceholderMsg{Message: model.NewAssistantPlaceholder("a1")})
	m, _ = m.Update(StreamDoneMsg{MessageID: "a1", Text: "Final answer."})

	item := m.itemByID("a1")
	if item.IsStreaming {
		t.Fatal("message should be finalized")
	}
	if item.Content != "Final answer." {
		t.Fatalf("content = %q", item.Content)
	}
	if m.streamingMsgID != "" {
		t.Fatal("streaming id should be cleared")
	}
}

func TestStreamErrorShowsApologyAndBanner(t *testing.T) {
	m := loadedModel(t)

	m, _ = m.Update(PlaceholderMsg{Message: model.NewAssistantPlaceholder("a1")})
	m, _ = m.Update(StreamErrMsg{Err: errors.New("connection reset")})

	if m.state != StateError {
		t.Fatalf("state = %v, want Error", m.state)
	}
	if m.banner == nil {
		t.Fatal("expected banner")
	}
	item := m.itemByID("a1")
	if item.Content != api.StreamApology {
		t.Fatalf("content = %q, want apology", item.Content)
	}
}

func TestStreamFinishedResyncsFromConversation(t *testing.T) {
	m := loadedModel(t)
	m.state = StateStreaming
	m.conversation.AddMessage(&model.Message{ID: "u1", Role: model.RoleUser, Content: "hi"})

	m, _ = m.Update(streamFinishedMsg{})

	if m.state != StateReady {
		t.Fatalf("state = %v, want Ready", m.state)
	}
	if m.stream != nil {
		t.Fatal("stream channel should be released")
	}
	if len(m.items) != 1 || m.items[0].ID != "u1" {
		t.Fatal("items should resync from the conversation")
	}
}

func TestBlogProgressLifecycle(t *testing.T) {
	m := loadedModel(t)

	m, _ = m.Update(BlogProgressMsg{Percent: 45})
	if m.blogProgress != 45 {
		t.Fatalf("progress = %d, want 45", m.blogProgress)
	}

	m, _ = m.Update(BlogProgressMsg{Percent: 100})
	m.state = StateStreaming
	var cmd tea.Cmd
	m, cmd = m.Update(streamFinishedMsg{})
	if cmd == nil {
		t.Fatal("expected a reset tick while progress is showing")
	}

	m, _ = m.Update(blogProgressResetMsg{})
	if m.blogProgress != 0 {
		t.Fatalf("progress = %d, want 0 after reset", m.blogProgress)
	}
}

func TestSubmitRejectsEmptyAndWrongState(t *testing.T) {
	m := loadedModel(t)

	var cmd tea.Cmd
	m, cmd = m.submit(false)
	if cmd != nil {
		t.Fatal("empty input should not start a send")
	}

	m.input.SetValue("hello")
	m.state = StateStreaming
	m, cmd = m.submit(false)
	if cmd != nil {
		t.Fatal("a send should not start while one is in flight")
	}
}
