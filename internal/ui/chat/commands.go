// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/api"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/debounce"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/markdown"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
)

// streamBufferSize bounds the bridge channel between the service
// goroutine and the Bubble Tea event loop.
const streamBufferSize = 64

// streamFinishedMsg is the bridge's terminal sentinel; after it arrives
// the view stops listening on the channel.
type streamFinishedMsg struct{}

// loadConversation fetches the conversation with its messages.
func (m Model) loadConversation() tea.Cmd {
	svc, id := m.svc, m.conversationID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		conv, err := svc.Conversation(ctx, id)
		return ConversationLoadedMsg{Conversation: conv, Err: err}
	}
}

// startSend runs the send protocol in a goroutine and bridges its
// callbacks onto a channel the event loop drains via waitStream.
// Content updates pass through the debouncer so a fast stream does not
// flood the renderer; the completion flush delivers the last state
// before the done message.
func (m *Model) startSend(content string, blog bool) tea.Cmd {
	msgs := make(chan tea.Msg, streamBufferSize)
	m.stream = msgs

	deb := debounce.New(m.debounceInterval, func(s StreamContentMsg) {
		msgs <- s
	})
	deb.SetActive(true)

	svc, conv := m.svc, m.conversation
	go func() {
		ev := sendEvents(msgs, deb)

		var err error
		if blog {
			err = svc.GenerateBlog(context.Background(), conv, content, ev)
		} else {
			err = svc.SendMessage(context.Background(), conv, content, ev)
		}

		// No emits can happen after Stop returns, so the sentinel is
		// guaranteed to be the channel's last message.
		deb.Stop()
		if err != nil {
			msgs <- StreamErrMsg{Err: err}
		}
		msgs <- streamFinishedMsg{}
	}()

	return tea.Batch(m.waitStream(), m.spin.Tick)
}

// sendEvents adapts the service callbacks to bridge messages.
func sendEvents(msgs chan<- tea.Msg, deb *debounce.Debouncer[StreamContentMsg]) api.SendEvents {
	// The service keeps mutating the messages it hands out, so the view
	// gets value copies taken before streaming starts.
	return api.SendEvents{
		UserMessage: func(msg *model.Message) {
			c := *msg
			msgs <- UserMessageMsg{Message: &c}
		},
		AssistantPlaceholder: func(msg *model.Message) {
			c := *msg
			msgs <- PlaceholderMsg{Message: &c}
		},
		Content: func(messageID, text string) {
			deb.Push(StreamContentMsg{MessageID: messageID, Text: text})
		},
		Complete: func(messageID, final string) {
			deb.SetActive(false)
			msgs <- StreamDoneMsg{MessageID: messageID, Text: final}
		},
		Progress: func(percent int) {
			msgs <- BlogProgressMsg{Percent: percent}
		},
	}
}

// waitStream reads one bridge message; Update re-issues it until the
// finished sentinel arrives.
func (m Model) waitStream() tea.Cmd {
	ch := m.stream
	return func() tea.Msg {
		return <-ch
	}
}

// copyBlock writes a code block to the clipboard and schedules the
// label reset.
func (m *Model) copyBlock(block markdown.CodeBlock) tea.Cmd {
	err := m.copy.Copy(block)
	return tea.Batch(
		func() tea.Msg { return CopiedMsg{Err: err} },
		tea.Tick(markdown.CopiedDuration, func(time.Time) tea.Msg {
			return CopyLabelResetMsg{}
		}),
	)
}
