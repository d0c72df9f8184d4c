// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package list provides the conversation list view: cached listing,
// selection, creation and optimistic archiving.
package list

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/api"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/store"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/components"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/styles"
)

// State is the list view's lifecycle position.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

// requestTimeout bounds the list and archive calls.
const requestTimeout = 30 * time.Second

// OpenConversationMsg asks the root model to open the chat view.
type OpenConversationMsg struct {
	Conversation *model.Conversation
}

// SignInRequestMsg asks the root model to run the sign-in flow.
type SignInRequestMsg struct{}

// loadedMsg delivers the conversation list.
type loadedMsg struct {
	conversations []*model.Conversation
	err           error
}

// snapshotMsg delivers the local snapshot, shown until the network
// fetch lands.
type snapshotMsg struct {
	conversations []*model.Conversation
}

// createdMsg delivers a freshly created conversation.
type createdMsg struct {
	conversation *model.Conversation
	err          error
}

// archivedMsg reports the outcome of an archive call. The row is
// already gone from the view; a failure brings it back.
type archivedMsg struct {
	id  string
	err error
}

// KeyMap binds the list view's keys.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	New     key.Binding
	Archive key.Binding
	Refresh key.Binding
	SignIn  key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Archive: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "archive")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		SignIn:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sign in")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// Model is the Bubble Tea model for the conversation list.
type Model struct {
	state State
	theme *styles.Theme

	width  int
	height int

	svc           *api.Service
	snap          *store.Store
	conversations []*model.Conversation
	fromSnapshot  bool
	cursor        int

	// archived remembers rows removed optimistically, keyed by id, so a
	// failed archive can restore them in place.
	archived map[string]*model.Conversation

	spin   spinner.Model
	status *components.StatusBar
	banner *components.ErrorBanner
	keys   KeyMap
}

// New creates the list view. snap may be nil when no local snapshot is
// available.
func New(svc *api.Service, snap *store.Store, theme *styles.Theme) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	return Model{
		state:    StateLoading,
		theme:    theme,
		svc:      svc,
		snap:     snap,
		archived: make(map[string]*model.Conversation),
		spin:     sp,
		status:   components.NewStatusBar(theme),
		keys:     DefaultKeyMap(),
	}
}

// Init shows the local snapshot immediately while the network fetch
// runs.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSnapshot(), m.load(false), m.spin.Tick)
}

// Reload refreshes the list, honoring the cache.
func (m Model) Reload() tea.Cmd {
	return m.load(false)
}

func (m Model) loadSnapshot() tea.Cmd {
	snap := m.snap
	if snap == nil {
		return nil
	}
	return func() tea.Msg {
		list, err := snap.List()
		if err != nil {
			return nil
		}
		return snapshotMsg{conversations: list}
	}
}

func (m Model) load(force bool) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		list, err := svc.Conversations(ctx, force)
		return loadedMsg{conversations: list, err: err}
	}
}

func (m Model) create() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		conv, err := svc.Create(ctx, "")
		return createdMsg{conversation: conv, err: err}
	}
}

func (m Model) archive(id string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return archivedMsg{id: id, err: svc.Archive(ctx, id)}
	}
}
