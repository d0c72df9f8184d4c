// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui assembles the terminal application: a root model that
// switches between the welcome, conversation list and chat views based
// on the session state.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/api"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/session"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/store"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/chat"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/components"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/list"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui/styles"
)

// view identifies the active screen.
type view int

const (
	viewWelcome view = iota
	viewList
	viewChat
)

// signInTimeout covers the whole browser round trip plus the token
// exchange.
const signInTimeout = 5 * time.Minute

// sessionInitMsg delivers the session state discovered at startup.
type sessionInitMsg struct {
	state session.State
}

// signInDoneMsg reports the outcome of the sign-in flow.
type signInDoneMsg struct {
	err error
}

// bannerTickMsg re-renders while an auth banner is showing so its
// expiry becomes visible.
type bannerTickMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	view  view
	theme *styles.Theme

	width  int
	height int

	sessions *session.Manager
	svc      *api.Service

	welcome   *components.Welcome
	list      list.Model
	chat      chat.Model
	chatOpen  bool
	signingIn bool

	debounceInterval time.Duration
}

// NewApp creates the root model. snap may be nil when the offline
// snapshot store could not be opened.
func NewApp(sessions *session.Manager, svc *api.Service, snap *store.Store, debounceInterval time.Duration) App {
	theme := styles.NewTheme(80, 24)
	return App{
		view:             viewWelcome,
		theme:            theme,
		sessions:         sessions,
		svc:              svc,
		welcome:          components.NewWelcome(theme),
		list:             list.New(svc, snap, theme),
		debounceInterval: debounceInterval,
	}
}

// Init restores the persisted session and routes to the first view.
func (a App) Init() tea.Cmd {
	sessions := a.sessions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return sessionInitMsg{state: sessions.Initialize(ctx)}
	}
}

// Update routes messages to the active view.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.theme.Resize(msg.Width, msg.Height)
		// Both child views track their own dimensions.
		var listCmd, chatCmd tea.Cmd
		a.list, listCmd = a.list.Update(msg)
		if a.chatOpen {
			a.chat, chatCmd = a.chat.Update(msg)
		}
		return a, tea.Batch(listCmd, chatCmd)

	case sessionInitMsg:
		if msg.state == session.StateAuthenticated {
			a.view = viewList
			return a, a.list.Init()
		}
		a.view = viewWelcome
		return a, nil

	case signInDoneMsg:
		a.signingIn = false
		if msg.err != nil {
			// The manager already posted the banner text.
			return a, tea.Tick(session.BannerDuration, func(time.Time) tea.Msg {
				return bannerTickMsg{}
			})
		}
		a.view = viewList
		return a, a.list.Init()

	case bannerTickMsg:
		return a, nil

	case list.OpenConversationMsg:
		a.chat = chat.New(a.svc, msg.Conversation.ID, a.theme, a.debounceInterval)
		a.chatOpen = true
		a.view = viewChat
		cmd := a.chat.Init()
		if a.width > 0 {
			var sizeCmd tea.Cmd
			a.chat, sizeCmd = a.chat.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
			cmd = tea.Batch(cmd, sizeCmd)
		}
		return a, cmd

	case chat.BackMsg:
		a.view = viewList
		return a, a.list.Reload()

	case list.SignInRequestMsg, chat.SignInRequestMsg:
		return a.startSignIn()
	}

	switch a.view {
	case viewWelcome:
		return a.updateWelcome(msg)
	case viewList:
		var cmd tea.Cmd
		a.list, cmd = a.list.Update(msg)
		return a, cmd
	case viewChat:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}

	switch key.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "s":
		if !a.signingIn {
			return a.startSignIn()
		}
	}
	return a, nil
}

func (a App) startSignIn() (tea.Model, tea.Cmd) {
	a.signingIn = true
	a.sessions.ClearBanner()
	sessions := a.sessions
	return a, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), signInTimeout)
		defer cancel()
		return signInDoneMsg{err: sessions.SignIn(ctx)}
	}
}

// View draws the active screen.
func (a App) View() string {
	if a.width <= 0 {
		return ""
	}

	switch a.view {
	case viewList:
		return a.list.View()
	case viewChat:
		return a.chat.View()
	default:
		return a.welcome.Render(a.width, a.height, a.sessions.Banner(), a.signingIn)
	}
}
