// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// ai-reddit-tui - a terminal client for AI Reddit conversations.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/cli"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/config"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/store"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	// Version and help need no config or session.
	switch cmd {
	case cli.CmdVersion:
		cli.HandleVersion(args)
		return
	case cli.CmdHelp:
		cli.HandleHelp(args)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.SetGlobal(cfg)
	setupLogging(cfg)

	env, err := cli.NewEnv(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case cli.CmdLogin:
		cli.HandleLogin(env, args)
	case cli.CmdLogout:
		cli.HandleLogout(env, args)
	case cli.CmdAsk:
		cli.HandleAsk(env, args)
	case cli.CmdList:
		cli.HandleList(env, args)
	case cli.CmdSync:
		cli.HandleSync(env, args)
	case cli.CmdStatus:
		cli.HandleStatus(env, args)
	default:
		runTUI(cfg, env)
	}
}

// runTUI starts the interactive interface.
func runTUI(cfg *config.Config, env *cli.Env) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Not a terminal. Use `ai-reddit-tui ask` for scripted access.")
		os.Exit(1)
	}

	// Reload config on edits while the TUI runs.
	if path, err := config.Path(); err == nil {
		watcher, err := config.NewWatcher(path, func(updated *config.Config) {
			config.SetGlobal(updated)
		})
		if err == nil && watcher.Watch() == nil {
			defer watcher.Close()
		} else if err != nil {
			logrus.WithError(err).Warn("config watcher unavailable")
		}
	}

	var snap *store.Store
	if path, err := store.DefaultPath(); err == nil {
		if s, err := store.Open(path); err == nil {
			snap = s
			defer s.Close()
		}
	}

	app := ui.NewApp(env.Sessions, env.Service, snap, cfg.DebounceInterval())
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	st := env.Service.CacheStats()
	logrus.WithFields(logrus.Fields{
		"hits":     st.Hits,
		"misses":   st.Misses,
		"entries":  st.EntryCount,
		"hit_rate": st.HitRate,
	}).Debug("conversation cache stats")
}

// setupLogging routes logrus to the configured file. The TUI owns the
// terminal, so logs never go to stderr once it starts.
func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	path := cfg.Log.File
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			logrus.SetOutput(io.Discard)
			return
		}
		path = filepath.Join(dir, "ai-reddit-tui.log")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		logrus.SetOutput(io.Discard)
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		logrus.SetOutput(io.Discard)
		return
	}
	logrus.SetOutput(f)
}
