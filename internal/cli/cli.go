// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command line arguments and implements the
// non-interactive commands. The default command launches the TUI.
package cli

import (
	"fmt"
	"os"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdAsk
	CmdList
	CmdSync
	CmdStatus
	CmdVersion
	CmdHelp
)

const usageText = `ai-reddit-tui - terminal client for AI Reddit conversations

Usage:
  ai-reddit-tui [command] [flags]

Commands:
  (none)     Launch the interactive TUI
  login      Sign in with Google
  logout     Sign out and clear the stored session
  ask        Send a one-shot message: ask "question" [--conversation ID] [--blog] [--html]
  list       List conversations [--json] [--offline]
  sync       Refresh the offline conversation snapshot
  status     Show session and backend status [--json]
  version    Show version information
  help       Show this help

Flags:
  --json     Machine-readable output (ask, list, status)
  --html     Emit the reply as sanitized HTML instead of a terminal render (ask)
  --offline  Read from the local snapshot without touching the network

Examples:
  ai-reddit-tui
  ai-reddit-tui ask "Summarize my last conversation"
  ai-reddit-tui list --json
  ai-reddit-tui sync
`

// Parse maps os.Args onto a command and its remaining arguments.
func Parse() (Command, *ArgParser) {
	raw := os.Args[1:]
	if len(raw) == 0 {
		return CmdTUI, NewArgParser(nil)
	}

	cmd := raw[0]
	rest := NewArgParser(raw[1:])

	switch cmd {
	case "login":
		return CmdLogin, rest
	case "logout":
		return CmdLogout, rest
	case "ask":
		return CmdAsk, rest
	case "list", "ls":
		return CmdList, rest
	case "sync":
		return CmdSync, rest
	case "status":
		return CmdStatus, rest
	case "version", "--version", "-v":
		return CmdVersion, rest
	case "help", "--help", "-h":
		return CmdHelp, rest
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		PrintUsage()
		os.Exit(2)
		return CmdHelp, rest
	}
}

// PrintUsage writes the help text to stdout.
func PrintUsage() {
	fmt.Print(usageText)
}

// HandleVersion prints build information.
func HandleVersion(args *ArgParser) {
	if args.BoolFlag("json") {
		NewJSONResponse("version", map[string]string{
			"version": Version,
			"commit":  GitCommit,
			"built":   BuildDate,
		}).Print()
		return
	}
	fmt.Printf("ai-reddit-tui %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
}

// HandleHelp prints the usage text.
func HandleHelp(args *ArgParser) {
	PrintUsage()
}
