// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management.
//
// Configuration uses TOML with sensible defaults, environment
// variable overrides, and validation with clamping.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ARTUI_*)
//   - ~/.ai-reddit-tui/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Watch for changes:
//
//	w, _ := config.NewWatcher(path, func(cfg *config.Config) {
//	    config.SetGlobal(cfg)
//	})
//	w.Watch()
//	defer w.Close()
package config
