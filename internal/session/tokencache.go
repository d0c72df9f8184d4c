// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/util"
)

// Token is the persisted backend credential. Expiry is an absolute
// epoch-milliseconds deadline computed at exchange time, so validity
// checks never depend on the original expires_in value.
type Token struct {
	AccessToken   string `json:"accessToken"`
	ExpiryEpochMs int64  `json:"expiryEpochMs"`
}

// ValidAt reports whether the token can still be used at the given
// instant. A token is invalid once now >= ExpiryEpochMs.
func (t Token) ValidAt(now time.Time) bool {
	return t.AccessToken != "" && now.UnixMilli() < t.ExpiryEpochMs
}

// TokenCache stores the backend token in a single JSON file with
// owner-only permissions. Reads always hit the file so a token
// cleared by another process (or an expired one rewritten by a
// concurrent sign-in) is picked up immediately.
type TokenCache struct {
	path string
}

// NewTokenCache creates a cache backed by the given file path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path}
}

// DefaultTokenPath returns the standard token cache location under the
// user config directory.
func DefaultTokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "ai-reddit-tui", "token.json"), nil
}

// Load reads the cached token. A missing file returns a zero Token
// with no error; callers check validity separately.
func (c *TokenCache) Load() (Token, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Token{}, nil
		}
		return Token{}, fmt.Errorf("read token cache: %w", err)
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		// Corrupt cache is treated as signed out rather than fatal.
		return Token{}, nil
	}
	return tok, nil
}

// Save persists the token atomically with 0600 permissions.
func (c *TokenCache) Save(tok Token) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := util.AtomicWriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	return nil
}

// Clear removes the cached token. Removing an absent file is not an
// error.
func (c *TokenCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear token cache: %w", err)
	}
	return nil
}
