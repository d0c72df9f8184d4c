// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache holds the in-memory conversation list shared by the
// list view and the sidebar flows. The cache is replaced wholesale on
// every successful fetch, never merged field-by-field, which sidesteps
// partial-update races at the cost of occasionally discarding a
// concurrent optimistic edit.
package cache

import (
	"sync"
	"time"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
)

// DefaultTTL is how long a fetched list is considered fresh.
const DefaultTTL = 5 * time.Minute

// ConversationCache is a TTL snapshot of the user's conversation list.
type ConversationCache struct {
	mu          sync.RWMutex
	ttl         time.Duration
	list        []*model.Conversation
	lastFetched time.Time

	hits   int
	misses int
}

// Stats holds cache counters for the status view.
type Stats struct {
	Hits       int
	Misses     int
	EntryCount int
	HitRate    float64
}

// New creates a cache with the given TTL; non-positive falls back to
// DefaultTTL.
func New(ttl time.Duration) *ConversationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ConversationCache{ttl: ttl}
}

// Get returns the last known list and its fetch timestamp. The zero
// timestamp means nothing has been fetched yet.
func (c *ConversationCache) Get() ([]*model.Conversation, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.staleLocked(time.Now()) {
		c.misses++
	} else {
		c.hits++
	}

	out := make([]*model.Conversation, len(c.list))
	copy(out, c.list)
	return out, c.lastFetched
}

// SetFromServer replaces the list wholesale and stamps the fetch time.
func (c *ConversationCache) SetFromServer(list []*model.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.list = make([]*model.Conversation, len(list))
	copy(c.list, list)
	c.lastFetched = time.Now()
}

// Remove drops a conversation from the cached list. Used for the
// optimistic archive path: the item disappears immediately without
// waiting for a refetch.
func (c *ConversationCache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, conv := range c.list {
		if conv.ID == id {
			c.list = append(c.list[:i], c.list[i+1:]...)
			return true
		}
	}
	return false
}

// Clear resets the cache to empty with a zero fetch time.
func (c *ConversationCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.list = nil
	c.lastFetched = time.Time{}
}

// IsStale reports whether callers should refetch: true when the TTL has
// elapsed or the list is empty, regardless of elapsed time.
func (c *ConversationCache) IsStale(now time.Time) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.staleLocked(now)
}

func (c *ConversationCache) staleLocked(now time.Time) bool {
	if len(c.list) == 0 {
		return true
	}
	return now.Sub(c.lastFetched) > c.ttl
}

// Stats returns hit/miss counters.
func (c *ConversationCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		EntryCount: len(c.list),
		HitRate:    rate,
	}
}
