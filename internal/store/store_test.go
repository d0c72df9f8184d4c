// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleConversations() []*model.Conversation {
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	return []*model.Conversation{
		{ID: "c1", Title: "Older", CreatedAt: base, UpdatedAt: base, MessageCount: 2},
		{ID: "c2", Title: "Newer", CreatedAt: base, UpdatedAt: base.Add(time.Hour), MessageCount: 5, ForkedFrom: "c1"},
	}
}

func TestReplaceAndList(t *testing.T) {
	s := openTestStore(t)

	syncedAt := time.Now().Truncate(time.Second)
	require.NoError(t, s.Replace(sampleConversations(), syncedAt))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Most recently updated first.
	require.Equal(t, "c2", list[0].ID)
	require.Equal(t, "c1", list[1].ID)
	require.Equal(t, "c1", list[0].ForkedFrom)
	require.Equal(t, 5, list[0].MessageCount)

	got, err := s.SyncedAt()
	require.NoError(t, err)
	require.True(t, got.Equal(syncedAt), "SyncedAt() = %v, want %v", got, syncedAt)
}

func TestReplaceIsWholesale(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Replace(sampleConversations(), time.Now()))

	// Second sync has a completely different set; old rows must not
	// survive.
	next := []*model.Conversation{
		{ID: "c9", Title: "Only one", CreatedAt: time.Now(), UpdatedAt: time.Now()},
	}
	require.NoError(t, s.Replace(next, time.Now()))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "c9", list[0].ID)
}

func TestRemove(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Replace(sampleConversations(), time.Now()))

	require.NoError(t, s.Remove("c1"))

	n, err := s.Count()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestEmptyStore(t *testing.T) {
	s := openTestStore(t)

	list, err := s.List()
	require.NoError(t, err)
	require.Empty(t, list)

	syncedAt, err := s.SyncedAt()
	require.NoError(t, err)
	require.True(t, syncedAt.IsZero(), "never-synced store should report zero time")
}

func TestReopenKeepsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Replace(sampleConversations(), time.Now()))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count()
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
