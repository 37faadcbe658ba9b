package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keydojo/core"
	"keydojo/engine"
)

// Compile-time check kept out of the package proper: the engine's own
// tests use this store, so importing engine here would cycle.
var _ engine.Storage = (*Store)(nil)

func TestLoadMissingAccount(t *testing.T) {
	store := New()
	_, found, err := store.Load(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	snap := core.NewSnapshot("alice", now)
	_, err := snap.Experience.Grant(now, 120, core.SourceLesson, "intro")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, snap))

	got, found, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 120, got.Experience.Total)
	assert.Equal(t, 2, got.Experience.Level)
	require.Len(t, got.Experience.History, 1)
}

func TestStoredStateIsIsolated(t *testing.T) {
	store := New()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	snap := core.NewSnapshot("alice", now)
	require.NoError(t, store.Save(ctx, snap))

	// mutate the caller's copy after saving
	_, err := snap.Experience.Grant(now, 999, core.SourceLesson, "")
	require.NoError(t, err)

	got, _, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, got.Experience.Total)

	// mutate the loaded copy; stored state must not change
	_, err = got.Currency.Credit(now, 10, core.SourceStreak, "")
	require.NoError(t, err)
	again, _, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, again.Currency.Balance)
}

func TestDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, core.NewSnapshot("alice", time.Now())))
	require.NoError(t, store.Delete(ctx, "alice"))
	_, found, err := store.Load(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)
}
