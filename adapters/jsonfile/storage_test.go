package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keydojo/core"
)

func TestSaveSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keydojo.json")
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	store, err := New(path)
	require.NoError(t, err)

	snap := core.NewSnapshot("alice", now)
	_, err = snap.Currency.Credit(now, 40, core.SourceStreak, "")
	require.NoError(t, err)
	_, err = snap.Currency.Debit(now, 15, core.SourcePurchase, "")
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, snap))

	reopened, err := New(path)
	require.NoError(t, err)
	got, found, err := reopened.Load(ctx, "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 25, got.Currency.Balance)
	assert.Equal(t, 40, got.Currency.TotalEarned)
	require.NoError(t, got.Currency.CheckInvariant())
}

func TestMissingFileIsEmptyStore(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "nope", "keydojo.json"))
	require.NoError(t, err)
	_, found, err := store.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCorruptFileFailsLoudly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keydojo.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := New(path)
	require.Error(t, err)
}

func TestDeleteRemovesFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keydojo.json")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, core.NewSnapshot("alice", time.Now())))
	require.NoError(t, store.Delete(ctx, "alice"))

	reopened, err := New(path)
	require.NoError(t, err)
	_, found, err := reopened.Load(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, found)
}
