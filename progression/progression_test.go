package progression

import (
	"context"
	"testing"
	"time"

	"keydojo/analytics"
	"keydojo/core"
	"keydojo/engine"
	"keydojo/leaderboard"
	"keydojo/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToMemoryStorage(t *testing.T) {
	svc := New(WithDispatchMode(engine.DispatchSync))
	defer svc.Close()

	res, err := svc.GrantExperience(context.Background(), "alice", 50, core.SourceLesson, "")
	require.NoError(t, err)
	assert.Equal(t, 50, res.NewTotal)

	snap, err := svc.Snapshot(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 50, snap.Experience.Total)
}

func TestNewWiresRealtimeHub(t *testing.T) {
	hub := realtime.NewHub()
	svc := New(WithDispatchMode(engine.DispatchSync), WithRealtime(hub))
	defer svc.Close()

	_, ch := hub.Subscribe(8)

	_, err := svc.GrantExperience(context.Background(), "alice", 10, core.SourceLesson, "")
	require.NoError(t, err)

	select {
	case ev := <-ch:
		assert.Equal(t, core.EventExperienceGranted, ev.Type)
		assert.Equal(t, core.AccountID("alice"), ev.Account)
	case <-time.After(time.Second):
		t.Fatal("no event reached the hub")
	}
}

func TestNewWiresLeaderboard(t *testing.T) {
	board := leaderboard.NewSkipList()
	svc := New(WithDispatchMode(engine.DispatchSync), WithLeaderboard(board))
	defer svc.Close()

	ctx := context.Background()
	_, err := svc.GrantExperience(ctx, "alice", 120, core.SourceLesson, "")
	require.NoError(t, err)
	_, err = svc.GrantExperience(ctx, "bob", 80, core.SourceLesson, "")
	require.NoError(t, err)

	top := board.TopN(2)
	require.Len(t, top, 2)
	assert.Equal(t, core.AccountID("alice"), top[0].Account)
	assert.EqualValues(t, 120, top[0].Experience)
}

func TestNewWiresAnalyticsHooks(t *testing.T) {
	metrics := analytics.NewMetrics()
	svc := New(WithDispatchMode(engine.DispatchSync), WithAnalytics(metrics))
	defer svc.Close()

	_, err := svc.GrantExperience(context.Background(), "alice", 40, core.SourceLesson, "")
	require.NoError(t, err)

	day := core.DayOf(time.Now())
	assert.EqualValues(t, 40, metrics.ExperienceAwarded(day))
	assert.Equal(t, 1, metrics.ActiveAccounts(day))
}
