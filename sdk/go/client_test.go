package sdk

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"keydojo/adapters/memory"
	"keydojo/api/httpapi"
	"keydojo/core"
	"keydojo/engine"
	"keydojo/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	bus := engine.NewEventBus(engine.DispatchSync)
	svc := engine.NewProgressionService(memory.New(), bus, nil)
	t.Cleanup(svc.Close)

	hub := realtime.NewHub()
	svc.SubscribeAll(func(ctx context.Context, ev core.Event) {
		hub.Broadcast(ctx, ev)
	})

	server := httptest.NewServer(httpapi.NewMux(svc, hub, httpapi.Options{}))
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL)
	require.NoError(t, err)
	return client
}

func TestClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}

func TestClientSnapshotAndGrant(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	snap, err := client.GetSnapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", snap.AccountID)
	assert.Equal(t, 1, snap.Experience.Level)

	res, err := client.GrantExperience(ctx, "alice", 120, "lesson", "home row")
	require.NoError(t, err)
	assert.Equal(t, 120, res.NewTotal)
	assert.True(t, res.LeveledUp)

	snap, err = client.GetSnapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Experience.Level)
}

func TestClientEmptyAccountRejected(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetSnapshot(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyAccountID)
}

func TestClientPracticeAndCurrency(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	outcome, err := client.RecordPractice(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Streak)
	assert.Equal(t, core.CurrencyDailyStreak, outcome.CurrencyAwarded)

	balance, err := client.EarnCurrency(ctx, "bob", 50, "bonus", "promo")
	require.NoError(t, err)
	assert.Equal(t, core.CurrencyDailyStreak+50, balance)

	balance, err = client.SpendCurrency(ctx, "bob", 20, "store", "")
	require.NoError(t, err)
	assert.Equal(t, core.CurrencyDailyStreak+30, balance)
}

func TestClientAPIErrorDecoding(t *testing.T) {
	client := newTestClient(t)

	_, err := client.SpendCurrency(context.Background(), "alice", 999, "store", "")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)
	assert.Equal(t, "insufficient", apiErr.Code)
}

func TestClientSubscribeEvents(t *testing.T) {
	client := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := client.SubscribeEvents(ctx, "alice")
	require.NoError(t, err)

	// give the server-side subscriber a moment to register
	time.Sleep(10 * time.Millisecond)

	_, err = client.GrantExperience(ctx, "alice", 10, "lesson", "")
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "alice", ev.Account)
		assert.Equal(t, string(core.EventExperienceGranted), ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestClientHealth(t *testing.T) {
	client := newTestClient(t)

	hs, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", hs.Status)
}
