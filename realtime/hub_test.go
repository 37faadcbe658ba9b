package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"keydojo/core"
)

func TestHubSubscribeBroadcastUnsubscribe(t *testing.T) {
	h := NewHub()
	id, ch := h.Subscribe(1)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ev := core.NewExperienceGranted(now, "bob", 50, 50, core.SourceLesson)
	h.Broadcast(context.Background(), ev)

	received := <-ch
	if received.Account != "bob" || received.Type != core.EventExperienceGranted {
		t.Fatalf("unexpected event: %+v", received)
	}

	h.Unsubscribe(id)
	_, ok := <-ch
	if ok {
		t.Fatal("expected channel closed after unsubscribe")
	}
}

func TestHubAccountFilter(t *testing.T) {
	h := NewHub()
	_, filtered := h.SubscribeAccount(2, "alice")
	_, all := h.Subscribe(2)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h.Broadcast(context.Background(), core.NewPracticeRecorded(now, "bob", 3))
	h.Broadcast(context.Background(), core.NewPracticeRecorded(now, "alice", 7))

	got := <-filtered
	if got.Account != "alice" || got.Streak != 7 {
		t.Fatalf("filtered subscriber got wrong event: %+v", got)
	}
	select {
	case extra := <-filtered:
		t.Fatalf("filtered subscriber saw foreign event: %+v", extra)
	default:
	}

	if first := <-all; first.Account != "bob" {
		t.Fatalf("unfiltered subscriber missed event: %+v", first)
	}
}

func TestHubDropsWhenFull(t *testing.T) {
	h := NewHub()
	_, ch := h.Subscribe(1)

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h.Broadcast(context.Background(), core.NewPracticeRecorded(now, "bob", 1))
	h.Broadcast(context.Background(), core.NewPracticeRecorded(now, "bob", 2))

	got := <-ch
	if got.Streak != 1 {
		t.Fatalf("expected first event kept, got %+v", got)
	}
	select {
	case extra := <-ch:
		t.Fatalf("expected overflow dropped, got %+v", extra)
	default:
	}
}

func TestMarshalJSON(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ev := core.NewLevelUp(now, "alice", 3)
	b := MarshalJSON(ev)
	var out core.Event
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Level != 3 || out.Metadata["title"] != core.TitleFor(3) {
		t.Fatalf("unexpected event: %+v", out)
	}
}
