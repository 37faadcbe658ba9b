package core

import (
	"testing"
	"time"
)

func TestNormalizeAccountID(t *testing.T) {
	id, err := NormalizeAccountID(" Alice ")
	if err != nil || id != "alice" {
		t.Fatalf("got %v %v", id, err)
	}
	if _, err := NormalizeAccountID("   "); err == nil {
		t.Fatalf("expected empty error")
	}
}

func TestNewSnapshotDefaults(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSnapshot("alice", now)
	if s.Experience.Level != 1 || s.Experience.Total != 0 {
		t.Fatal("fresh account starts at level 1 with no experience")
	}
	if s.Hearts.Current != MaxHearts || s.Hearts.Max != MaxHearts {
		t.Fatal("fresh account starts with full hearts")
	}
	if len(s.Experience.Levels) != 1 || s.Experience.Levels[0].Level != 1 {
		t.Fatal("level history seeded with level 1")
	}
	if s.Currency.Balance != 0 || s.Streak.Current != 0 {
		t.Fatal("ledgers start empty")
	}
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSnapshot("alice", now)
	if _, err := s.Experience.Grant(now, 10, SourceLesson, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Hearts.Consume(now, 1); err != nil {
		t.Fatal(err)
	}

	cp := s.Clone()
	cp.Experience.History[0].Amount = 999
	*cp.Hearts.NextRegenerationDue = now.Add(time.Hour)

	if s.Experience.History[0].Amount != 10 {
		t.Fatal("clone shares experience history")
	}
	if !s.Hearts.NextRegenerationDue.Equal(now.Add(RegenerationInterval)) {
		t.Fatal("clone shares regeneration pointer")
	}
}

func TestDayOf(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	late := time.Date(2024, 3, 1, 22, 0, 0, 0, est) // 03:00 UTC next day
	if DayOf(late) != "2024-03-02" {
		t.Fatalf("got %s", DayOf(late))
	}
}
