package leaderboard

import (
	"testing"

	"keydojo/core"
)

func TestSkipListBasic(t *testing.T) {
	s := NewSkipList()
	s.Update(core.AccountID("a"), 10)
	s.Update(core.AccountID("b"), 20)
	s.Update(core.AccountID("c"), 15)
	top := s.TopN(3)
	if len(top) != 3 || top[0].Account != core.AccountID("b") || top[1].Account != core.AccountID("c") || top[2].Account != core.AccountID("a") {
		t.Fatalf("unexpected order: %#v", top)
	}
	s.Update(core.AccountID("a"), 25)
	top = s.TopN(1)
	if top[0].Account != core.AccountID("a") {
		t.Fatalf("top should be a, got %#v", top)
	}
}

func TestSkipListTieBreaksByAccount(t *testing.T) {
	s := NewSkipList()
	s.Update(core.AccountID("zoe"), 100)
	s.Update(core.AccountID("amy"), 100)
	top := s.TopN(2)
	if top[0].Account != core.AccountID("amy") || top[1].Account != core.AccountID("zoe") {
		t.Fatalf("tie should order by account: %#v", top)
	}
}

func TestSkipListRemoveAndGet(t *testing.T) {
	s := NewSkipList()
	s.Update(core.AccountID("a"), 10)
	s.Update(core.AccountID("b"), 20)

	if e, ok := s.Get(core.AccountID("b")); !ok || e.Experience != 20 {
		t.Fatalf("get b: %#v %v", e, ok)
	}

	s.Remove(core.AccountID("b"))
	if _, ok := s.Get(core.AccountID("b")); ok {
		t.Fatal("b should be gone")
	}
	top := s.TopN(5)
	if len(top) != 1 || top[0].Account != core.AccountID("a") {
		t.Fatalf("unexpected entries after remove: %#v", top)
	}

	// removing an absent account is a no-op
	s.Remove(core.AccountID("ghost"))
}

func TestSkipListRank(t *testing.T) {
	s := NewSkipList()
	s.Update(core.AccountID("a"), 10)
	s.Update(core.AccountID("b"), 30)
	s.Update(core.AccountID("c"), 20)

	if r, ok := s.Rank(core.AccountID("b")); !ok || r != 1 {
		t.Fatalf("rank b = %d %v", r, ok)
	}
	if r, ok := s.Rank(core.AccountID("a")); !ok || r != 3 {
		t.Fatalf("rank a = %d %v", r, ok)
	}
	if _, ok := s.Rank(core.AccountID("ghost")); ok {
		t.Fatal("ghost should not rank")
	}
}

func TestSkipListManyUpdates(t *testing.T) {
	s := NewSkipList()
	for i := 0; i < 200; i++ {
		s.Update(core.AccountID(string(rune('a'+i%26))+string(rune('a'+i/26))), int64(i))
	}
	top := s.TopN(10)
	if len(top) != 10 {
		t.Fatalf("want 10 entries, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Experience > top[i-1].Experience {
			t.Fatalf("order violated at %d: %#v", i, top)
		}
	}
}
