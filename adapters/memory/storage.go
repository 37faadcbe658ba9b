package memory

import (
	"context"
	"sync"

	"keydojo/core"
)

// Store is a concurrent in-memory Storage implementation. Snapshots are
// deep-copied on the way in and out so callers can never alias stored
// state.
type Store struct {
	mu   sync.RWMutex
	data map[core.AccountID]core.Snapshot
}

func New() *Store {
	return &Store{data: make(map[core.AccountID]core.Snapshot)}
}

func (s *Store) Load(_ context.Context, account core.AccountID) (core.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.data[account]
	if !ok {
		return core.Snapshot{}, false, nil
	}
	return snap.Clone(), true, nil
}

func (s *Store) Save(_ context.Context, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[snap.AccountID] = snap.Clone()
	return nil
}

func (s *Store) Delete(_ context.Context, account core.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, account)
	return nil
}
