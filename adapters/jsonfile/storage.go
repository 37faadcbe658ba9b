package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"keydojo/core"
	"keydojo/engine"
)

// Store persists all snapshots to a single JSON file.
// Suitable for the desktop client and small deployments.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache for speed
	data map[core.AccountID]core.Snapshot
}

func New(path string) (*Store, error) {
	s := &Store{path: path, data: map[core.AccountID]core.Snapshot{}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var raw map[string]core.Snapshot
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		s.data[core.AccountID(k)] = v
	}
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	raw := make(map[string]core.Snapshot, len(s.data))
	for k, v := range s.data {
		raw[string(k)] = v
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) Load(_ context.Context, account core.AccountID) (core.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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
	return s.persist()
}

func (s *Store) Delete(_ context.Context, account core.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, account)
	return s.persist()
}

var _ engine.Storage = (*Store)(nil)
