package engine

import (
	"context"
	"time"

	"keydojo/core"
)

// Storage abstracts persistence for progression snapshots. Load reports
// found=false for accounts that have never been saved; the service then
// initializes defaults. Save must write the whole snapshot atomically.
type Storage interface {
	Load(ctx context.Context, account core.AccountID) (snap core.Snapshot, found bool, err error)
	Save(ctx context.Context, snap core.Snapshot) error
	Delete(ctx context.Context, account core.AccountID) error
}

// Clock supplies the current instant. Every temporal decision in the
// engine flows through it so tests can simulate elapsed time and
// day-boundary crossings.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
