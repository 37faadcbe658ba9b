package sqlx

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"keydojo/core"
	"keydojo/engine"

	"github.com/jmoiron/sqlx"

	// Drivers registered for New; callers using NewWithDB bring their own.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

// Driver identifies a supported SQL backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds SQL connection configuration
type Config struct {
	Driver          Driver
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns sensible defaults for the given driver.
func DefaultConfig(driver Driver) Config {
	dsn := "postgres://localhost:5432/keydojo?sslmode=disable"
	if driver == DriverMySQL {
		dsn = "root@tcp(localhost:3306)/keydojo?parseTime=true"
	}
	return Config{
		Driver:          driver,
		DSN:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// Store implements engine.Storage on a SQL database. Snapshots are kept as
// one JSON document per account in the snapshots table, so a save is a
// single upsert and the schema never chases the snapshot's shape.
type Store struct {
	db     *sqlx.DB
	driver Driver
}

// Schema is the DDL the store expects. It is exposed so operators can run it
// through their own migration tooling; EnsureSchema applies it directly.
const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    account_id VARCHAR(128) PRIMARY KEY,
    data       TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`

// New opens a database connection and verifies it with a ping.
func New(config Config) (*Store, error) {
	db, err := sqlx.Open(string(config.Driver), config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{db: db, driver: config.Driver}, nil
}

// NewWithDB wraps an existing connection (used by tests).
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

// EnsureSchema creates the snapshots table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, account core.AccountID) (core.Snapshot, bool, error) {
	var raw string
	query := s.db.Rebind("SELECT data FROM snapshots WHERE account_id = ?")
	err := s.db.GetContext(ctx, &raw, query, string(account))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Snapshot{}, false, nil
		}
		return core.Snapshot{}, false, fmt.Errorf("select snapshot: %w", err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return core.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *Store) Save(ctx context.Context, snap core.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	var query string
	switch s.driver {
	case DriverMySQL:
		query = `INSERT INTO snapshots (account_id, data, updated_at) VALUES (?, ?, ?)
            ON DUPLICATE KEY UPDATE data = VALUES(data), updated_at = VALUES(updated_at)`
	default:
		query = s.db.Rebind(`INSERT INTO snapshots (account_id, data, updated_at) VALUES (?, ?, ?)
            ON CONFLICT (account_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`)
	}

	if _, err := s.db.ExecContext(ctx, query, string(snap.AccountID), string(b), snap.Updated); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, account core.AccountID) error {
	query := s.db.Rebind("DELETE FROM snapshots WHERE account_id = ?")
	if _, err := s.db.ExecContext(ctx, query, string(account)); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error { return s.db.Close() }

var _ engine.Storage = (*Store)(nil)
