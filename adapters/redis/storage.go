package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"keydojo/core"
	"keydojo/engine"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements engine.Storage on Redis. Each account's snapshot is one
// JSON blob under progression:{account_id}, written with a single SET so a
// save is atomic: there is no partial-update state to observe.
type Store struct {
	client *redis.Client
}

// New creates a Redis-backed storage with the provided configuration.
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client (used by tests).
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(account core.AccountID) string {
	return "progression:" + string(account)
}

func (s *Store) Load(ctx context.Context, account core.AccountID) (core.Snapshot, bool, error) {
	b, err := s.client.Get(ctx, key(account)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return core.Snapshot{}, false, nil
		}
		return core.Snapshot{}, false, fmt.Errorf("redis get: %w", err)
	}
	var snap core.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return core.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

func (s *Store) Save(ctx context.Context, snap core.Snapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, key(snap.AccountID), b, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, account core.AccountID) error {
	if err := s.client.Del(ctx, key(account)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error { return s.client.Close() }

var _ engine.Storage = (*Store)(nil)
