// Package redis implements db.Store on Redis or Valkey through rueidis.
// Only core hash, string and keyspace commands are used, so no server modules are required.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsearch/internal/db"
)

var _ db.Store = (*Store)(nil)

// Readiness polling bounds.
const (
	readyMinDelay = 50 * time.Millisecond
	readyMaxDelay = time.Second
)

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Password string
	// Standalone skips cluster topology discovery.
	Standalone bool
	// ClientName is reported via CLIENT SETNAME.
	ClientName string
}

// Store is a db.Store backed by a rueidis client.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the given addresses. Client-side caching is disabled:
// document hashes are read once per search and would only churn the cache.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	name := cfg.ClientName
	if name == "" {
		name = "docsearch"
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:       cfg.Addrs,
		Password:          cfg.Password,
		ClientName:        name,
		DisableCache:      true,
		ForceSingleClient: cfg.Standalone,
	})
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping sends PING.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases all connections.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with exponential backoff until the server answers or timeout elapses.
// The last ping error is included in the timeout error.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delay := readyMinDelay
	var lastErr error
	for {
		if lastErr = s.Ping(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready after %s: %w", timeout, errors.Join(ctx.Err(), lastErr))
		case <-time.After(delay):
		}
		delay = min(2*delay, readyMaxDelay)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
