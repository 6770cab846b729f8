package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Value kinds, stored as the first byte of every value.
const (
	kindString byte = 's'
	kindHash   byte = 'h'
)

// Config holds parameters for an embedded Badger store.
type Config struct {
	Path     string
	InMemory bool
	Logger   *zap.Logger
}

// Store implements db.Store on an embedded BadgerDB.
// Hashes are stored as a JSON object under a single key.
type Store struct {
	db *badger.DB
}

// NewStore opens (or creates) a Badger database.
func NewStore(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("path is required")
		}
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Logger = &zapAdapter{sugar: logger.Named("badger").Sugar()}
	opts.Compression = options.None

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: bdb}, nil
}

func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return &db.Error{Op: db.OpPing, Err: db.ErrClosed}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady returns immediately: an embedded store is ready once opened.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// HSet merges fields into the hash at key. An empty field set is a no-op.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := readHash(txn, key)
		if err != nil {
			return err
		}
		for k, v := range fields {
			current[k] = v
		}
		data, err := encodeHash(current)
		if err != nil {
			return err
		}
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HGetAll returns all fields of a hash, or an empty map when the key is missing.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	var m map[string]string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		m, err = readHash(txn, key)
		return err
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return m, nil
}

// HGetAllMulti fetches several hashes in one read transaction.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]map[string]string, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for i, key := range keys {
			m, err := readHash(txn, key)
			if err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
			out[i] = m
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// Del deletes a key. Deleting a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return found, nil
}

// Scan returns keys matching a Redis-style glob pattern.
// The literal prefix before the first wildcard bounds the iteration.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	prefix := pattern
	if i := strings.IndexAny(pattern, "*?[\\"); i >= 0 {
		prefix = pattern[:i]
	}

	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := string(it.Item().Key())
			ok, err := path.Match(pattern, key)
			if err != nil {
				return fmt.Errorf("bad pattern %q: %w", pattern, err)
			}
			if ok {
				keys = append(keys, key)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return keys, nil
}

// Get retrieves a string value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if len(raw) == 0 || raw[0] != kindString {
			return db.ErrWrongType
		}
		out = raw[1:]
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return out, nil
}

// Set stores a string value at the given key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), encodeString(value))
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a string value with an expiration.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), encodeString(value)).WithTTL(ttl))
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

func readHash(txn *badger.Txn, key string) (map[string]string, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the caller with the op name
	}

	m := map[string]string{}
	err = item.Value(func(val []byte) error {
		if len(val) == 0 || val[0] != kindHash {
			return db.ErrWrongType
		}
		return json.Unmarshal(val[1:], &m)
	})
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the caller with the op name
	}
	return m, nil
}

func encodeHash(m map[string]string) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal hash: %w", err)
	}
	return append([]byte{kindHash}, data...), nil
}

func encodeString(v []byte) []byte {
	out := make([]byte, 0, len(v)+1)
	out = append(out, kindString)
	return append(out, v...)
}

// zapAdapter adapts zap to the badger.Logger interface.
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

var _ badger.Logger = (*zapAdapter)(nil)

func (a *zapAdapter) Errorf(msg string, items ...any)   { a.sugar.Errorf(strings.TrimSpace(msg), items...) }
func (a *zapAdapter) Warningf(msg string, items ...any) { a.sugar.Warnf(strings.TrimSpace(msg), items...) }
func (a *zapAdapter) Infof(msg string, items ...any)    { a.sugar.Debugf(strings.TrimSpace(msg), items...) }
func (a *zapAdapter) Debugf(msg string, items ...any)   { a.sugar.Debugf(strings.TrimSpace(msg), items...) }
