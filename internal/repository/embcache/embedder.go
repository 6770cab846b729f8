package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain"
)

// store is the slice of db.KVStore the cache needs.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config tunes the cache. Zero TTL keeps entries forever.
type Config struct {
	Prefix string
	// Model namespaces the keys so vectors from different models never mix.
	Model string
	TTL   time.Duration
}

// CachedEmbedder serves embeddings from a key-value store, keyed by the SHA-256 of the text.
// Concurrent misses for the same text share a single provider call.
type CachedEmbedder struct {
	inner     domain.Embedder
	store     store
	keyPrefix string
	ttl       time.Duration
	lookups   *prometheus.CounterVec
	flight    singleflight.Group
	logger    *zap.Logger
}

// New wraps inner with a cache. lookups is a counter vec with a "result" label (hit, miss) and may be nil.
func New(inner domain.Embedder, s store, cfg Config, lookups *prometheus.CounterVec, logger *zap.Logger) *CachedEmbedder {
	if cfg.Prefix == "" {
		cfg.Prefix = domain.DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	keyPrefix := cfg.Prefix + "emb_cache:"
	if cfg.Model != "" {
		keyPrefix += cfg.Model + ":"
	}
	return &CachedEmbedder{
		inner:     inner,
		store:     s,
		keyPrefix: keyPrefix,
		ttl:       cfg.TTL,
		lookups:   lookups,
		logger:    logger,
	}
}

// Embed returns the cached vector with zero token usage, or embeds through the inner
// embedder and caches a non-empty result. Cache failures never fail the call.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)

	if vec, ok := c.load(ctx, key); ok {
		c.observe("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.observe("miss")

	v, err, shared := c.flight.Do(key, func() (any, error) {
		res, err := c.inner.Embed(ctx, text)
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped below
		}
		if len(res.Embedding) > 0 {
			c.save(ctx, key, res.Embedding)
		}
		return res, nil
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	res, _ := v.(domain.EmbeddingResult)
	if shared {
		res.Embedding = slices.Clone(res.Embedding)
	}
	return res, nil
}

// HealthCheck reports the inner embedder's health, if it has one.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	hc, ok := c.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.keyPrefix + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) observe(result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) load(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, false
	case err != nil:
		c.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	case len(data) == 0:
		return nil, false
	}

	vec, err := decodeVector(data)
	if err != nil {
		c.logger.Warn("Discarding corrupt cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) save(ctx context.Context, key string, vec []float32) {
	data := encodeVector(vec)
	var err error
	if c.ttl > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.ttl)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// encodeVector packs v as little-endian float32.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("cached embedding has %d bytes, not a multiple of 4", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return v, nil
}
