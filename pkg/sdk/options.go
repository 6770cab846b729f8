package sdk

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "valkey", "redis" or "badger"
	addrs      []string
	password   string
	standalone bool
	badgerPath string // empty = in-memory
	keyPrefix  string

	embedder         Embedder
	documentEmbedder Embedder
	generator        Generator
	cache            bool
	cacheTTL         time.Duration
	cacheModel       string

	search          SearchConfig
	backfillWorkers int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBadger stores documents in an embedded Badger database at path.
// An empty path keeps everything in memory.
func WithBadger(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.badgerPath = path
	})
}

// WithStandalone disables cluster topology discovery.
// Use for standalone Valkey/Redis instances (not managed by cluster operator).
func WithStandalone() Option {
	return optionFunc(func(c *clientConfig) {
		c.standalone = true
	})
}

// WithKeyPrefix namespaces all keys. Default: "docsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEmbedder sets the text embedding provider.
// Without one, search ranks lexically and Reembed returns ErrNotConfigured.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDocumentEmbedder sets the provider that embeds stored documents on Add and Reembed.
// Defaults to the WithEmbedder provider. Use it when queries and documents need different
// instructions, as asymmetric retrieval models do.
func WithDocumentEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.documentEmbedder = e
	})
}

// WithGenerator sets the text generation provider used for summaries, insights and answers.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithEmbeddingCache caches query embeddings in the document store.
// Zero ttl keeps entries forever.
func WithEmbeddingCache(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cache = true
		c.cacheTTL = ttl
	})
}

// WithEmbeddingModel namespaces cached query embeddings by model name,
// so switching models on the same store never serves stale vectors.
func WithEmbeddingModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheModel = model
	})
}

// WithSearchConfig overrides ranking weights, result count and timeouts.
// Zero fields take their DefaultSearchConfig values; negative weights make New fail.
func WithSearchConfig(cfg SearchConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.search = cfg
	})
}

// WithBackfillWorkers sets the number of concurrent embedding calls during Reembed.
// Default: 4.
func WithBackfillWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.backfillWorkers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithMetricsRegisterer registers SDK operation metrics together with the
// provider and search metrics on the given registerer. Pass nil to disable (default).
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
