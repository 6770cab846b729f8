package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/config"
	"github.com/kailas-cloud/docsearch/internal/db"
	dbBadger "github.com/kailas-cloud/docsearch/internal/db/badger"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	"github.com/kailas-cloud/docsearch/internal/domain"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	"github.com/kailas-cloud/docsearch/internal/repository/embcache"
	ollamaProv "github.com/kailas-cloud/docsearch/internal/transport/ollama"
	openaiProv "github.com/kailas-cloud/docsearch/internal/transport/openai"
	provideruc "github.com/kailas-cloud/docsearch/internal/usecase/provider"
)

// loadConfig resolves the environment and loads its config and logger.
func loadConfig(cmd *cobra.Command) (string, config.Config, *zap.Logger, error) {
	env, _ := cmd.Flags().GetString("env")
	if env == "" {
		env = config.GetEnv()
	}

	cfg, err := config.Load(env)
	if err != nil {
		return "", config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return "", config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return env, cfg, logger, nil
}

// openStore creates the document store for the configured driver and waits until it answers.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Database.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	case config.DriverBadger:
		store, err = dbBadger.NewStore(dbBadger.Config{
			Path:     cfg.Database.Path,
			InMemory: cfg.Database.Path == "",
			Logger:   logger,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// embedders holds the two decorator chains built over one embedding provider.
// Search embeds queries; ingest and backfill embed documents.
type embedders struct {
	query    domain.Embedder
	document domain.Embedder
}

// buildEmbedders assembles the query chain (provider -> cached -> instrumented -> query instruction)
// and the document chain (provider -> instrumented -> document instruction).
// Both are nil when embeddings are disabled. store may be nil to skip caching.
func buildEmbedders(cfg *config.Config, store db.KVStore, logger *zap.Logger) (embedders, error) {
	ec := cfg.Embedding

	base, err := newEmbeddingProvider(&ec, logger)
	if err != nil || base == nil {
		return embedders{}, err
	}

	query := base
	if store != nil && ec.Cache.Enabled {
		query = embcache.New(base, store, embcache.Config{
			Prefix: cfg.Storage.KeyPrefix,
			Model:  ec.Model,
			TTL:    time.Duration(ec.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}
	query = provideruc.NewInstrumentedEmbedder(query, ec.Provider, ec.Model, logger)
	document := provideruc.NewInstrumentedEmbedder(base, ec.Provider, ec.Model, logger)

	// Instruction prefix is outermost, so the cache key includes it.
	return embedders{
		query:    withInstruction(query, ec.QueryInstruction),
		document: withInstruction(document, ec.DocumentInstruction),
	}, nil
}

// newEmbeddingProvider creates the configured embedding client, or nil for provider "none".
func newEmbeddingProvider(ec *config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, error) {
	switch ec.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderOpenAI:
		return openaiProv.NewEmbedder(&openaiProv.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			Provider:   ec.Provider,
			Headers:    ec.Headers,
			Logger:     logger,
		}), nil
	case config.ProviderOllama:
		e, err := ollamaProv.NewEmbedder(&ollamaProv.Config{
			ServerURL: ec.BaseURL,
			Model:     ec.Model,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create ollama embedder: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", ec.Provider)
	}
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// buildGenerator assembles provider -> instrumented. Returns nil when generation is disabled.
func buildGenerator(cfg *config.Config, logger *zap.Logger) (domain.Generator, error) {
	gc := cfg.Generation

	var base domain.Generator
	switch gc.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderOpenAI:
		base = openaiProv.NewGenerator(&openaiProv.Config{
			APIKey:      gc.APIKey,
			BaseURL:     gc.BaseURL,
			Model:       gc.Model,
			Provider:    gc.Provider,
			MaxTokens:   gc.MaxTokens,
			Temperature: gc.Temperature,
			Logger:      logger,
		})
	case config.ProviderOllama:
		g, err := ollamaProv.NewGenerator(&ollamaProv.Config{
			ServerURL:   gc.BaseURL,
			Model:       gc.Model,
			MaxTokens:   gc.MaxTokens,
			Temperature: float64(gc.Temperature),
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create ollama generator: %w", err)
		}
		base = g
	default:
		return nil, fmt.Errorf("unknown generation provider %q", gc.Provider)
	}

	return provideruc.NewInstrumentedGenerator(base, gc.Provider, gc.Model, logger), nil
}
