package sdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/docsearch/internal/db"
	dbBadger "github.com/kailas-cloud/docsearch/internal/db/badger"
	dbRedis "github.com/kailas-cloud/docsearch/internal/db/redis"
	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	documentrepo "github.com/kailas-cloud/docsearch/internal/repository/document"
	"github.com/kailas-cloud/docsearch/internal/repository/embcache"
	backfilluc "github.com/kailas-cloud/docsearch/internal/usecase/backfill"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type documentUseCase interface {
	Ingest(ctx context.Context, ownerID string, in documentuc.IngestInput) (domdoc.Document, error)
	List(ctx context.Context, ownerID string) ([]domdoc.Document, error)
	Get(ctx context.Context, ownerID, id string) (domdoc.Document, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type searchUseCase interface {
	Search(ctx context.Context, ownerID, rawQuery string) (searchuc.Response, error)
}

type backfillUseCase interface {
	Run(ctx context.Context, ownerID string) (backfilluc.Report, error)
	Close()
}

// Client is the docsearch SDK entry point.
type Client struct {
	store       db.Store
	docSvc      documentUseCase
	searchSvc   searchUseCase
	backfillSvc backfillUseCase // nil without an embedder
	healthSvc   healthUseCase
	obs         *observer
}

// New creates a Client and connects to the document store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:       domain.DefaultKeyPrefix,
		search:          domain.DefaultSearchConfig(),
		backfillWorkers: backfilluc.DefaultWorkers,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("docsearch: store required (use WithRedis, WithValkey or WithBadger)")
	}

	cfg.search = cfg.search.WithDefaults()
	if err := cfg.search.Validate(); err != nil {
		return nil, fmt.Errorf("docsearch: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("docsearch: store not ready: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.addrs,
			Password:   cfg.password,
			Standalone: cfg.standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("docsearch: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case "badger":
		s, err := dbBadger.NewStore(dbBadger.Config{
			Path:     cfg.badgerPath,
			InMemory: cfg.badgerPath == "",
			Logger:   cfg.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("docsearch: create badger store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("docsearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	logger := obs.logger
	repo := documentrepo.New(store, cfg.keyPrefix)

	// Nil interfaces (not typed nil) when a provider is absent.
	// Only queries go through the cache; documents are embedded once per ingest.
	var queryEmbed, docEmbed domain.Embedder
	if cfg.embedder != nil {
		queryEmbed = cfg.embedder
		docEmbed = cfg.embedder
		if cfg.cache {
			queryEmbed = embcache.New(cfg.embedder, store, embcache.Config{
				Prefix: cfg.keyPrefix,
				Model:  cfg.cacheModel,
				TTL:    cfg.cacheTTL,
			}, metrics.EmbeddingCacheTotal, logger)
		}
	}
	if cfg.documentEmbedder != nil {
		docEmbed = cfg.documentEmbedder
	}
	var gen domain.Generator
	if cfg.generator != nil {
		gen = cfg.generator
	}

	c := &Client{
		store:     store,
		docSvc:    documentuc.New(repo, docEmbed, gen, logger),
		searchSvc: searchuc.New(repo, queryEmbed, gen, cfg.search, logger),
		healthSvc: healthuc.New(store, providerChecker(docEmbed), providerChecker(gen), logger),
		obs:       obs,
	}

	if docEmbed != nil {
		bf, err := backfilluc.New(repo, docEmbed, cfg.backfillWorkers, logger)
		if err != nil {
			return nil, fmt.Errorf("docsearch: %w", err)
		}
		c.backfillSvc = bf
	}
	return c, nil
}

// Close releases the worker pool and the store.
func (c *Client) Close() {
	if c.backfillSvc != nil {
		c.backfillSvc.Close()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Documents returns the document service for a given owner.
func (c *Client) Documents(ownerID string) *DocumentService {
	return &DocumentService{
		ownerID: ownerID,
		svc:     c.docSvc,
		obs:     c.obs,
	}
}

// Search ranks the owner's documents against query.
// Provider failures never fail a search; they show up in SearchResponse.Degraded.
func (c *Client) Search(ctx context.Context, ownerID, query string) (_ SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	ctx, usage := domain.NewContextWithUsage(ctx)
	resp, err := c.searchSvc.Search(ctx, ownerID, query)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %w", err)
	}

	out := fromSearchResponse(&resp)
	out.Usage = Usage{EmbeddingTokens: usage.EmbeddingTokens, GenerationTokens: usage.GenerationTokens}
	return out, nil
}

// Reembed computes embeddings for the owner's documents stored without one.
// Returns ErrNotConfigured when the client has no embedder.
func (c *Client) Reembed(ctx context.Context, ownerID string) (_ ReembedReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reembed", start, err) }()

	if c.backfillSvc == nil {
		return ReembedReport{}, fmt.Errorf("reembed: %w", domain.ErrNotConfigured)
	}
	r, err := c.backfillSvc.Run(ctx, ownerID)
	if err != nil {
		return ReembedReport{}, fmt.Errorf("reembed: %w", err)
	}
	return ReembedReport{Scanned: r.Scanned, Embedded: r.Embedded, Failed: r.Failed}, nil
}

func fromSearchResponse(r *searchuc.Response) SearchResponse {
	results := make([]SearchResult, len(r.Results))
	for i, it := range r.Results {
		results[i] = SearchResult{
			ID:         it.ID,
			Title:      it.Title,
			FileName:   it.FileName,
			Snippet:    it.Snippet,
			Summary:    it.Summary,
			Score:      it.Score,
			URL:        it.URL,
			Highlights: it.Highlights,
		}
	}
	degraded := make([]string, len(r.Degraded))
	for i, d := range r.Degraded {
		degraded[i] = string(d)
	}
	return SearchResponse{
		Results:  results,
		Warning:  r.Warning,
		Answer:   r.Answer,
		Degraded: degraded,
	}
}
