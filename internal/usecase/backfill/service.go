package backfill

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 4

// Report summarizes one backfill run.
type Report struct {
	Scanned  int `json:"scanned"`
	Embedded int `json:"embedded"`
	Failed   int `json:"failed"`
}

// Service fills in embeddings for documents that were stored without one.
type Service struct {
	repo   Repository
	embed  Embedder
	pool   *ants.Pool
	logger *zap.Logger
}

// New creates a backfill service with a bounded worker pool. Call Close to release it.
func New(repo Repository, embed Embedder, workers int, logger *zap.Logger) (*Service, error) {
	if embed == nil {
		return nil, fmt.Errorf("backfill embedder: %w", domain.ErrNotConfigured)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create backfill pool: %w", err)
	}
	return &Service{repo: repo, embed: embed, pool: pool, logger: logger}, nil
}

// Run embeds every document of the owner that has no embedding.
// Per-document failures are counted, not returned; only listing errors fail the run.
func (s *Service) Run(ctx context.Context, ownerID string) (Report, error) {
	if ownerID == "" {
		return Report{}, domain.ErrUnauthorized
	}

	docs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return Report{}, fmt.Errorf("list documents: %w", err)
	}

	var (
		wg       sync.WaitGroup
		embedded atomic.Int64
		failed   atomic.Int64
	)
	report := Report{Scanned: len(docs)}

	for i := range docs {
		if docs[i].HasEmbedding() {
			continue
		}
		doc := docs[i]
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			if err := s.embedOne(ctx, &doc); err != nil {
				failed.Add(1)
				s.logger.Warn("Backfill embedding failed",
					zap.String("owner", ownerID),
					zap.String("document_id", doc.ID()),
					zap.Error(err),
				)
				return
			}
			embedded.Add(1)
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			if errors.Is(submitErr, ants.ErrPoolClosed) {
				s.logger.Error("Backfill pool closed", zap.Error(submitErr))
			}
		}
	}
	wg.Wait()

	report.Embedded = int(embedded.Load())
	report.Failed = int(failed.Load())
	s.logger.Info("Backfill finished",
		zap.String("owner", ownerID),
		zap.Int("scanned", report.Scanned),
		zap.Int("embedded", report.Embedded),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *Service) embedOne(ctx context.Context, doc *domdoc.Document) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("backfill canceled: %w", err)
	}
	text := domain.TruncateRunes(doc.Text(), domain.MaxEmbeddingInputRunes)
	if text == "" {
		return errors.New("document has no text")
	}
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(res.Embedding) == 0 {
		return domain.ErrEmptyEmbedding
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(res.TotalTokens)
	if err := s.repo.UpdateEmbedding(ctx, doc.OwnerID(), doc.ID(), res.Embedding); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}

// Close releases the worker pool.
func (s *Service) Close() {
	s.pool.Release()
}
