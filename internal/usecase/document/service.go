package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// IngestInput is an already extracted document submitted by a caller.
type IngestInput struct {
	Title    string
	FileName string
	FileType string
	URL      string
	Text     string
}

// Service handles the document catalog: ingestion with AI enrichment, listing and removal.
type Service struct {
	repo   Repository
	embed  Embedder
	gen    Generator
	logger *zap.Logger
	newID  func() string
}

// New creates a document service. embed and gen may be nil; the matching enrichment is skipped.
func New(repo Repository, embed Embedder, gen Generator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		embed:  embed,
		gen:    gen,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Ingest validates the input, enriches it with a summary, key insights and an embedding,
// and stores the document. Enrichment steps fail independently and leave their field empty.
func (s *Service) Ingest(ctx context.Context, ownerID string, in IngestInput) (domdoc.Document, error) {
	if ownerID == "" {
		return domdoc.Document{}, domain.ErrUnauthorized
	}

	doc, err := domdoc.New(domdoc.Attributes{
		ID:       s.newID(),
		OwnerID:  ownerID,
		Title:    strings.TrimSpace(in.Title),
		FileName: strings.TrimSpace(in.FileName),
		FileType: in.FileType,
		URL:      in.URL,
		Text:     in.Text,
	})
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	attrs := doc.Attributes()
	excerpt := domain.TruncateRunes(attrs.Text, domain.MaxEmbeddingInputRunes)
	log := s.logger.With(zap.String("document_id", attrs.ID))

	// Goroutines only log; enrichment never fails the ingest.
	var g errgroup.Group
	g.Go(func() error {
		attrs.Summary = s.summarize(ctx, log, excerpt)
		return nil
	})
	g.Go(func() error {
		attrs.Insights = s.extractInsights(ctx, log, excerpt)
		return nil
	})
	g.Go(func() error {
		attrs.Embedding = s.embedText(ctx, log, excerpt)
		return nil
	})
	_ = g.Wait()

	enriched := domdoc.Reconstruct(attrs)
	if err := s.repo.Upsert(ctx, &enriched); err != nil {
		return domdoc.Document{}, fmt.Errorf("store document: %w", err)
	}
	return enriched, nil
}

// List returns the owner's documents, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]domdoc.Document, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}
	docs, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	domdoc.SortNewestFirst(docs)
	return docs, nil
}

// Get returns one of the owner's documents.
func (s *Service) Get(ctx context.Context, ownerID, id string) (domdoc.Document, error) {
	if ownerID == "" {
		return domdoc.Document{}, domain.ErrUnauthorized
	}
	doc, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Delete removes one of the owner's documents.
// Documents of other owners are reported as domain.ErrDocumentNotFound.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return domain.ErrUnauthorized
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *Service) summarize(ctx context.Context, log *zap.Logger, text string) string {
	if s.gen == nil || text == "" {
		return ""
	}
	res, err := s.gen.Generate(ctx, summarySystemPrompt, summaryUserPrompt+text)
	if err != nil {
		log.Warn("Summary generation failed", zap.Error(err))
		return ""
	}
	domain.UsageFromContext(ctx).AddGenerationTokens(res.PromptTokens + res.CompletionTokens)
	return strings.TrimSpace(res.Text)
}

func (s *Service) extractInsights(ctx context.Context, log *zap.Logger, text string) []string {
	if s.gen == nil || text == "" {
		return nil
	}
	res, err := s.gen.Generate(ctx, insightsSystemPrompt, insightsUserPrompt+text)
	if err != nil {
		log.Warn("Insight extraction failed", zap.Error(err))
		return nil
	}
	domain.UsageFromContext(ctx).AddGenerationTokens(res.PromptTokens + res.CompletionTokens)
	return parseInsights(res.Text)
}

func (s *Service) embedText(ctx context.Context, log *zap.Logger, text string) []float32 {
	if s.embed == nil || text == "" {
		return nil
	}
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		log.Warn("Document embedding failed, storing without vector", zap.Error(err))
		return nil
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(res.TotalTokens)
	return res.Embedding
}
