package sdk

import (
	"context"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	backfilluc "github.com/kailas-cloud/docsearch/internal/usecase/backfill"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// --- documentUseCase mock ---

type mockDocumentUC struct {
	ingestFn func(ctx context.Context, ownerID string, in documentuc.IngestInput) (domdoc.Document, error)
	listFn   func(ctx context.Context, ownerID string) ([]domdoc.Document, error)
	getFn    func(ctx context.Context, ownerID, id string) (domdoc.Document, error)
	deleteFn func(ctx context.Context, ownerID, id string) error
}

func (m *mockDocumentUC) Ingest(ctx context.Context, ownerID string, in documentuc.IngestInput) (domdoc.Document, error) {
	return m.ingestFn(ctx, ownerID, in)
}

func (m *mockDocumentUC) List(ctx context.Context, ownerID string) ([]domdoc.Document, error) {
	return m.listFn(ctx, ownerID)
}

func (m *mockDocumentUC) Get(ctx context.Context, ownerID, id string) (domdoc.Document, error) {
	return m.getFn(ctx, ownerID, id)
}

func (m *mockDocumentUC) Delete(ctx context.Context, ownerID, id string) error {
	return m.deleteFn(ctx, ownerID, id)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, ownerID, rawQuery string) (searchuc.Response, error)
}

func (m *mockSearchUC) Search(ctx context.Context, ownerID, rawQuery string) (searchuc.Response, error) {
	return m.searchFn(ctx, ownerID, rawQuery)
}

// --- backfillUseCase mock ---

type mockBackfillUC struct {
	runFn  func(ctx context.Context, ownerID string) (backfilluc.Report, error)
	closed bool
}

func (m *mockBackfillUC) Run(ctx context.Context, ownerID string) (backfilluc.Report, error) {
	return m.runFn(ctx, ownerID)
}

func (m *mockBackfillUC) Close() { m.closed = true }

// --- providers ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockGenerator struct {
	fn func(ctx context.Context, systemPrompt, userPrompt string) (GenerationResult, error)
}

func (m *mockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (GenerationResult, error) {
	return m.fn(ctx, systemPrompt, userPrompt)
}

// --- helpers ---

func testClient(docSvc documentUseCase, searchSvc searchUseCase, backfillSvc backfillUseCase) *Client {
	c := &Client{
		docSvc:    docSvc,
		searchSvc: searchSvc,
	}
	if backfillSvc != nil {
		c.backfillSvc = backfillSvc
	}
	return c
}
