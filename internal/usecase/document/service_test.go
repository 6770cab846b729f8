package document

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// --- Mocks ---

type mockDocRepo struct {
	mu        sync.Mutex
	upserted  []domdoc.Document
	upsertErr error
	getResult domdoc.Document
	getErr    error
	listDocs  []domdoc.Document
	listErr   error
	deleteErr error
}

func (m *mockDocRepo) Upsert(_ context.Context, doc *domdoc.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, *doc)
	return nil
}

func (m *mockDocRepo) Get(_ context.Context, _, _ string) (domdoc.Document, error) {
	return m.getResult, m.getErr
}

func (m *mockDocRepo) ListByOwner(_ context.Context, _ string) ([]domdoc.Document, error) {
	return m.listDocs, m.listErr
}

func (m *mockDocRepo) Delete(_ context.Context, _, _ string) error {
	return m.deleteErr
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	got    string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.got = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

// mockGenerator answers by system prompt so summary and insights can fail separately.
type mockGenerator struct {
	summary     string
	summaryErr  error
	insights    string
	insightsErr error
}

func (m *mockGenerator) Generate(_ context.Context, system, _ string) (domain.GenerationResult, error) {
	if system == summarySystemPrompt {
		return domain.GenerationResult{Text: m.summary, PromptTokens: 10, CompletionTokens: 5}, m.summaryErr
	}
	return domain.GenerationResult{Text: m.insights, PromptTokens: 10, CompletionTokens: 5}, m.insightsErr
}

func validInput() IngestInput {
	return IngestInput{
		Title:    "Annual Report",
		FileName: "report.pdf",
		FileType: "application/pdf",
		URL:      "https://files.example.com/report.pdf",
		Text:     "Revenue growth was strong this year.",
	}
}

func newTestService(repo *mockDocRepo, emb Embedder, gen Generator) *Service {
	svc := New(repo, emb, gen, nil)
	svc.newID = func() string { return "doc-fixed" }
	return svc
}

// --- Ingest ---

func TestIngest_EnrichesAndStores(t *testing.T) {
	repo := &mockDocRepo{}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 4}}
	gen := &mockGenerator{summary: "  A strong year.  ", insights: `["Revenue grew","Costs fell"]`}
	svc := newTestService(repo, emb, gen)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	doc, err := svc.Ingest(ctx, "user_1", validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.ID() != "doc-fixed" || doc.OwnerID() != "user_1" {
		t.Errorf("unexpected identity: %s/%s", doc.OwnerID(), doc.ID())
	}
	if doc.Summary() != "A strong year." {
		t.Errorf("Summary() = %q", doc.Summary())
	}
	if len(doc.Insights()) != 2 || doc.Insights()[1] != "Costs fell" {
		t.Errorf("Insights() = %v", doc.Insights())
	}
	if !doc.HasEmbedding() {
		t.Error("expected embedding")
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(repo.upserted))
	}
	if usage.EmbeddingTokens != 4 || usage.GenerationTokens != 30 {
		t.Errorf("unexpected usage: embedding=%d generation=%d", usage.EmbeddingTokens, usage.GenerationTokens)
	}
}

func TestIngest_EnrichmentFailuresDegradeIndependently(t *testing.T) {
	tests := []struct {
		name         string
		emb          *mockEmbedder
		gen          *mockGenerator
		wantSummary  bool
		wantInsights bool
		wantVector   bool
	}{
		{
			name:         "embedding fails",
			emb:          &mockEmbedder{err: errors.New("down")},
			gen:          &mockGenerator{summary: "s", insights: `["i"]`},
			wantSummary:  true,
			wantInsights: true,
		},
		{
			name:         "summary fails",
			emb:          &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}},
			gen:          &mockGenerator{summaryErr: errors.New("429"), insights: `["i"]`},
			wantInsights: true,
			wantVector:   true,
		},
		{
			name:        "insights fail",
			emb:         &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}},
			gen:         &mockGenerator{summary: "s", insightsErr: errors.New("timeout")},
			wantSummary: true,
			wantVector:  true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(&mockDocRepo{}, tc.emb, tc.gen)
			doc, err := svc.Ingest(context.Background(), "user_1", validInput())
			if err != nil {
				t.Fatalf("enrichment failure must not fail ingest: %v", err)
			}
			if (doc.Summary() != "") != tc.wantSummary {
				t.Errorf("summary = %q, want present=%v", doc.Summary(), tc.wantSummary)
			}
			if (len(doc.Insights()) > 0) != tc.wantInsights {
				t.Errorf("insights = %v, want present=%v", doc.Insights(), tc.wantInsights)
			}
			if doc.HasEmbedding() != tc.wantVector {
				t.Errorf("HasEmbedding() = %v, want %v", doc.HasEmbedding(), tc.wantVector)
			}
		})
	}
}

func TestIngest_WithoutProviders(t *testing.T) {
	svc := newTestService(&mockDocRepo{}, nil, nil)

	doc, err := svc.Ingest(context.Background(), "user_1", validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Summary() != "" || doc.HasEmbedding() {
		t.Error("no enrichment expected without providers")
	}
}

func TestIngest_TruncatesProviderInput(t *testing.T) {
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	svc := newTestService(&mockDocRepo{}, emb, nil)

	in := validInput()
	in.Text = strings.Repeat("ж", domain.MaxEmbeddingInputRunes+100)
	if _, err := svc.Ingest(context.Background(), "user_1", in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len([]rune(emb.got)); n != domain.MaxEmbeddingInputRunes {
		t.Errorf("embedded %d runes, want %d", n, domain.MaxEmbeddingInputRunes)
	}
}

func TestIngest_Validation(t *testing.T) {
	svc := newTestService(&mockDocRepo{}, nil, nil)

	in := validInput()
	in.Title, in.FileName = "", "  "
	_, err := svc.Ingest(context.Background(), "user_1", in)
	if !errors.Is(err, domain.ErrInvalidDocument) {
		t.Fatalf("expected ErrInvalidDocument, got: %v", err)
	}

	_, err = svc.Ingest(context.Background(), "", validInput())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestIngest_StoreError(t *testing.T) {
	storeErr := errors.New("store down")
	svc := newTestService(&mockDocRepo{upsertErr: storeErr}, nil, nil)

	_, err := svc.Ingest(context.Background(), "user_1", validInput())
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got: %v", err)
	}
}

// --- List / Get / Delete ---

func TestList_NewestFirst(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockDocRepo{listDocs: []domdoc.Document{
		domdoc.Reconstruct(domdoc.Attributes{ID: "old", CreatedAt: base}),
		domdoc.Reconstruct(domdoc.Attributes{ID: "new", CreatedAt: base.Add(time.Hour)}),
	}}
	svc := newTestService(repo, nil, nil)

	docs, err := svc.List(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if docs[0].ID() != "new" || docs[1].ID() != "old" {
		t.Errorf("unexpected order: %s, %s", docs[0].ID(), docs[1].ID())
	}
}

func TestList_Unauthorized(t *testing.T) {
	svc := newTestService(&mockDocRepo{}, nil, nil)
	if _, err := svc.List(context.Background(), ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(&mockDocRepo{getErr: domain.ErrDocumentNotFound}, nil, nil)

	_, err := svc.Get(context.Background(), "user_1", "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got: %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService(&mockDocRepo{}, nil, nil)
	if err := svc.Delete(context.Background(), "user_1", "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc = newTestService(&mockDocRepo{deleteErr: domain.ErrDocumentNotFound}, nil, nil)
	if err := svc.Delete(context.Background(), "user_2", "doc-1"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got: %v", err)
	}
}
