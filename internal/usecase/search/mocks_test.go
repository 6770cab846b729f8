package search

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
)

// --- Mocks ---

type mockLister struct {
	docs []domdoc.Document
	err  error
}

func (m *mockLister) ListByOwner(_ context.Context, _ string) ([]domdoc.Document, error) {
	return m.docs, m.err
}

type mockEmbedder struct {
	mu     sync.Mutex
	fn     func(text string) (domain.EmbeddingResult, error)
	called int
	got    string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.called++
	m.got = text
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err
	}
	return m.fn(text)
}

type mockGenerator struct {
	text       string
	err        error
	called     int
	gotSystem  string
	gotUser    string
	hasTimeout bool
}

func (m *mockGenerator) Generate(ctx context.Context, system, user string) (domain.GenerationResult, error) {
	m.called++
	m.gotSystem = system
	m.gotUser = user
	_, m.hasTimeout = ctx.Deadline()
	if m.err != nil {
		return domain.GenerationResult{}, m.err
	}
	return domain.GenerationResult{Text: m.text, PromptTokens: 10, CompletionTokens: 5}, nil
}

type panicGenerator struct{}

func (panicGenerator) Generate(context.Context, string, string) (domain.GenerationResult, error) {
	panic("generator exploded")
}

// --- Helpers ---

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func makeDoc(id, title, text string, age time.Duration, emb ...float32) domdoc.Document {
	return domdoc.Reconstruct(domdoc.Attributes{
		ID:        id,
		OwnerID:   "user_1",
		Title:     title,
		FileName:  id + ".pdf",
		Text:      text,
		Embedding: emb,
		CreatedAt: baseTime.Add(-age),
	})
}

func mustQuery(raw string) *query.Query {
	q, err := query.Parse(raw)
	if err != nil {
		panic(err)
	}
	return &q
}

func testConfig() domain.SearchConfig {
	cfg := domain.DefaultSearchConfig()
	cfg.EmbeddingTimeout = time.Second
	cfg.AnswerTimeout = time.Second
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}
