package search

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
)

func vecEmbedder(vec ...float32) *mockEmbedder {
	return &mockEmbedder{fn: func(string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{Embedding: vec, TotalTokens: 3}, nil
	}}
}

func failingEmbedder() *mockEmbedder {
	return &mockEmbedder{fn: func(string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{}, errors.New("provider down")
	}}
}

func TestRank_AtMostFiveSorted(t *testing.T) {
	docs := make([]domdoc.Document, 0, 8)
	for i, title := range []string{"revenue", "revenue report", "other", "x", "revenue revenue", "y", "z", "revenue q"} {
		docs = append(docs, makeDoc(string(rune('a'+i)), title, "revenue text", time.Duration(i)*time.Hour, 1, float32(i)))
	}
	r := NewRanker(vecEmbedder(1, 1), testConfig(), nil)

	ranking, err := r.Rank(context.Background(), docs, mustQuery("revenue"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ranking.Candidates) != 5 {
		t.Fatalf("expected 5 candidates, got %d", len(ranking.Candidates))
	}
	for i := 1; i < len(ranking.Candidates); i++ {
		if ranking.Candidates[i].Hybrid() > ranking.Candidates[i-1].Hybrid() {
			t.Errorf("candidates not sorted at %d: %f > %f", i,
				ranking.Candidates[i].Hybrid(), ranking.Candidates[i-1].Hybrid())
		}
	}
	if len(ranking.Degraded) != 0 {
		t.Errorf("unexpected degradations: %v", ranking.Degraded)
	}
}

func TestRank_EmbeddingFailureRanksLexically(t *testing.T) {
	docs := []domdoc.Document{
		makeDoc("a", "Invoice", "payment due", 0, 1, 0),
		makeDoc("b", "Annual Report", "revenue growth", time.Hour, 0, 1),
	}
	r := NewRanker(failingEmbedder(), testConfig(), nil)

	ranking, err := r.Rank(context.Background(), docs, mustQuery("revenue"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ranking.Has(result.EmbeddingUnavailable) {
		t.Errorf("expected EmbeddingUnavailable, got %v", ranking.Degraded)
	}
	top := ranking.Candidates[0]
	if doc := top.Document(); doc.ID() != "b" {
		t.Errorf("top = %q, want b", doc.ID())
	}
	if top.HasSemantic() {
		t.Error("semantic score must be absent when embedding failed")
	}
}

func TestRank_SemanticOnlyForDocsWithEmbedding(t *testing.T) {
	docs := []domdoc.Document{
		makeDoc("with", "Alpha", "nothing here", 0, 1, 0),
		makeDoc("without", "Beta", "nothing here", 0),
	}
	r := NewRanker(vecEmbedder(1, 0), testConfig(), nil)

	ranking, err := r.Rank(context.Background(), docs, mustQuery("revenue"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byID := map[string]result.ScoredCandidate{}
	for _, c := range ranking.Candidates {
		doc := c.Document()
		byID[doc.ID()] = c
	}
	with := byID["with"]
	if !with.HasSemantic() || with.Hybrid() < 0.4-1e-9 || with.Hybrid() > 0.4+1e-9 {
		t.Errorf("with: semantic=%v hybrid=%f, want 0.4", with.HasSemantic(), with.Hybrid())
	}
	if without := byID["without"]; without.HasSemantic() {
		t.Error("document without embedding must not get a semantic score")
	}
}

func TestRank_DimensionMismatchScoresZero(t *testing.T) {
	docs := []domdoc.Document{
		makeDoc("a", "Revenue", "", 0, 1, 0, 0),
	}
	r := NewRanker(vecEmbedder(1, 0), testConfig(), nil)

	ranking, err := r.Rank(context.Background(), docs, mustQuery("revenue"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ranking.Candidates[0].Semantic(); got != 0 {
		t.Errorf("semantic = %f, want 0", got)
	}
}

func TestRank_NoMatchesFallsBackToRecent(t *testing.T) {
	docs := []domdoc.Document{
		makeDoc("old", "Invoice", "payment", 48*time.Hour),
		makeDoc("new", "Memo", "meeting", 0),
		makeDoc("mid", "Notes", "ideas", 24*time.Hour),
	}
	r := NewRanker(nil, testConfig(), nil)

	ranking, err := r.Rank(context.Background(), docs, mustQuery("revenue"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ranking.Has(result.NoMatches) {
		t.Fatalf("expected NoMatches, got %v", ranking.Degraded)
	}
	want := []string{"new", "mid", "old"}
	for i, c := range ranking.Candidates {
		doc := c.Document()
		if doc.ID() != want[i] {
			t.Errorf("candidate %d = %q, want %q", i, doc.ID(), want[i])
		}
		if c.Hybrid() != 0 || len(c.Highlights()) != 0 {
			t.Errorf("fallback candidate must have zero score and no highlights")
		}
	}
	if docs[0].ID() != "old" {
		t.Error("fallback must not reorder the caller's slice")
	}
}

func TestRank_HighlightsOnRankedCandidates(t *testing.T) {
	docs := []domdoc.Document{makeDoc("a", "Report", "strong revenue growth this year", 0)}
	r := NewRanker(nil, testConfig(), nil)

	ranking, err := r.Rank(context.Background(), docs, mustQuery("revenue"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h := ranking.Candidates[0].Highlights(); len(h) != 1 || !strings.Contains(h[0], "revenue") {
		t.Errorf("highlights = %#v", h)
	}
}

func TestRank_TruncatesEmbeddingInput(t *testing.T) {
	emb := vecEmbedder(1)
	r := NewRanker(emb, testConfig(), nil)
	long := strings.Repeat("é", domain.MaxEmbeddingInputRunes+100)

	if _, err := r.Rank(context.Background(), []domdoc.Document{makeDoc("a", "t", "", 0)}, mustQuery(long)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := utf8.RuneCountInString(emb.got); n != domain.MaxEmbeddingInputRunes {
		t.Errorf("embedding input = %d runes, want %d", n, domain.MaxEmbeddingInputRunes)
	}
}

func TestRank_RecordsEmbeddingUsage(t *testing.T) {
	ctx, usage := domain.NewContextWithUsage(context.Background())
	r := NewRanker(vecEmbedder(1), testConfig(), nil)

	if _, err := r.Rank(ctx, []domdoc.Document{makeDoc("a", "t", "", 0, 1)}, mustQuery("t")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !usage.EmbeddingUsed || usage.EmbeddingTokens != 3 {
		t.Errorf("usage: embedding used = %v, tokens = %d", usage.EmbeddingUsed, usage.EmbeddingTokens)
	}
}

func TestRank_EmbedderPanicDegrades(t *testing.T) {
	emb := &mockEmbedder{fn: func(string) (domain.EmbeddingResult, error) { panic("boom") }}
	r := NewRanker(emb, testConfig(), nil)

	ranking, err := r.Rank(context.Background(), []domdoc.Document{makeDoc("a", "revenue", "", 0)}, mustQuery("revenue"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ranking.Has(result.EmbeddingUnavailable) {
		t.Errorf("expected EmbeddingUnavailable, got %v", ranking.Degraded)
	}
}

func TestRank_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewRanker(nil, testConfig(), nil)

	if _, err := r.Rank(ctx, []domdoc.Document{makeDoc("a", "t", "", 0)}, mustQuery("t")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
