package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// ctxCheckEvery is how many documents are scored between cancellation checks.
const ctxCheckEvery = 256

// Ranking is the ranker output: ordered candidates plus what degraded on the way.
type Ranking struct {
	Candidates []result.ScoredCandidate
	Degraded   []result.Degradation
}

// Has reports whether the ranking carries the given degradation.
func (r *Ranking) Has(d result.Degradation) bool {
	return slices.Contains(r.Degraded, d)
}

// Ranker fuses lexical and semantic scores into the top results.
type Ranker struct {
	embed  Embedder
	cfg    domain.SearchConfig
	logger *zap.Logger
}

// NewRanker creates a ranker. A nil embedder disables semantic scoring.
func NewRanker(embed Embedder, cfg domain.SearchConfig, logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{embed: embed, cfg: cfg, logger: logger}
}

// Rank scores docs against q and returns at most MaxResults candidates sorted by hybrid score.
// Lexical scoring and the query embedding run concurrently; an embedding failure only
// drops semantic scores. When nothing matches, the most recent documents are returned instead.
func (r *Ranker) Rank(ctx context.Context, docs []domdoc.Document, q *query.Query) (Ranking, error) {
	var (
		ranking    Ranking
		candidates []result.ScoredCandidate
		queryVec   []float32
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverAs(&err, "lexical scoring")
		candidates = make([]result.ScoredCandidate, len(docs))
		for i := range docs {
			if i%ctxCheckEvery == 0 {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("lexical scoring: %w", err)
				}
			}
			candidates[i] = result.NewCandidate(docs[i], LexicalScore(&docs[i], q))
		}
		return nil
	})
	g.Go(func() error {
		var err error
		func() {
			defer recoverAs(&err, "query embedding")
			queryVec = r.embedQuery(gctx, q)
		}()
		if err != nil {
			r.logger.Error("Query embedding panicked, ranking lexically", zap.Error(err))
			queryVec = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Ranking{}, err //nolint:wrapcheck // already wrapped by the scoring goroutine
	}

	if len(queryVec) == 0 {
		ranking.Degraded = append(ranking.Degraded, result.EmbeddingUnavailable)
	} else {
		r.scoreSemantic(candidates, queryVec)
	}

	for i := range candidates {
		candidates[i].Fuse(r.cfg.LexicalWeight, r.cfg.SemanticWeight)
	}

	slices.SortStableFunc(candidates, func(a, b result.ScoredCandidate) int {
		return cmp.Compare(b.Hybrid(), a.Hybrid())
	})
	if len(candidates) > r.cfg.MaxResults {
		candidates = candidates[:r.cfg.MaxResults]
	}

	if allZero(candidates) {
		ranking.Candidates = RecentCandidates(docs, r.cfg.MaxResults)
		ranking.Degraded = append(ranking.Degraded, result.NoMatches)
		return ranking, nil
	}

	for i := range candidates {
		doc := candidates[i].Document()
		candidates[i].SetHighlights(ExtractHighlights(doc.Text(), q))
	}
	ranking.Candidates = candidates
	return ranking, nil
}

// embedQuery returns the query vector, or nil when semantic scoring is unavailable.
func (r *Ranker) embedQuery(ctx context.Context, q *query.Query) []float32 {
	if r.embed == nil {
		return nil
	}

	if r.cfg.EmbeddingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.EmbeddingTimeout)
		defer cancel()
	}

	res, err := r.embed.Embed(ctx, domain.TruncateRunes(q.Raw(), domain.MaxEmbeddingInputRunes))
	if err != nil {
		r.logger.Warn("Query embedding failed, ranking lexically", zap.Error(err))
		metrics.SearchDegradationsTotal.WithLabelValues(string(result.EmbeddingUnavailable)).Inc()
		return nil
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(res.TotalTokens)

	if len(res.Embedding) == 0 {
		r.logger.Warn("Query embedding is empty, ranking lexically")
		metrics.SearchDegradationsTotal.WithLabelValues(string(result.EmbeddingUnavailable)).Inc()
		return nil
	}
	return res.Embedding
}

// scoreSemantic sets cosine similarity on every candidate whose document has an embedding.
func (r *Ranker) scoreSemantic(candidates []result.ScoredCandidate, queryVec []float32) {
	mismatched := 0
	for i := range candidates {
		doc := candidates[i].Document()
		if !doc.HasEmbedding() {
			continue
		}
		if len(doc.Embedding()) != len(queryVec) {
			mismatched++
		}
		candidates[i].SetSemantic(CosineSimilarity(queryVec, doc.Embedding()))
	}
	if mismatched > 0 {
		r.logger.Debug("Embedding dimensions mismatch",
			zap.Int("query_dimensions", len(queryVec)),
			zap.Int("documents", mismatched),
		)
	}
}

// RecentCandidates returns the n most recently created documents as zero-score candidates.
func RecentCandidates(docs []domdoc.Document, n int) []result.ScoredCandidate {
	recent := slices.Clone(docs)
	domdoc.SortNewestFirst(recent)
	if len(recent) > n {
		recent = recent[:n]
	}

	out := make([]result.ScoredCandidate, len(recent))
	for i := range recent {
		out[i] = result.Recent(recent[i])
	}
	return out
}

// recoverAs turns a panic in a scoring goroutine into an error.
func recoverAs(err *error, op string) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("%s panic: %v", op, rec)
	}
}

func allZero(candidates []result.ScoredCandidate) bool {
	for i := range candidates {
		if candidates[i].Hybrid() != 0 {
			return false
		}
	}
	return true
}
