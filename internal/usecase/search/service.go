package search

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// Result formatting defaults.
const (
	snippetRunes    = 200
	defaultTitle    = "Untitled"
	defaultFileName = "Unknown file"
	defaultSnippet  = "No content preview available"
	defaultSummary  = "No summary available"
)

// Item is one formatted search result.
type Item struct {
	ID         string
	Title      string
	FileName   string
	Snippet    string
	Summary    string
	Score      float64
	URL        string
	Highlights []string
}

// Response is the formatted search outcome.
// Warning is set when the results are a recency fallback; Answer when one was synthesized.
type Response struct {
	Results  []Item
	Warning  string
	Answer   string
	Degraded []result.Degradation
}

type stage int

const (
	stageValidating stage = iota
	stageLoading
	stageRanking
	stageAnswering
	stageFormatting
	stageFallback
	stageDone
)

var stageNames = [...]string{"validating", "loading", "ranking", "answering", "formatting", "fallback", "done"}

func (s stage) String() string { return stageNames[s] }

// run is the per-request state of one search.
type run struct {
	ownerID  string
	rawQuery string
	q        query.Query
	docs     []domdoc.Document
	ranking  Ranking
	answer   string
	resp     Response
}

// Service is the search entry point: it validates the query, loads the owner's
// documents, ranks them, optionally answers, and formats the response.
// Once documents are loaded every failure degrades instead of erroring.
type Service struct {
	docs    DocumentLister
	ranker  *Ranker
	answers *Synthesizer
	cfg     domain.SearchConfig
	logger  *zap.Logger
}

// New creates a search service. embed and gen may be nil.
func New(docs DocumentLister, embed Embedder, gen Generator, cfg domain.SearchConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		docs:    docs,
		ranker:  NewRanker(embed, cfg, logger),
		answers: NewSynthesizer(gen, cfg, logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// Search runs a search for ownerID.
// Returns domain.ErrUnauthorized without an owner, domain.ErrEmptyQuery for a blank query,
// and a wrapped store error when documents cannot be loaded.
func (s *Service) Search(ctx context.Context, ownerID, rawQuery string) (Response, error) {
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	r := &run{ownerID: ownerID, rawQuery: rawQuery}
	st := stageValidating
	for st != stageDone {
		next, err := s.step(ctx, st, r)
		if err != nil {
			metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
			return Response{}, err
		}
		st = next
	}
	return r.resp, nil
}

// step executes one state and returns the next one.
func (s *Service) step(ctx context.Context, st stage, r *run) (stage, error) {
	switch st {
	case stageValidating:
		if r.ownerID == "" {
			return stageDone, domain.ErrUnauthorized
		}
		q, err := query.Parse(r.rawQuery)
		if err != nil {
			return stageDone, fmt.Errorf("parse query: %w", err)
		}
		r.q = q
		return stageLoading, nil

	case stageLoading:
		start := time.Now()
		docs, err := s.docs.ListByOwner(ctx, r.ownerID)
		metrics.SearchStageDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())
		if err != nil {
			return stageDone, fmt.Errorf("list documents: %w", err)
		}
		metrics.SearchCandidates.Observe(float64(len(docs)))
		if len(docs) == 0 {
			r.resp = Response{Results: []Item{}}
			metrics.SearchRequestsTotal.WithLabelValues("empty").Inc()
			return stageDone, nil
		}
		r.docs = docs
		return stageRanking, nil

	case stageRanking:
		start := time.Now()
		ranking, err := s.safeRank(ctx, r)
		metrics.SearchStageDuration.WithLabelValues("rank").Observe(time.Since(start).Seconds())
		if err != nil {
			s.logger.Error("Ranking failed, falling back to recent documents",
				zap.String("owner", r.ownerID),
				zap.Int("documents", len(r.docs)),
				zap.Error(err),
			)
			return stageFallback, nil
		}
		r.ranking = ranking
		if ranking.Has(result.NoMatches) {
			metrics.SearchDegradationsTotal.WithLabelValues(string(result.NoMatches)).Inc()
			return stageFormatting, nil
		}
		return stageAnswering, nil

	case stageAnswering:
		start := time.Now()
		answer, ok := s.answers.Synthesize(ctx, &r.q, r.ranking.Candidates)
		metrics.SearchStageDuration.WithLabelValues("answer").Observe(time.Since(start).Seconds())
		if ok {
			r.answer = answer
		} else if r.q.IsQuestion() {
			r.ranking.Degraded = append(r.ranking.Degraded, result.AnswerUnavailable)
		}
		return stageFormatting, nil

	case stageFallback:
		metrics.SearchDegradationsTotal.WithLabelValues(string(result.RankingFailed)).Inc()
		r.ranking = Ranking{
			Candidates: RecentCandidates(r.docs, s.cfg.MaxResults),
			Degraded:   []result.Degradation{result.RankingFailed},
		}
		return stageFormatting, nil

	case stageFormatting:
		r.resp = format(r.ranking, r.answer)
		outcome := "ranked"
		if r.resp.Warning != "" {
			outcome = "fallback"
		}
		metrics.SearchRequestsTotal.WithLabelValues(outcome).Inc()
		return stageDone, nil

	default:
		return stageDone, fmt.Errorf("unexpected search stage %s", st)
	}
}

// safeRank runs the ranker, converting a panic into an error.
func (s *Service) safeRank(ctx context.Context, r *run) (ranking Ranking, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Panic in ranking",
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("ranking panic: %v", rec)
		}
	}()
	return s.ranker.Rank(ctx, r.docs, &r.q)
}

// format renders candidates into response items.
func format(ranking Ranking, answer string) Response {
	resp := Response{
		Results:  make([]Item, 0, len(ranking.Candidates)),
		Answer:   answer,
		Degraded: ranking.Degraded,
	}
	for _, d := range ranking.Degraded {
		if w := d.Warning(); w != "" {
			resp.Warning = w
		}
	}

	for i := range ranking.Candidates {
		c := &ranking.Candidates[i]
		doc := c.Document()
		highlights := c.Highlights()
		if highlights == nil {
			highlights = []string{}
		}
		resp.Results = append(resp.Results, Item{
			ID:         doc.ID(),
			Title:      orDefault(doc.Title(), defaultTitle),
			FileName:   orDefault(doc.FileName(), defaultFileName),
			Snippet:    orDefault(Snippet(doc.Text()), defaultSnippet),
			Summary:    orDefault(doc.Summary(), defaultSummary),
			Score:      c.Hybrid(),
			URL:        doc.URL(),
			Highlights: highlights,
		})
	}
	return resp
}

// Snippet returns the first 200 runes of text, with "..." appended when it was cut.
func Snippet(text string) string {
	cut := domain.TruncateRunes(text, snippetRunes)
	if len(cut) < len(text) {
		return cut + "..."
	}
	return text
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
