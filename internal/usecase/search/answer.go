package search

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/query"
	"github.com/kailas-cloud/docsearch/internal/domain/search/result"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

const (
	answerSystemPrompt = "You are a helpful assistant that answers questions about documents. " +
		"Your answers should be concise, accurate, and directly based on the context provided. " +
		"Cite specific details from the documents."

	// Per-document content excerpt and total context size, in runes.
	answerContentRunes = 1000
	answerContextRunes = 8000
)

// Synthesizer answers question-like queries from the top ranked documents.
type Synthesizer struct {
	gen    Generator
	cfg    domain.SearchConfig
	logger *zap.Logger
}

// NewSynthesizer creates an answer synthesizer. A nil generator never answers.
func NewSynthesizer(gen Generator, cfg domain.SearchConfig, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{gen: gen, cfg: cfg, logger: logger}
}

// Synthesize returns a generated answer when q is a question and there is context to answer from.
// Generation failures are logged and reported as no answer.
func (s *Synthesizer) Synthesize(ctx context.Context, q *query.Query, top []result.ScoredCandidate) (string, bool) {
	if s.gen == nil || len(top) == 0 || !q.IsQuestion() {
		return "", false
	}

	if s.cfg.AnswerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AnswerTimeout)
		defer cancel()
	}

	userPrompt := fmt.Sprintf(
		"Based on the following document context, please answer this question: \"%s\"\n\nContext:\n%s",
		q.Raw(), domain.TruncateRunes(buildAnswerContext(top, s.cfg.AnswerContextDocs), answerContextRunes),
	)

	res, err := s.generate(ctx, userPrompt)
	if err != nil {
		s.logger.Warn("Answer generation failed", zap.Error(err))
		metrics.SearchDegradationsTotal.WithLabelValues(string(result.AnswerUnavailable)).Inc()
		return "", false
	}
	domain.UsageFromContext(ctx).AddGenerationTokens(res.PromptTokens + res.CompletionTokens)

	answer := strings.TrimSpace(res.Text)
	if answer == "" {
		return "", false
	}
	return answer, true
}

// generate calls the generator, converting a panic into an error.
func (s *Synthesizer) generate(ctx context.Context, userPrompt string) (res domain.GenerationResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Panic in answer generation",
				zap.Any("panic", rec),
				zap.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("answer generation panic: %v", rec)
		}
	}()
	return s.gen.Generate(ctx, answerSystemPrompt, userPrompt)
}

// buildAnswerContext renders title, summary and a content excerpt of the first n candidates.
func buildAnswerContext(top []result.ScoredCandidate, n int) string {
	var b strings.Builder
	for i := range top[:min(n, len(top))] {
		doc := top[i].Document()
		title := doc.Title()
		if title == "" {
			title = "Untitled"
		}
		fmt.Fprintf(&b, "Title: %s\nSummary: %s\nContent: %s\n\n",
			title, doc.Summary(), domain.TruncateRunes(doc.Text(), answerContentRunes))
	}
	return b.String()
}
