package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// InstrumentedEmbedder wraps an Embedder with logging and domain error mapping.
// Transport metrics (requests, duration, tokens) are recorded in the provider transports.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{inner: inner, provider: provider, model: model, logger: logger}
}

// Embed delegates to the inner embedder. Failures are wrapped in domain.ErrEmbeddingProviderError,
// empty vectors are reported as domain.ErrEmptyEmbedding.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, wrapProviderError(err, domain.ErrEmbeddingProviderError)
	}
	if len(result.Embedding) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("%s/%s: %w", p.provider, p.model, domain.ErrEmptyEmbedding)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

// InstrumentedGenerator wraps a Generator with logging and domain error mapping.
type InstrumentedGenerator struct {
	inner    domain.Generator
	provider string
	model    string
	logger   *zap.Logger
}

// NewInstrumentedGenerator wraps a generator with observability.
func NewInstrumentedGenerator(inner domain.Generator, provider, model string, logger *zap.Logger) *InstrumentedGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedGenerator{inner: inner, provider: provider, model: model, logger: logger}
}

// Generate delegates to the inner generator. Failures are wrapped in domain.ErrGenerationProviderError.
func (p *InstrumentedGenerator) Generate(
	ctx context.Context, systemPrompt, userPrompt string,
) (domain.GenerationResult, error) {
	start := time.Now()
	result, err := p.inner.Generate(ctx, systemPrompt, userPrompt)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Generation request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.GenerationResult{}, wrapProviderError(err, domain.ErrGenerationProviderError)
	}

	p.logger.Debug("Generation request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
	)
	return result, nil
}

// wrapProviderError tags err with the provider sentinel, keeping context errors matchable.
func wrapProviderError(err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
