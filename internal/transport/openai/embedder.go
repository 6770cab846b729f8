package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Embedder embeds text through an OpenAI-compatible /embeddings endpoint
// (OpenAI, OpenRouter, Nebius, or any gateway speaking the same API).
type Embedder struct {
	client *openai.Client
	req    openai.EmbeddingRequest
	rec    recorder
	logger *zap.Logger
}

// NewEmbedder creates an embedder for cfg.Model. Dimensions > 0 asks the API to shorten vectors.
func NewEmbedder(cfg *Config) *Embedder {
	req := openai.EmbeddingRequest{
		Model:          openai.EmbeddingModel(cfg.Model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           cfg.User,
	}
	if cfg.Dimensions > 0 {
		req.Dimensions = cfg.Dimensions
	}
	return &Embedder{
		client: newClient(cfg),
		req:    req,
		rec:    recorder{provider: cfg.Provider, model: cfg.Model},
		logger: loggerOrNop(cfg.Logger),
	}
}

// Embed returns the vector for a single input with its token usage.
// An empty vector in the response is reported as domain.ErrEmptyEmbedding.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := e.req
	req.Input = []string{text}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		e.rec.embeddingFailed(errorType(err))
		e.logger.Debug("Embedding request failed", zap.String("model", e.rec.model), zap.Error(err))
		return domain.EmbeddingResult{}, parseAPIError(err, "embedding", domain.ErrEmbeddingProviderError)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		e.rec.embeddingFailed("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("%s returned no vector: %w", e.rec.model, domain.ErrEmptyEmbedding)
	}
	e.rec.embeddingDone(time.Since(start), resp.Usage.PromptTokens, resp.Usage.TotalTokens)

	return domain.EmbeddingResult{
		Embedding:    resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck lists models, which costs no tokens.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
