package sdk

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Generator produces text from a system and a user prompt.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (GenerationResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult = domain.EmbeddingResult

// GenerationResult carries generated text and token counts.
type GenerationResult = domain.GenerationResult
