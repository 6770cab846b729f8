package search

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// DocumentLister loads the candidate documents of one owner.
type DocumentLister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domdoc.Document, error)
}

// Embedder vectorizes the query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces the synthesized answer.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (domain.GenerationResult, error)
}
