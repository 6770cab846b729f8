package document

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, doc *domdoc.Document) error
	Get(ctx context.Context, ownerID, id string) (domdoc.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domdoc.Document, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces summaries and insights.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (domain.GenerationResult, error)
}
