package backfill

import (
	"context"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
)

// Repository lists documents and stores re-generated embeddings.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domdoc.Document, error)
	UpdateEmbedding(ctx context.Context, ownerID, id string, vec []float32) error
}

// Embedder vectorizes document text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
