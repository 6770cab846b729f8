package chi

import (
	"context"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	backfilluc "github.com/kailas-cloud/docsearch/internal/usecase/backfill"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// SearchService runs owner-scoped searches.
type SearchService interface {
	Search(ctx context.Context, ownerID, rawQuery string) (searchuc.Response, error)
}

// DocumentService manages the owner's document catalog.
type DocumentService interface {
	Ingest(ctx context.Context, ownerID string, in documentuc.IngestInput) (domdoc.Document, error)
	List(ctx context.Context, ownerID string) ([]domdoc.Document, error)
	Get(ctx context.Context, ownerID, id string) (domdoc.Document, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// BackfillService re-embeds documents stored without a vector.
type BackfillService interface {
	Run(ctx context.Context, ownerID string) (backfilluc.Report, error)
}

// HealthService reports component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
