package sdk

import (
	"time"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// SearchConfig tunes ranking: lexical/semantic weights, result count, timeouts
// and how many top documents feed answer generation.
type SearchConfig = domain.SearchConfig

// DefaultSearchConfig returns the default ranking settings (0.6 lexical, 0.4 semantic, 5 results).
func DefaultSearchConfig() SearchConfig { return domain.DefaultSearchConfig() }

// NewDocument is an already extracted document to add to an owner's catalog.
type NewDocument struct {
	Title    string
	FileName string
	FileType string
	URL      string
	Text     string
}

// Document is a stored document.
type Document struct {
	ID           string
	OwnerID      string
	Title        string
	FileName     string
	FileType     string
	URL          string
	Text         string
	Summary      string
	Insights     []string
	HasEmbedding bool
	CreatedAt    time.Time
}

// SearchResult is a single ranked document.
type SearchResult struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	FileName   string   `json:"fileName"`
	Snippet    string   `json:"snippet"`
	Summary    string   `json:"summary"`
	Score      float64  `json:"score"`
	URL        string   `json:"url"`
	Highlights []string `json:"highlights"`
}

// SearchResponse is the outcome of a search.
// Warning is set when the results are the most recent documents rather than matches;
// Answer when the query was a question and an answer could be generated.
type SearchResponse struct {
	Results  []SearchResult `json:"results"`
	Warning  string         `json:"warning,omitempty"`
	Answer   string         `json:"aiAnswer,omitempty"`
	Degraded []string       `json:"degraded,omitempty"`
	Usage    Usage          `json:"usage"`
}

// Usage reports provider tokens spent by one call.
type Usage struct {
	EmbeddingTokens  int `json:"embeddingTokens"`
	GenerationTokens int `json:"generationTokens"`
}

// ReembedReport summarizes an embedding backfill.
type ReembedReport struct {
	Scanned  int `json:"scanned"`
	Embedded int `json:"embedded"`
	Failed   int `json:"failed"`
}

// HealthStatus is the aggregated health of the store and providers.
type HealthStatus struct {
	Status string            `json:"status"` // "ok" or "degraded"
	Checks map[string]string `json:"checks"` // component -> "ok" or "error"
}

// StoreUp reports whether the document store answered. Search works whenever it does.
func (h HealthStatus) StoreUp() bool {
	return h.Checks["database"] == "ok"
}
