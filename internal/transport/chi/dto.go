package chi

import (
	"time"

	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	searchuc "github.com/kailas-cloud/docsearch/internal/usecase/search"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeUnauthorized     = "unauthorized"
	codeNotFound         = "document_not_found"
	codeProviderError    = "provider_error"
	codeNotConfigured    = "not_configured"
	codeInternalError    = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResultItem is one ranked document.
type SearchResultItem struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	FileName   string   `json:"fileName"`
	Snippet    string   `json:"snippet"`
	Summary    string   `json:"summary"`
	Score      float64  `json:"score"`
	URL        string   `json:"url"`
	Highlights []string `json:"highlights"`
}

// SearchResponse is the body of a successful POST /search.
type SearchResponse struct {
	Results  []SearchResultItem `json:"results"`
	Warning  string             `json:"warning,omitempty"`
	AIAnswer string             `json:"aiAnswer,omitempty"`
}

// IngestRequest is the body of POST /documents: an already extracted document.
type IngestRequest struct {
	Title    string `json:"title"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	URL      string `json:"url"`
	Text     string `json:"text"`
}

// DocumentResponse is a document as exposed over HTTP. Text is only set on single-document reads.
type DocumentResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	FileName     string    `json:"fileName"`
	FileType     string    `json:"fileType"`
	URL          string    `json:"url"`
	Summary      string    `json:"summary"`
	Insights     []string  `json:"insights"`
	HasEmbedding bool      `json:"hasEmbedding"`
	CreatedAt    time.Time `json:"createdAt"`
	Text         string    `json:"extractedText,omitempty"`
}

// DocumentEnvelope wraps a single document.
type DocumentEnvelope struct {
	Document DocumentResponse `json:"document"`
}

// DocumentListResponse wraps the owner's documents.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResponseFrom(resp *searchuc.Response) SearchResponse {
	items := make([]SearchResultItem, len(resp.Results))
	for i, r := range resp.Results {
		items[i] = SearchResultItem{
			ID:         r.ID,
			Title:      r.Title,
			FileName:   r.FileName,
			Snippet:    r.Snippet,
			Summary:    r.Summary,
			Score:      r.Score,
			URL:        r.URL,
			Highlights: r.Highlights,
		}
	}
	return SearchResponse{Results: items, Warning: resp.Warning, AIAnswer: resp.Answer}
}

func documentFrom(doc *domdoc.Document, withText bool) DocumentResponse {
	insights := doc.Insights()
	if insights == nil {
		insights = []string{}
	}
	out := DocumentResponse{
		ID:           doc.ID(),
		Title:        doc.Title(),
		FileName:     doc.FileName(),
		FileType:     doc.FileType(),
		URL:          doc.URL(),
		Summary:      doc.Summary(),
		Insights:     insights,
		HasEmbedding: doc.HasEmbedding(),
		CreatedAt:    doc.CreatedAt(),
	}
	if withText {
		out.Text = doc.Text()
	}
	return out
}
