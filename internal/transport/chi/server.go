package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/metrics"
	documentuc "github.com/kailas-cloud/docsearch/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docsearch/internal/usecase/health"
)

// maxIngestBody bounds POST /documents: the text limit plus room for the other fields.
const maxIngestBody = domdoc.MaxTextSize + 1<<20

const maxSearchBody = 64 << 10

// Token usage response headers.
const (
	headerEmbeddingTokens  = "X-Embedding-Tokens"
	headerGenerationTokens = "X-Generation-Tokens"
)

// Services groups the use cases served over HTTP. Backfill may be nil when no embedder is configured.
type Services struct {
	Search    SearchService
	Documents DocumentService
	Backfill  BackfillService
	Health    HealthService
}

// Server serves the docsearch HTTP API.
type Server struct {
	svc           Services
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{svc: svc, logger: logger, errorHandlers: defaultErrorHandlers()}
}

// RouterConfig configures the middleware stack.
type RouterConfig struct {
	// APIKeys maps bearer tokens to owner IDs. Empty disables authentication.
	APIKeys map[string]string
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router(cfg RouterConfig) http.Handler {
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(APIKeyAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())

	r.Post("/search", s.SearchDocuments)
	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.ListDocuments)
		r.Post("/", s.IngestDocument)
		r.Post("/reembed", s.Reembed)
		r.Get("/{id}", s.GetDocument)
		r.Delete("/{id}", s.DeleteDocument)
	})
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}

// SearchDocuments handles POST /search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	owner := domain.OwnerFromContext(r.Context())
	if owner == "" {
		s.handleDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	var req SearchRequest
	if !decodeJSON(w, r, maxSearchBody, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.svc.Search.Search(ctx, owner, req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponseFrom(&resp))
}

// IngestDocument handles POST /documents.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	owner := domain.OwnerFromContext(r.Context())
	if owner == "" {
		s.handleDomainError(w, r, domain.ErrUnauthorized)
		return
	}

	var req IngestRequest
	if !decodeJSON(w, r, maxIngestBody, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	doc, err := s.svc.Documents.Ingest(ctx, owner, documentuc.IngestInput{
		Title:    req.Title,
		FileName: req.FileName,
		FileType: req.FileType,
		URL:      req.URL,
		Text:     req.Text,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	w.Header().Set("Location", "/documents/"+doc.ID())
	writeJSON(w, http.StatusCreated, DocumentEnvelope{Document: documentFrom(&doc, false)})
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.svc.Documents.List(r.Context(), domain.OwnerFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = documentFrom(&docs[i], false)
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items})
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Documents.Get(r.Context(), domain.OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentEnvelope{Document: documentFrom(&doc, true)})
}

// DeleteDocument handles DELETE /documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Documents.Delete(r.Context(), domain.OwnerFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reembed handles POST /documents/reembed.
func (s *Server) Reembed(w http.ResponseWriter, r *http.Request) {
	if s.svc.Backfill == nil {
		s.handleDomainError(w, r, domain.ErrNotConfigured)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	report, err := s.svc.Backfill.Run(ctx, domain.OwnerFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setUsageHeaders(w, usage)
	writeJSON(w, http.StatusOK, report)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Checks[healthuc.ComponentDatabase] != healthuc.CheckOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks})
}

// decodeJSON decodes a bounded JSON body and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, codeBadRequest,
				"Request body exceeds "+strconv.FormatInt(limit, 10)+" bytes")
			return false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.RequestUsage) {
	if usage == nil {
		return
	}
	if usage.EmbeddingUsed {
		w.Header().Set(headerEmbeddingTokens, strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.GenerationUsed {
		w.Header().Set(headerGenerationTokens, strconv.Itoa(usage.GenerationTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}
