package chi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	logpkg "github.com/kailas-cloud/docsearch/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized, "Unauthorized"),
		sentinelHandler(domain.ErrEmptyQuery, http.StatusBadRequest, codeValidationFailed, "Query is required"),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, codeValidationFailed, ""),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, codeNotFound, "Document not found"),
		sentinelHandler(domain.ErrNotConfigured, http.StatusServiceUnavailable, codeNotConfigured, ""),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError, ""),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, codeProviderError, ""),
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// An empty message exposes the full error text, which is safe for validation errors.
func sentinelHandler(sentinel error, status int, code, message string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := message
		if msg == "" {
			msg = err.Error()
			if status >= http.StatusInternalServerError {
				msg = sentinel.Error()
			}
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
