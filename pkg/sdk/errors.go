package sdk

import "github.com/kailas-cloud/docsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrDocumentNotFound        = domain.ErrDocumentNotFound
	ErrInvalidDocument         = domain.ErrInvalidDocument
	ErrUnauthorized            = domain.ErrUnauthorized
	ErrEmptyQuery              = domain.ErrEmptyQuery
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrGenerationProviderError = domain.ErrGenerationProviderError
	ErrNotConfigured           = domain.ErrNotConfigured
)
