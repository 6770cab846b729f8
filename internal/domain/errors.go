package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document (or one owned by another caller).
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidDocument signals a document that failed validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnauthorized signals a request without a caller identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrEmptyQuery signals a missing or blank search query.
	ErrEmptyQuery = errors.New("query is required")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmptyEmbedding signals a provider response without a usable vector.
	ErrEmptyEmbedding = errors.New("empty embedding")
	// ErrGenerationProviderError signals a text generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrNotConfigured signals a provider that was not wired.
	ErrNotConfigured = errors.New("provider not configured")
)
