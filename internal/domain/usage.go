package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// RequestUsage collects provider token usage for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the service records usage after each provider call; the handler reads it for response headers.
// Add methods are safe for concurrent use; read fields only after the service returned.
type RequestUsage struct {
	mu               sync.Mutex
	EmbeddingTokens  int
	EmbeddingUsed    bool // true if embedding was called, even on a cache hit with 0 tokens
	GenerationTokens int
	GenerationUsed   bool
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *RequestUsage) {
	u := &RequestUsage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *RequestUsage {
	u, _ := ctx.Value(usageKey{}).(*RequestUsage)
	return u
}

// AddEmbeddingTokens records consumed embedding tokens.
func (u *RequestUsage) AddEmbeddingTokens(n int) {
	if u != nil {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.EmbeddingTokens += n
		u.EmbeddingUsed = true
	}
}

// AddGenerationTokens records consumed generation tokens.
func (u *RequestUsage) AddGenerationTokens(n int) {
	if u != nil {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.GenerationTokens += n
		u.GenerationUsed = true
	}
}
