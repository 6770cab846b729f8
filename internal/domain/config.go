package domain

import (
	"fmt"
	"time"
)

// DefaultKeyPrefix namespaces every key the service writes to the store.
const DefaultKeyPrefix = "docsearch:"

// MaxEmbeddingInputRunes bounds the text sent to the embedding provider.
const MaxEmbeddingInputRunes = 8000

// SearchConfig holds ranking and timeout settings, not exposed to clients.
type SearchConfig struct {
	LexicalWeight     float64
	SemanticWeight    float64
	MaxResults        int
	EmbeddingTimeout  time.Duration
	AnswerTimeout     time.Duration
	RequestTimeout    time.Duration
	AnswerContextDocs int
}

// DefaultSearchConfig returns the weights and limits the ranking engine was tuned with.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		LexicalWeight:     0.6,
		SemanticWeight:    0.4,
		MaxResults:        5,
		EmbeddingTimeout:  10 * time.Second,
		AnswerTimeout:     20 * time.Second,
		RequestTimeout:    30 * time.Second,
		AnswerContextDocs: 3,
	}
}

// WithDefaults returns c with zero or negative limits and timeouts taken from DefaultSearchConfig.
// The weights are replaced only when both are zero, so a purely lexical 1/0 split survives.
func (c SearchConfig) WithDefaults() SearchConfig {
	def := DefaultSearchConfig()
	if c.LexicalWeight == 0 && c.SemanticWeight == 0 {
		c.LexicalWeight = def.LexicalWeight
		c.SemanticWeight = def.SemanticWeight
	}
	if c.MaxResults <= 0 {
		c.MaxResults = def.MaxResults
	}
	if c.EmbeddingTimeout <= 0 {
		c.EmbeddingTimeout = def.EmbeddingTimeout
	}
	if c.AnswerTimeout <= 0 {
		c.AnswerTimeout = def.AnswerTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.AnswerContextDocs <= 0 {
		c.AnswerContextDocs = def.AnswerContextDocs
	}
	return c
}

// Validate rejects negative ranking weights.
func (c SearchConfig) Validate() error {
	if c.LexicalWeight < 0 || c.SemanticWeight < 0 {
		return fmt.Errorf("search weights must not be negative (lexical %.2f, semantic %.2f)",
			c.LexicalWeight, c.SemanticWeight)
	}
	return nil
}
