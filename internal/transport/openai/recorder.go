package openai

import (
	"time"

	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// recorder reports provider metrics for one provider/model pair.
type recorder struct {
	provider string
	model    string
}

func (r recorder) embeddingFailed(reason string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(r.provider, r.model, reason).Inc()
}

func (r recorder) embeddingDone(took time.Duration, promptTokens, totalTokens int) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(r.provider, r.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(r.provider, r.model).Observe(took.Seconds())
	if totalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(r.provider, r.model, "prompt").Add(float64(promptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(r.provider, r.model, "total").Add(float64(totalTokens))
	}
}

func (r recorder) generationFailed() {
	metrics.GenerationRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
}

func (r recorder) generationDone(took time.Duration, promptTokens, completionTokens int) {
	metrics.GenerationRequestsTotal.WithLabelValues(r.provider, r.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(r.provider, r.model).Observe(took.Seconds())
	metrics.GenerationTokensTotal.WithLabelValues(r.provider, r.model, "prompt").Add(float64(promptTokens))
	metrics.GenerationTokensTotal.WithLabelValues(r.provider, r.model, "completion").Add(float64(completionTokens))
}
