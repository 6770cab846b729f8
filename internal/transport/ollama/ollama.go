// Package ollama provides embedding and generation providers backed by a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/metrics"
)

// DefaultServerURL is the address of a local Ollama daemon.
const DefaultServerURL = "http://localhost:11434"

const providerName = "ollama"

// Config holds the Ollama provider settings.
type Config struct {
	ServerURL   string
	Model       string
	MaxTokens   int
	Temperature float64
	Logger      *zap.Logger
}

func (c *Config) serverURL() string {
	if c.ServerURL == "" {
		return DefaultServerURL
	}
	return strings.TrimRight(c.ServerURL, "/")
}

// chatModel is the subset of llms.Model the generator needs.
type chatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Embedder embeds text through Ollama's embedding endpoint.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	health   *healthProbe
	logger   *zap.Logger
}

// NewEmbedder creates an Ollama embedding provider.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	llm, err := ollama.New(ollama.WithServerURL(cfg.serverURL()), ollama.WithModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return newEmbedder(llm, cfg)
}

func newEmbedder(client embeddings.EmbedderClient, cfg *Config) (*Embedder, error) {
	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create ollama embedder: %w", err)
	}
	return &Embedder{
		embedder: emb,
		model:    cfg.Model,
		health:   newHealthProbe(cfg.serverURL()),
		logger:   loggerOrNop(cfg.Logger),
	}, nil
}

// Embed implements domain.Embedder. Ollama reports no token usage for embeddings.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	vec, err := e.embedder.EmbedQuery(ctx, text)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("ollama embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(vec) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("ollama embed: %w", domain.ErrEmptyEmbedding)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())
	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck verifies that the Ollama daemon answers.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	return e.health.check(ctx)
}

// Generator produces chat completions through Ollama.
type Generator struct {
	llm         chatModel
	model       string
	maxTokens   int
	temperature float64
	health      *healthProbe
	logger      *zap.Logger
}

// NewGenerator creates an Ollama text generation provider.
func NewGenerator(cfg *Config) (*Generator, error) {
	llm, err := ollama.New(ollama.WithServerURL(cfg.serverURL()), ollama.WithModel(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return newGenerator(llm, cfg), nil
}

func newGenerator(llm chatModel, cfg *Config) *Generator {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	return &Generator{
		llm:         llm,
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		health:      newHealthProbe(cfg.serverURL()),
		logger:      loggerOrNop(cfg.Logger),
	}
}

// Generate implements domain.Generator with one system and one human message.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (domain.GenerationResult, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	start := time.Now()
	resp, err := g.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(g.maxTokens),
		llms.WithTemperature(g.temperature),
	)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "error").Inc()
		return domain.GenerationResult{}, fmt.Errorf("ollama generate: %w: %w", domain.ErrGenerationProviderError, err)
	}
	if resp == nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "error").Inc()
		return domain.GenerationResult{}, fmt.Errorf("ollama generate: empty completion: %w", domain.ErrGenerationProviderError)
	}

	choice := resp.Choices[0]
	promptTokens := intInfo(choice.GenerationInfo, "PromptTokens")
	completionTokens := intInfo(choice.GenerationInfo, "CompletionTokens")

	metrics.GenerationRequestsTotal.WithLabelValues(providerName, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(providerName, g.model).Observe(duration.Seconds())
	metrics.GenerationTokensTotal.WithLabelValues(providerName, g.model, "prompt").Add(float64(promptTokens))
	metrics.GenerationTokensTotal.WithLabelValues(providerName, g.model, "completion").Add(float64(completionTokens))

	g.logger.Debug("Ollama completion",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("completion_tokens", completionTokens),
	)
	return domain.GenerationResult{
		Text:             choice.Content,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
	}, nil
}

// HealthCheck verifies that the Ollama daemon answers.
func (g *Generator) HealthCheck(ctx context.Context) error {
	return g.health.check(ctx)
}

// intInfo reads a token counter from langchaingo generation info.
func intInfo(info map[string]any, key string) int {
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// healthProbe pings the daemon version endpoint; langchaingo exposes no liveness call.
type healthProbe struct {
	url    string
	client *http.Client
}

func newHealthProbe(serverURL string) *healthProbe {
	return &healthProbe{url: serverURL + "/api/version", client: &http.Client{Timeout: 5 * time.Second}}
}

func (p *healthProbe) check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama health: status %d", resp.StatusCode)
	}
	return nil
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
