package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// DefaultMaxTokens caps completion length when none is configured.
const DefaultMaxTokens = 500

// Generator is a chat completion provider using the OpenAI-compatible API.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	rec         recorder
	logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible text generation provider.
func NewGenerator(cfg *Config) *Generator {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Generator{
		client:      newClient(cfg),
		model:       cfg.Model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		rec:         recorder{provider: cfg.Provider, model: cfg.Model},
		logger:      loggerOrNop(cfg.Logger),
	}
}

// Generate implements domain.Generator with one system and one user message.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (domain.GenerationResult, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		g.rec.generationFailed()
		g.logger.Debug("Completion request failed", zap.String("model", g.model), zap.Error(err))
		return domain.GenerationResult{}, parseAPIError(err, "generation", domain.ErrGenerationProviderError)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		g.rec.generationFailed()
		return domain.GenerationResult{}, fmt.Errorf("empty completion: %w", domain.ErrGenerationProviderError)
	}
	g.rec.generationDone(time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return domain.GenerationResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
