package openai

import (
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds the provider settings shared by the embedder and the generator.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	// Headers are sent with every request (e.g. OpenRouter's HTTP-Referer and X-Title).
	Headers map[string]string
	Logger  *zap.Logger

	// Embedding only.
	Dimensions int
	User       string

	// Generation only.
	MaxTokens   int
	Temperature float32
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if len(cfg.Headers) > 0 {
		clientCfg.HTTPClient = &http.Client{
			Transport: &headerTransport{headers: cfg.Headers, base: http.DefaultTransport},
		}
	}
	return openai.NewClientWithConfig(clientCfg)
}

func loggerOrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

// headerTransport adds static headers to every request.
type headerTransport struct {
	headers map[string]string
	base    http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req) //nolint:wrapcheck // transparent transport
}
