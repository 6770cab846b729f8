package ollama

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

type fakeEmbedderClient struct {
	vecs [][]float32
	err  error
	got  []string
}

func (f *fakeEmbedderClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	f.got = texts
	return f.vecs, f.err
}

type fakeChat struct {
	resp *llms.ContentResponse
	err  error
	msgs []llms.MessageContent
}

func (f *fakeChat) GenerateContent(
	_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption,
) (*llms.ContentResponse, error) {
	f.msgs = msgs
	return f.resp, f.err
}

func TestEmbedder_Embed(t *testing.T) {
	client := &fakeEmbedderClient{vecs: [][]float32{{0.1, 0.2, 0.3}}}
	emb, err := newEmbedder(client, &Config{Model: "nomic-embed-text"})
	if err != nil {
		t.Fatalf("newEmbedder: %v", err)
	}

	res, err := emb.Embed(context.Background(), "line one\nline two")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(res.Embedding) != 3 {
		t.Errorf("embedding length = %d", len(res.Embedding))
	}
	if len(client.got) != 1 || client.got[0] != "line one line two" {
		t.Errorf("newlines should be stripped, got %q", client.got)
	}
}

func TestEmbedder_Errors(t *testing.T) {
	emb, _ := newEmbedder(&fakeEmbedderClient{err: errors.New("connection refused")}, &Config{Model: "m"})
	if _, err := emb.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}

	emb, _ = newEmbedder(&fakeEmbedderClient{vecs: [][]float32{{}}}, &Config{Model: "m"})
	if _, err := emb.Embed(context.Background(), "x"); !errors.Is(err, domain.ErrEmptyEmbedding) {
		t.Fatalf("expected ErrEmptyEmbedding, got %v", err)
	}
}

func TestGenerator_Generate(t *testing.T) {
	chat := &fakeChat{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content:        "Revenue grew.",
		GenerationInfo: map[string]any{"PromptTokens": 11, "CompletionTokens": 4},
	}}}}
	gen := newGenerator(chat, &Config{Model: "llama3.2"})

	res, err := gen.Generate(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Text != "Revenue grew." || res.PromptTokens != 11 || res.CompletionTokens != 4 {
		t.Errorf("unexpected result: %+v", res)
	}
	if len(chat.msgs) != 2 || chat.msgs[0].Role != llms.ChatMessageTypeSystem || chat.msgs[1].Role != llms.ChatMessageTypeHuman {
		t.Errorf("unexpected messages: %+v", chat.msgs)
	}
}

func TestGenerator_Errors(t *testing.T) {
	gen := newGenerator(&fakeChat{err: errors.New("model not found")}, &Config{Model: "m"})
	if _, err := gen.Generate(context.Background(), "s", "u"); !errors.Is(err, domain.ErrGenerationProviderError) {
		t.Fatalf("expected ErrGenerationProviderError, got %v", err)
	}

	gen = newGenerator(&fakeChat{resp: &llms.ContentResponse{}}, &Config{Model: "m"})
	if _, err := gen.Generate(context.Background(), "s", "u"); !errors.Is(err, domain.ErrGenerationProviderError) {
		t.Fatalf("expected ErrGenerationProviderError on empty response, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/version" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"version":"0.5.0"}`))
	}))
	defer server.Close()

	gen := newGenerator(&fakeChat{}, &Config{ServerURL: server.URL + "/", Model: "m"})
	if err := gen.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}

	server.Close()
	if err := gen.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for stopped server")
	}
}
