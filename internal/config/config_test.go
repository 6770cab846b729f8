package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 8080},
		Database:   DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding:  EmbeddingConfig{APIKey: "sk-test"},
		Generation: GenerationConfig{APIKey: "sk-test"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Database.Driver != DriverRedis {
		t.Errorf("driver = %q, want redis", cfg.Database.Driver)
	}
	if cfg.Storage.KeyPrefix != "docsearch:" {
		t.Errorf("key prefix = %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Search.LexicalWeight != 0.6 || cfg.Search.SemanticWeight != 0.4 {
		t.Errorf("weights = %v/%v, want 0.6/0.4", cfg.Search.LexicalWeight, cfg.Search.SemanticWeight)
	}
	if cfg.Search.MaxResults != 5 {
		t.Errorf("max results = %d, want 5", cfg.Search.MaxResults)
	}
	if cfg.Backfill.Workers != 4 {
		t.Errorf("backfill workers = %d, want 4", cfg.Backfill.Workers)
	}
	if cfg.Generation.MaxTokens != 500 {
		t.Errorf("generation max tokens = %d, want 500", cfg.Generation.MaxTokens)
	}
}

func TestApplyDefaults_KeepsExplicitWeights(t *testing.T) {
	cfg := Config{Search: SearchConfig{LexicalWeight: 1, SemanticWeight: 0}}
	cfg.ApplyDefaults()

	if cfg.Search.LexicalWeight != 1 || cfg.Search.SemanticWeight != 0 {
		t.Errorf("weights = %v/%v, want 1/0", cfg.Search.LexicalWeight, cfg.Search.SemanticWeight)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"redis without addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"badger without addrs", func(c *Config) { c.Database.Driver = DriverBadger; c.Database.Addrs = nil }, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"openai without key", func(c *Config) { c.Embedding.APIKey = "" }, "embedding.api_key"},
		{"ollama without key", func(c *Config) { c.Embedding.Provider = ProviderOllama; c.Embedding.APIKey = "" }, ""},
		{"generation disabled", func(c *Config) { c.Generation.Provider = ProviderNone; c.Generation.APIKey = "" }, ""},
		{"unknown provider", func(c *Config) { c.Generation.Provider = "cohere" }, "generation.provider"},
		{"negative cache ttl", func(c *Config) { c.Embedding.Cache.TTLSec = -1 }, "ttl_sec"},
		{"negative weight", func(c *Config) { c.Search.SemanticWeight = -0.1 }, "weights"},
		{"empty owner", func(c *Config) { c.Auth.APIKeys = map[string]string{"key": ""} }, "auth.api_keys"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("DOCSEARCH_TEST_KEY", "sk-from-env")

	cfg, err := Parse([]byte(`
http:
  port: ${DOCSEARCH_TEST_PORT:-9090}
database:
  driver: badger
embedding:
  api_key: ${DOCSEARCH_TEST_KEY}
generation:
  provider: none
auth:
  api_keys:
    k1: user_1
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want default 9090", cfg.HTTP.Port)
	}
	if cfg.Embedding.APIKey != "sk-from-env" {
		t.Errorf("api key = %q", cfg.Embedding.APIKey)
	}
	if cfg.Auth.APIKeys["k1"] != "user_1" {
		t.Errorf("api keys = %v", cfg.Auth.APIKeys)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Parse([]byte("http:\n  port: 0\n")); err == nil {
		t.Error("expected validation error")
	}
}

func TestSearchSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Search.AnswerTimeoutSec = 7

	s := cfg.SearchSettings()
	if s.AnswerTimeout != 7*time.Second {
		t.Errorf("answer timeout = %v", s.AnswerTimeout)
	}
	if s.RequestTimeout != 30*time.Second {
		t.Errorf("request timeout = %v", s.RequestTimeout)
	}
	if s.AnswerContextDocs != 3 {
		t.Errorf("answer context docs = %d", s.AnswerContextDocs)
	}
}
