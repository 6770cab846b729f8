package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/docsearch/internal/domain"
)

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverBadger = "badger"
)

// Provider names for embedding and generation.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	// ProviderNone disables the capability; search degrades to lexical-only or no answers.
	ProviderNone = "none"
)

// Config holds the docsearch configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Search     SearchConfig     `yaml:"search"`
	Auth       AuthConfig       `yaml:"auth"`
	Backfill   BackfillConfig   `yaml:"backfill"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	// APIKeys maps a bearer key to the owner it authenticates.
	APIKeys map[string]string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, badger (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Path             string   `yaml:"path"` // badger directory, empty means in-memory
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider            string            `yaml:"provider"` // openai, ollama, none
	APIKey              string            `yaml:"api_key"`
	BaseURL             string            `yaml:"base_url"`
	Model               string            `yaml:"model"`
	Dimensions          int               `yaml:"dimensions"`
	QueryInstruction    string            `yaml:"query_instruction"`
	DocumentInstruction string            `yaml:"document_instruction"`
	Headers             map[string]string `yaml:"headers"`
	Cache               CacheConfig       `yaml:"cache"`
}

// CacheConfig holds query embedding cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"` // 0 = no expiry
}

// GenerationConfig holds text generation provider settings.
type GenerationConfig struct {
	Provider    string  `yaml:"provider"` // openai, ollama, none
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// SearchConfig holds ranking settings.
type SearchConfig struct {
	LexicalWeight       float64 `yaml:"lexical_weight"`
	SemanticWeight      float64 `yaml:"semantic_weight"`
	MaxResults          int     `yaml:"max_results"`
	EmbeddingTimeoutSec int     `yaml:"embedding_timeout_sec"`
	AnswerTimeoutSec    int     `yaml:"answer_timeout_sec"`
	RequestTimeoutSec   int     `yaml:"request_timeout_sec"`
	AnswerContextDocs   int     `yaml:"answer_context_docs"`
}

// BackfillConfig holds embedding backfill settings.
type BackfillConfig struct {
	Workers int `yaml:"workers"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverRedis
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = domain.DefaultKeyPrefix
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = ProviderOpenAI
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Generation.Provider == "" {
		c.Generation.Provider = ProviderOpenAI
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o-mini"
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 500
	}
	if c.Backfill.Workers <= 0 {
		c.Backfill.Workers = 4
	}

	def := domain.DefaultSearchConfig()
	if c.Search.LexicalWeight == 0 && c.Search.SemanticWeight == 0 {
		c.Search.LexicalWeight = def.LexicalWeight
		c.Search.SemanticWeight = def.SemanticWeight
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = def.MaxResults
	}
	if c.Search.EmbeddingTimeoutSec <= 0 {
		c.Search.EmbeddingTimeoutSec = int(def.EmbeddingTimeout / time.Second)
	}
	if c.Search.AnswerTimeoutSec <= 0 {
		c.Search.AnswerTimeoutSec = int(def.AnswerTimeout / time.Second)
	}
	if c.Search.RequestTimeoutSec <= 0 {
		c.Search.RequestTimeoutSec = int(def.RequestTimeout / time.Second)
	}
	if c.Search.AnswerContextDocs <= 0 {
		c.Search.AnswerContextDocs = def.AnswerContextDocs
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverBadger:
		// path is optional
	default:
		return fmt.Errorf("database.driver must be one of redis, valkey, badger, got %q", c.Database.Driver)
	}
	if err := validateProvider("embedding", c.Embedding.Provider, c.Embedding.APIKey); err != nil {
		return err
	}
	if err := validateProvider("generation", c.Generation.Provider, c.Generation.APIKey); err != nil {
		return err
	}
	if c.Embedding.Cache.TTLSec < 0 {
		return fmt.Errorf("embedding.cache.ttl_sec must not be negative, got %d", c.Embedding.Cache.TTLSec)
	}
	if c.Search.LexicalWeight < 0 || c.Search.SemanticWeight < 0 {
		return fmt.Errorf("search weights must not be negative, got lexical=%v semantic=%v",
			c.Search.LexicalWeight, c.Search.SemanticWeight)
	}
	for key, owner := range c.Auth.APIKeys {
		if key == "" || owner == "" {
			return fmt.Errorf("auth.api_keys entries need a non-empty key and owner")
		}
	}
	return nil
}

func validateProvider(section, provider, apiKey string) error {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return fmt.Errorf("%s.api_key is required for provider %q", section, provider)
		}
	case ProviderOllama, ProviderNone:
	default:
		return fmt.Errorf("%s.provider must be one of openai, ollama, none, got %q", section, provider)
	}
	return nil
}

// SearchSettings converts the search section into the ranking configuration.
func (c *Config) SearchSettings() domain.SearchConfig {
	return domain.SearchConfig{
		LexicalWeight:     c.Search.LexicalWeight,
		SemanticWeight:    c.Search.SemanticWeight,
		MaxResults:        c.Search.MaxResults,
		EmbeddingTimeout:  time.Duration(c.Search.EmbeddingTimeoutSec) * time.Second,
		AnswerTimeout:     time.Duration(c.Search.AnswerTimeoutSec) * time.Second,
		RequestTimeout:    time.Duration(c.Search.RequestTimeoutSec) * time.Second,
		AnswerContextDocs: c.Search.AnswerContextDocs,
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
