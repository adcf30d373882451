package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chat      ChatConfig      `yaml:"chat"`
	Legacy    LegacyConfig    `yaml:"legacy"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// LLMConfig contains settings for the completion provider.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseUrl"`
	Model    string `yaml:"model"`
	Dim      int    `yaml:"dim"`
}

// ChatConfig controls the RAG chat domain.
type ChatConfig struct {
	Categories          []string          `yaml:"categories"`
	LegacyCategory      string            `yaml:"legacyCategory"`
	CacheDir            string            `yaml:"cacheDir"`
	IndexDir            string            `yaml:"indexDir"`
	TopK                int               `yaml:"topK"`
	SimilarityThreshold float64           `yaml:"similarityThreshold"`
	MaxContextTokens    int               `yaml:"maxContextTokens"`
	Valkey              ValkeyConfig      `yaml:"valkey"`
	Postgres            PostgresConfig    `yaml:"postgres"`
	IndexBucket         ObjectStoreConfig `yaml:"indexBucket"`
}

// ValkeyConfig enables the Valkey-backed cache store.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings for the pgvector retriever.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ObjectStoreConfig points at an S3-compatible bucket holding prebuilt indexes.
type ObjectStoreConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// LegacyConfig configures the legacy intent endpoint passthrough.
type LegacyConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	UserID  string        `yaml:"userId"`
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.LLM.MaxTokens = parsed
		}
	}
	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("EMBEDDING_DIM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dim = parsed
		}
	}
	if v := os.Getenv("CHAT_CATEGORIES"); v != "" {
		cfg.Chat.Categories = splitList(v)
	}
	if v := os.Getenv("CHAT_CACHE_DIR"); v != "" {
		cfg.Chat.CacheDir = v
	}
	if v := os.Getenv("CHAT_INDEX_DIR"); v != "" {
		cfg.Chat.IndexDir = v
	}
	if v := os.Getenv("CHAT_TOP_K"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.TopK = parsed
		}
	}
	if v := os.Getenv("CHAT_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Chat.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("CHAT_MAX_CONTEXT_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.MaxContextTokens = parsed
		}
	}
	if v := os.Getenv("CHAT_VALKEY_ENABLED"); v != "" {
		cfg.Chat.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CHAT_VALKEY_ADDR"); v != "" {
		cfg.Chat.Valkey.Addr = v
	}
	if v := os.Getenv("CHAT_POSTGRES_DSN"); v != "" {
		cfg.Chat.Postgres.DSN = v
	}
	if v := os.Getenv("LEGACY_BASE_URL"); v != "" {
		cfg.Legacy.BaseURL = v
	}
	if v := os.Getenv("LEGACY_USER_ID"); v != "" {
		cfg.Legacy.UserID = v
	}
	if v := os.Getenv("LEGACY_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Legacy.Timeout = parsed
		}
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Embedding: EmbeddingConfig{
			Provider: "deterministic",
			Model:    "text-embedding-3-small",
			Dim:      384,
		},
		Chat: ChatConfig{
			Categories:          []string{"dev", "cloud", "unified"},
			LegacyCategory:      "mern",
			CacheDir:            "data/cache",
			IndexDir:            "data/index",
			TopK:                3,
			SimilarityThreshold: 0.85,
			MaxContextTokens:    3000,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Legacy: LegacyConfig{
			BaseURL: "http://localhost:5000",
			UserID:  "dev-system-user",
			Timeout: 10 * time.Second,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if len(c.Chat.Categories) == 0 {
		return errors.New("chat.categories cannot be empty")
	}
	if c.Chat.CacheDir == "" {
		return errors.New("chat.cacheDir cannot be empty")
	}
	if c.Chat.TopK < 1 {
		return errors.New("chat.topK must be at least 1")
	}
	if c.Chat.SimilarityThreshold < 0 || c.Chat.SimilarityThreshold > 1 {
		return errors.New("chat.similarityThreshold must be within [0,1]")
	}
	if c.Chat.MaxContextTokens < 0 {
		return errors.New("chat.maxContextTokens cannot be negative")
	}
	if c.Chat.Valkey.Enabled && strings.TrimSpace(c.Chat.Valkey.Addr) == "" {
		return errors.New("chat.valkey.addr cannot be empty when valkey is enabled")
	}
	switch strings.ToLower(strings.TrimSpace(c.Embedding.Provider)) {
	case "", "deterministic", "openai":
	default:
		return fmt.Errorf("embedding.provider %q is not supported", c.Embedding.Provider)
	}
	if c.Embedding.Dim <= 0 {
		return errors.New("embedding.dim must be positive")
	}
	if c.LLM.MaxTokens < 0 {
		return errors.New("llm.maxTokens cannot be negative")
	}
	if c.Legacy.Timeout <= 0 {
		return errors.New("legacy.timeout must be positive")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}
