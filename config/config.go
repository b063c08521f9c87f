package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the suggestion service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Translate TranslateConfig `yaml:"translate"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig selects and configures the entity store.
type StoreConfig struct {
	Driver      string `yaml:"driver"` // "bolt" or "postgres"
	Path        string `yaml:"path"`   // bolt file path
	DatabaseURL string `yaml:"database_url"`
}

// EmbeddingConfig configures the embedding model endpoint.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"` // "ollama", "openai", "mock"
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// TranslateConfig configures keyword normalization before embedding.
type TranslateConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// SearchConfig holds the matcher tunables. Thresholds are keyed by
// entity type name; unset types use the built-in cutoffs.
type SearchConfig struct {
	TopK            int                `yaml:"top_k"`
	KeywordBoost    float64            `yaml:"keyword_boost"`
	Thresholds      map[string]float64 `yaml:"thresholds"`
	CacheSize       int                `yaml:"cache_size"`
	CacheTTLSeconds int                `yaml:"cache_ttl_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Driver: "bolt",
			Path:   "clinicsearch.db",
		},
		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			Model:          "nomic-embed-text",
			BaseURL:        "http://localhost:11434",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 30,
		},
		Translate: TranslateConfig{
			Enabled:   false,
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Search: SearchConfig{
			TopK:         20,
			KeywordBoost: 0.15,
			Thresholds: map[string]float64{
				"treatment": 0.35,
				"product":   0.40,
				"doctor":    0.45,
				"clinic":    0.42,
			},
			CacheSize:       100,
			CacheTTLSeconds: 300,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for
// clinicsearch.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "clinicsearch.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
