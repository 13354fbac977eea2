package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the log analyzer.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest"`
	Filter    FilterConfig    `yaml:"filter"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	QA        QAConfig        `yaml:"qa"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// IngestConfig controls which files are picked up when a directory is
// analyzed.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// FilterConfig holds the severity filter. Empty means keep everything.
type FilterConfig struct {
	Severities []string `yaml:"severities"`
}

// ChunkConfig holds chunking configuration. SizeBudget is measured in
// characters of rendered entry text.
type ChunkConfig struct {
	SizeBudget int `yaml:"size_budget"`
	Overlap    int `yaml:"overlap"` // trailing entries repeated in the next chunk
}

// AnalysisConfig holds the chunk analysis model and orchestration knobs.
type AnalysisConfig struct {
	Model         string `yaml:"model"`
	APIKeyEnv     string `yaml:"api_key_env"`
	BaseURL       string `yaml:"base_url"`
	Concurrency   int    `yaml:"concurrency"`
	MaxAttempts   int    `yaml:"max_attempts"`
	BackoffBaseMS int    `yaml:"backoff_base_ms"`
	BackoffMaxMS  int    `yaml:"backoff_max_ms"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// QAConfig holds question-answering configuration.
type QAConfig struct {
	TopK          int `yaml:"top_k"`
	HistoryWindow int `yaml:"history_window"`
}

// CacheConfig controls the persistent analysis cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration. The chat defaults
// target Groq's OpenAI-compatible endpoint.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			Includes: []string{"**/*.log", "**/*.txt"},
			Excludes: []string{"**/.git/**", "**/node_modules/**"},
		},
		Filter: FilterConfig{
			Severities: nil,
		},
		Chunk: ChunkConfig{
			SizeBudget: 2000,
			Overlap:    0,
		},
		Analysis: AnalysisConfig{
			Model:         "llama3-70b-8192",
			APIKeyEnv:     "GROQ_API_KEY",
			BaseURL:       "https://api.groq.com/openai/v1",
			Concurrency:   4,
			MaxAttempts:   3,
			BackoffBaseMS: 500,
			BackoffMaxMS:  8000,
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		QA: QAConfig{
			TopK:          4,
			HistoryWindow: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
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
// logmentor.yaml, then .logmentor/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "logmentor.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".logmentor", "config.yaml")
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

// CacheDBPath returns the path to the analysis cache database.
func CacheDBPath(dir string) string {
	return filepath.Join(dir, ".logmentor", "analyses.db")
}

// EnsureStateDir ensures the .logmentor directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".logmentor"), 0755)
}
