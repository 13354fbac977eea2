package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"logmentor/config"
	"logmentor/internal/adapter/cache"
	"logmentor/internal/adapter/fs"
	"logmentor/internal/adapter/llm"
	"logmentor/internal/adapter/store"
	"logmentor/internal/adapter/structurer"
	"logmentor/internal/chunk"
	"logmentor/internal/domain"
	"logmentor/internal/port"
	"logmentor/internal/retry"
)

// loadCorpus reads the raw log text from a file, or from every matching
// file under a directory in path order.
func loadCorpus(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %w", err)
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	files, err := walker.Walk(path)
	if err != nil {
		return "", fmt.Errorf("failed to walk directory: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no log files found under %s", path)
	}
	return fs.ReadAll(files)
}

// buildChunks structures the raw text, applies the severity filter and
// partitions the result into analysis units.
func buildChunks(raw string, levels []string) ([]domain.Chunk, int, error) {
	entries := structurer.New().Structure(raw)
	total := len(entries)

	severities, err := parseSeverities(levels)
	if err != nil {
		return nil, 0, err
	}
	entries = domain.FilterBySeverity(entries, severities)

	builder := chunk.NewBuilder(cfg.Chunk.SizeBudget, cfg.Chunk.Overlap)
	return builder.Build(entries), total, nil
}

func parseSeverities(levels []string) ([]domain.Severity, error) {
	var severities []domain.Severity
	for _, l := range levels {
		switch s := domain.Severity(strings.ToUpper(strings.TrimSpace(l))); s {
		case domain.SeverityInfo, domain.SeverityDebug, domain.SeverityWarning,
			domain.SeverityError, domain.SeverityUnknown:
			severities = append(severities, s)
		default:
			return nil, fmt.Errorf("unknown severity level: %s", l)
		}
	}
	return severities, nil
}

func newAnalyzerClient() (*llm.Client, error) {
	apiKey := os.Getenv(cfg.Analysis.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.Analysis.APIKeyEnv)
	}
	return llm.NewClient(apiKey, cfg.Analysis.Model, cfg.Analysis.BaseURL), nil
}

func newEmbedder() (*llm.OpenAIEmbedder, error) {
	apiKey := os.Getenv(cfg.Embedding.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.Embedding.APIKeyEnv)
	}
	return llm.NewOpenAIEmbedder(apiKey, cfg.Embedding.Model, cfg.Embedding.BaseURL), nil
}

func retryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: cfg.Analysis.MaxAttempts,
		BaseDelay:   time.Duration(cfg.Analysis.BackoffBaseMS) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.Analysis.BackoffMaxMS) * time.Millisecond,
	}
}

// openCache returns the persistent analysis cache when enabled, falling
// back to a session-scoped in-memory cache.
func openCache() (port.AnalysisCache, func(), error) {
	if !cfg.Cache.Enabled {
		return cache.NewMemoryCache(), func() {}, nil
	}

	if err := config.EnsureStateDir(rootDir); err != nil {
		return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	bc, err := store.OpenBoltCache(config.CacheDBPath(rootDir))
	if err != nil {
		return nil, nil, err
	}
	return bc, func() { bc.Close() }, nil
}
