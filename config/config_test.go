package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunk.SizeBudget != 2000 {
		t.Errorf("expected SizeBudget=2000, got %d", cfg.Chunk.SizeBudget)
	}
	if cfg.Analysis.Concurrency != 4 {
		t.Errorf("expected Concurrency=4, got %d", cfg.Analysis.Concurrency)
	}
	if cfg.Analysis.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", cfg.Analysis.MaxAttempts)
	}
	if cfg.QA.TopK != 4 {
		t.Errorf("expected TopK=4, got %d", cfg.QA.TopK)
	}
	if len(cfg.Filter.Severities) != 0 {
		t.Errorf("expected empty severity filter, got %v", cfg.Filter.Severities)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "logmentor.yaml")

	content := `
chunk:
  size_budget: 500
filter:
  severities: [ERROR, WARNING]
analysis:
  concurrency: 2
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chunk.SizeBudget != 500 {
		t.Errorf("expected SizeBudget=500, got %d", cfg.Chunk.SizeBudget)
	}
	if len(cfg.Filter.Severities) != 2 || cfg.Filter.Severities[0] != "ERROR" {
		t.Errorf("severity filter not loaded: %v", cfg.Filter.Severities)
	}
	if cfg.Analysis.Concurrency != 2 {
		t.Errorf("expected Concurrency=2, got %d", cfg.Analysis.Concurrency)
	}
	// Untouched sections keep defaults.
	if cfg.QA.TopK != 4 {
		t.Errorf("expected default TopK=4, got %d", cfg.QA.TopK)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	content := "qa:\n  top_k: 6\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "logmentor.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.QA.TopK != 6 {
		t.Errorf("expected TopK=6, got %d", cfg.QA.TopK)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "logmentor.yaml")

	cfg := DefaultConfig()
	cfg.Chunk.SizeBudget = 1234
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Chunk.SizeBudget != 1234 {
		t.Errorf("round trip lost value: %d", loaded.Chunk.SizeBudget)
	}
}
