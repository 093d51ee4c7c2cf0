package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Collection.Name != "law_knowledge" {
		t.Errorf("default collection: %s", cfg.Collection.Name)
	}
	if cfg.Collection.Dimension != 1024 || cfg.Collection.Distance != "cosine" {
		t.Errorf("default geometry: %+v", cfg.Collection)
	}
	if cfg.Ingest.ChunkSize != 500 || cfg.Ingest.Overlap != 50 {
		t.Errorf("default chunking: %+v", cfg.Ingest)
	}
	if cfg.Store.Type != "bolt" {
		t.Errorf("default store: %s", cfg.Store.Type)
	}
	if cfg.Embedding.Model != "bge-m3" || cfg.Embedding.BatchSize != 32 {
		t.Errorf("default embedding: %+v", cfg.Embedding)
	}
	if cfg.Retrieve.TopK != 5 || cfg.Retrieve.MinScore != 0.3 {
		t.Errorf("default retrieval: %+v", cfg.Retrieve)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Collection.Name != "law_knowledge" {
		t.Errorf("missing file should yield defaults, got %+v", cfg.Collection)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lawrag.yaml")
	data := `
collection:
  name: criminal_laws
store:
  type: qdrant
  qdrant:
    url: http://qdrant:6333
ingest:
  chunk_size: 300
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Collection.Name != "criminal_laws" {
		t.Errorf("override not applied: %s", cfg.Collection.Name)
	}
	if cfg.Store.Type != "qdrant" || cfg.Store.Qdrant.URL != "http://qdrant:6333" {
		t.Errorf("store override not applied: %+v", cfg.Store)
	}
	if cfg.Ingest.ChunkSize != 300 {
		t.Errorf("chunk_size override not applied: %d", cfg.Ingest.ChunkSize)
	}
	// Untouched fields keep their defaults.
	if cfg.Ingest.Overlap != 50 {
		t.Errorf("unset field should keep default, got %d", cfg.Ingest.Overlap)
	}
	if cfg.Collection.Dimension != 1024 {
		t.Errorf("unset field should keep default, got %d", cfg.Collection.Dimension)
	}
}

func TestLoadEnvOverridesStoreURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lawrag.yaml")
	data := `
store:
  qdrant:
    url: http://from-file:6333
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LAWRAG_QDRANT_URL", "http://from-env:6333")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Qdrant.URL != "http://from-env:6333" {
		t.Errorf("env should win over the file, got %s", cfg.Store.Qdrant.URL)
	}

	// And over the defaults when the file is absent.
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Qdrant.URL != "http://from-env:6333" {
		t.Errorf("env should win over defaults, got %s", cfg.Store.Qdrant.URL)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("collection: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
