package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the lawrag tool.
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	Store      StoreConfig      `yaml:"store"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Server     ServerConfig     `yaml:"server"`
}

// CollectionConfig names the knowledge-base collection and its geometry.
type CollectionConfig struct {
	Name      string `yaml:"name"`
	Dimension int    `yaml:"dimension"`
	Distance  string `yaml:"distance"` // cosine, dot, euclid
}

// StoreConfig selects and configures the vector store backend.
type StoreConfig struct {
	Type   string       `yaml:"type"` // "bolt" (embedded) or "qdrant"
	Bolt   BoltConfig   `yaml:"bolt"`
	Qdrant QdrantConfig `yaml:"qdrant"`
}

// BoltConfig locates the embedded store file.
type BoltConfig struct {
	Path string `yaml:"path"`
}

// QdrantConfig contains connection details for a Qdrant server.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "openai" (any compatible endpoint) or "hash"
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Dimension   int    `yaml:"dimension"`
	BatchSize   int    `yaml:"batch_size"`
	Normalize   bool   `yaml:"normalize"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// IngestConfig holds segmentation and id parameters.
type IngestConfig struct {
	ChunkSize int      `yaml:"chunk_size"`
	Overlap   int      `yaml:"overlap"`
	IDScheme  string   `yaml:"id_scheme"` // "random" or "deterministic"
	Includes  []string `yaml:"includes"`
}

// RetrieveConfig holds default query parameters.
type RetrieveConfig struct {
	TopK           int     `yaml:"top_k"`
	ScoreThreshold float64 `yaml:"score_threshold"`
	MinScore       float64 `yaml:"min_score"` // floor for context assembly
}

// ServerConfig configures the HTTP query API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Collection: CollectionConfig{
			Name:      "law_knowledge",
			Dimension: 1024,
			Distance:  "cosine",
		},
		Store: StoreConfig{
			Type: "bolt",
			Bolt: BoltConfig{
				Path: "lawrag.db",
			},
			Qdrant: QdrantConfig{
				URL:         "http://localhost:6333",
				TimeoutSecs: 15,
			},
		},
		Embedding: EmbeddingConfig{
			Provider:    "openai",
			BaseURL:     "http://localhost:11434/v1",
			Model:       "bge-m3",
			Dimension:   1024,
			BatchSize:   32,
			Normalize:   true,
			TimeoutSecs: 60,
		},
		Ingest: IngestConfig{
			ChunkSize: 500,
			Overlap:   50,
			IDScheme:  "random",
			Includes:  []string{"**/*.txt"},
		},
		Retrieve: RetrieveConfig{
			TopK:           5,
			ScoreThreshold: 0.0,
			MinScore:       0.3,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8000",
		},
	}
}

// Load loads configuration from a YAML file, applying defaults for missing
// fields. A missing file yields the defaults. LAWRAG_QDRANT_URL overrides the
// qdrant store URL, so deployments can point at another server without
// editing the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg *Config) *Config {
	if url := os.Getenv("LAWRAG_QDRANT_URL"); url != "" {
		cfg.Store.Qdrant.URL = url
	}
	return cfg
}
