package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"lawrag/config"
	"lawrag/internal/adapter/embedding"
	"lawrag/internal/adapter/qdrant"
	"lawrag/internal/adapter/store"
	"lawrag/internal/port"
	"lawrag/internal/usecase"
)

// openStore builds the configured vector store. The returned closer is a
// no-op for remote stores.
func openStore(cfg *config.Config) (port.VectorStore, func(), error) {
	switch cfg.Store.Type {
	case "qdrant":
		apiKey := ""
		if cfg.Store.Qdrant.APIKeyEnv != "" {
			apiKey = os.Getenv(cfg.Store.Qdrant.APIKeyEnv)
		}
		st := qdrant.New(qdrant.Config{
			URL:     cfg.Store.Qdrant.URL,
			APIKey:  apiKey,
			Timeout: time.Duration(cfg.Store.Qdrant.TimeoutSecs) * time.Second,
		})
		return st, func() {}, nil
	case "bolt", "":
		st, err := store.Open(cfg.Store.Bolt.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
}

// newEmbedder builds the configured embedding provider.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "hash":
		return embedding.NewHashEmbedder(cfg.Embedding.Dimension), nil
	case "openai", "":
		return embedding.NewClient(embedding.Options{
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			APIKeyEnv: cfg.Embedding.APIKeyEnv,
			Dimension: cfg.Embedding.Dimension,
			BatchSize: cfg.Embedding.BatchSize,
			Normalize: cfg.Embedding.Normalize,
			Timeout:   time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
		})
	}
	return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
}

// newIngestor wires the full ingestion pipeline from config.
func newIngestor(cfg *config.Config, chunkSize, overlap int) (*usecase.Ingestor, func(), error) {
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	if chunkSize <= 0 {
		chunkSize = cfg.Ingest.ChunkSize
	}
	if overlap < 0 {
		overlap = cfg.Ingest.Overlap
	}
	ing := usecase.NewIngestor(emb, st, usecase.IngestorOptions{
		Collection: cfg.Collection.Name,
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		IDScheme:   usecase.IDScheme(cfg.Ingest.IDScheme),
		Includes:   cfg.Ingest.Includes,
	})
	return ing, closeStore, nil
}

// newRetriever wires the retrieval service from config.
func newRetriever(cfg *config.Config) (*usecase.Retriever, func(), error) {
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return usecase.NewRetriever(emb, st, cfg.Collection.Name), closeStore, nil
}

// confirmed resolves the confirmation gate for destructive commands. With
// --yes it is affirmative without interaction; otherwise it prompts on
// stdin and only an explicit "yes" proceeds.
func confirmed(assumeYes bool, prompt string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s (yes/no): ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(strings.ToLower(line)) == "yes"
}

// parseFilter turns repeated key=value flags into an equality filter.
func parseFilter(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		filter[key] = value
	}
	return filter, nil
}
