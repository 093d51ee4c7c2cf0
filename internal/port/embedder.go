package port

import "context"

// Embedder generates fixed-dimension vector embeddings for text.
//
// Implementations are constructed once and injected; construction performs
// whatever expensive setup the backend needs, and repeated use never
// re-initializes.
type Embedder interface {
	// Encode embeds the given texts. The result has exactly one vector per
	// input text, in input order. Implementations batch internally.
	Encode(ctx context.Context, texts []string) ([][]float32, error)

	// EncodeQuery embeds a single query text, unit-normalized when the
	// implementation is configured to normalize.
	EncodeQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
