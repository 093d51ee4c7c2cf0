package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

// HashEmbedder is a deterministic, offline embedding provider. It derives a
// pseudo-vector from a SHA-256 stream over the text, so identical texts map
// to identical unit vectors. Useful for tests and for exercising the pipeline
// without a model backend; it has no semantic meaning.
type HashEmbedder struct {
	dimension int
}

// NewHashEmbedder creates a hash embedder with the given dimension.
func NewHashEmbedder(dimension int) *HashEmbedder {
	return &HashEmbedder{dimension: dimension}
}

// Encode embeds each text independently and deterministically.
func (e *HashEmbedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

// EncodeQuery embeds a single query text. Hash vectors are always
// unit-normalized.
func (e *HashEmbedder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.embed(text), nil
}

func (e *HashEmbedder) embed(text string) []float32 {
	vector := make([]float32, e.dimension)
	seed := sha256.Sum256([]byte(text))
	block := seed[:]
	for i := 0; i < e.dimension; i++ {
		if i%8 == 0 && i > 0 {
			next := sha256.Sum256(block)
			block = next[:]
		}
		bits := binary.BigEndian.Uint32(block[(i%8)*4 : (i%8)*4+4])
		// Map to [-1, 1).
		vector[i] = float32(int64(bits)-1<<31) / float32(1<<31)
	}
	Normalize(vector)
	return vector
}

// Dimension returns the embedding vector dimension.
func (e *HashEmbedder) Dimension() int {
	return e.dimension
}

// ModelName returns a fixed identifier.
func (e *HashEmbedder) ModelName() string {
	return "hash"
}
