package usecase

import (
	"context"
	"fmt"
	"strings"

	"lawrag/internal/domain"
	"lawrag/internal/port"
)

// EmptyContext is returned by Context when no law clears the score floor. A
// fixed sentinel rather than "" so consumers can tell "searched, found
// nothing" from an omitted context.
const EmptyContext = "no relevant regulation found"

// Bounds on result counts, matching the query API contract.
const (
	maxSearchTopK  = 20
	maxContextTopK = 10
)

// Retriever answers semantic queries against one collection and assembles
// formatted context blocks for the judgment-generation step.
type Retriever struct {
	embedder   port.Embedder
	store      port.VectorStore
	collection string
}

// NewRetriever wires a retrieval service over the given embedder and store.
func NewRetriever(embedder port.Embedder, store port.VectorStore, collection string) *Retriever {
	return &Retriever{embedder: embedder, store: store, collection: collection}
}

// Search embeds the query and delegates to the vector store. topK is clamped
// to [1, 20]; results arrive in descending score order, none below threshold.
func (r *Retriever) Search(ctx context.Context, query string, topK int, threshold float64, filter domain.Filter) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query text", domain.ErrEmptyInput)
	}
	topK = clamp(topK, 1, maxSearchTopK)

	vector, err := r.embedder.EncodeQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	return r.store.Search(ctx, r.collection, vector, topK, threshold, filter)
}

// Context retrieves the laws relevant to the case facts (and optional
// evidence chain) and renders them as a deterministic numbered block ready
// for a prompt. topK is clamped to [1, 10]. With no qualifying result the
// context is the EmptyContext sentinel and the law list is empty.
func (r *Retriever) Context(ctx context.Context, caseFacts, evidenceChain string, topK int, minScore float64) (string, []domain.SearchResult, error) {
	queryParts := []string{caseFacts}
	if evidenceChain != "" {
		queryParts = append(queryParts, evidenceChain)
	}
	query := strings.Join(queryParts, "\n")

	topK = clamp(topK, 1, maxContextTopK)
	laws, err := r.Search(ctx, query, topK, minScore, nil)
	if err != nil {
		return "", nil, err
	}
	return FormatContext(laws), laws, nil
}

// FormatContext renders ranked laws as a numbered text block, each entry with
// its source file and similarity score.
func FormatContext(laws []domain.SearchResult) string {
	if len(laws) == 0 {
		return EmptyContext
	}
	parts := []string{"Relevant laws and regulations:\n"}
	for i, law := range laws {
		parts = append(parts, fmt.Sprintf("%d. %s", i+1, law.Text()))
		parts = append(parts, fmt.Sprintf("   (source: %s, score: %.3f)\n", law.SourceFile(), law.Score))
	}
	return strings.Join(parts, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
