package port

import (
	"context"

	"lawrag/internal/domain"
)

// VectorStore is a persistent, named vector index.
//
// Collections have a fixed dimension and distance metric for their lifetime.
// Upserts are idempotent per id and internally chunked into batches; there is
// no cross-batch atomicity, so a failure partway through leaves earlier
// batches committed. Operations against a missing collection return
// domain.ErrCollectionNotFound.
type VectorStore interface {
	// CreateCollection creates a named collection. If it already exists the
	// call is a no-op unless force is set, in which case the collection is
	// destroyed and recreated. Destruction is irreversible; callers gate
	// force behind explicit confirmation.
	CreateCollection(ctx context.Context, name string, dim int, metric domain.Distance, force bool) error

	// DeleteCollection irreversibly removes a collection and its points.
	DeleteCollection(ctx context.Context, name string) error

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// Info returns count, dimension and metric for a collection.
	Info(ctx context.Context, name string) (domain.CollectionInfo, error)

	// Upsert writes points, overwriting any existing point with the same id.
	Upsert(ctx context.Context, name string, points []domain.Point) error

	// Search returns up to limit results ordered by descending score,
	// excluding scores below threshold. filter narrows results to points
	// whose payload matches every key/value pair.
	Search(ctx context.Context, name string, vector []float32, limit int, threshold float64, filter domain.Filter) ([]domain.SearchResult, error)

	// DeletePoints removes points by id.
	DeletePoints(ctx context.Context, name string, ids []string) error

	// DeleteByFilter removes all points whose payload matches the filter.
	DeleteByFilter(ctx context.Context, name string, filter domain.Filter) error

	// Scroll pages through points in stable key order. offset is the opaque
	// cursor returned by the previous page; empty starts from the beginning.
	// The returned next offset is empty when there are no further points.
	// Pagination is stable only absent concurrent writes.
	Scroll(ctx context.Context, name string, limit int, offset string) ([]domain.Point, string, error)
}
