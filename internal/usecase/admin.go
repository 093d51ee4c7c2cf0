package usecase

import (
	"context"

	"lawrag/internal/domain"
	"lawrag/internal/port"
)

// Admin is the collection lifecycle surface. Every destructive operation
// takes an explicit confirm parameter and refuses to act without it; the
// flag is supplied by the caller (CLI prompt, --yes, automation), never
// assumed.
type Admin struct {
	store port.VectorStore
}

// NewAdmin wraps a vector store with confirmation-gated administration.
func NewAdmin(store port.VectorStore) *Admin {
	return &Admin{store: store}
}

// Create creates a collection. force recreates an existing collection, which
// destroys its points and therefore requires confirm.
func (a *Admin) Create(ctx context.Context, name string, dim int, metric domain.Distance, force, confirm bool) error {
	if force && !confirm {
		return domain.ErrNotConfirmed
	}
	return a.store.CreateCollection(ctx, name, dim, metric, force)
}

// Delete irreversibly removes a collection.
func (a *Admin) Delete(ctx context.Context, name string, confirm bool) error {
	if !confirm {
		return domain.ErrNotConfirmed
	}
	return a.store.DeleteCollection(ctx, name)
}

// List returns all collection names.
func (a *Admin) List(ctx context.Context) ([]string, error) {
	return a.store.ListCollections(ctx)
}

// Info returns count, dimension and metric for a collection.
func (a *Admin) Info(ctx context.Context, name string) (domain.CollectionInfo, error) {
	return a.store.Info(ctx, name)
}

// DeletePoints removes points by id.
func (a *Admin) DeletePoints(ctx context.Context, name string, ids []string, confirm bool) error {
	if !confirm {
		return domain.ErrNotConfirmed
	}
	return a.store.DeletePoints(ctx, name, ids)
}

// DeleteByFilter removes every point matching the filter.
func (a *Admin) DeleteByFilter(ctx context.Context, name string, filter domain.Filter, confirm bool) error {
	if !confirm {
		return domain.ErrNotConfirmed
	}
	return a.store.DeleteByFilter(ctx, name, filter)
}

// Scroll pages through stored points without scoring them.
func (a *Admin) Scroll(ctx context.Context, name string, limit int, offset string) ([]domain.Point, string, error) {
	return a.store.Scroll(ctx, name, limit, offset)
}
