// Package store implements the VectorStore port on an embedded bbolt file.
// It serves local, serverless deployments; search is brute force over an
// in-memory cache, which is fine for collections up to a few hundred
// thousand points.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.etcd.io/bbolt"

	"lawrag/internal/domain"
)

var bucketMeta = []byte("collections")

// upsertBatchSize bounds the points written per bolt transaction. Batches
// are committed independently; a failure partway through leaves earlier
// batches in place.
const upsertBatchSize = 100

// BoltStore is a bbolt-backed VectorStore. Each collection is one bucket of
// json-encoded points plus an entry in the meta bucket recording its fixed
// dimension and metric.
type BoltStore struct {
	db *bbolt.DB

	mu    sync.RWMutex
	meta  map[string]collectionMeta
	cache map[string]map[string]cachedPoint
}

type collectionMeta struct {
	Dimension int             `json:"dimension"`
	Metric    domain.Distance `json:"metric"`
}

type cachedPoint struct {
	vector  []float32
	payload map[string]any
}

type storedPoint struct {
	Vector  []float32      `json:"v"`
	Payload map[string]any `json:"p,omitempty"`
}

// Open opens (creating if necessary) a bolt-backed store at path and loads
// existing collections into memory.
func Open(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	s := &BoltStore{
		db:    db,
		meta:  make(map[string]collectionMeta),
		cache: make(map[string]map[string]cachedPoint),
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create meta bucket: %w", err)
	}

	if err := s.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load collections: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).ForEach(func(k, v []byte) error {
			var meta collectionMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return fmt.Errorf("corrupt meta for collection %s: %w", k, err)
			}
			name := string(k)
			s.meta[name] = meta

			points := make(map[string]cachedPoint)
			b := tx.Bucket(collectionBucket(name))
			if b != nil {
				err := b.ForEach(func(id, data []byte) error {
					var sp storedPoint
					if err := json.Unmarshal(data, &sp); err != nil {
						return nil // skip corrupted entries
					}
					points[string(id)] = cachedPoint{vector: sp.Vector, payload: sp.Payload}
					return nil
				})
				if err != nil {
					return err
				}
			}
			s.cache[name] = points
			return nil
		})
	})
}

func collectionBucket(name string) []byte {
	return []byte("col:" + name)
}

// CreateCollection creates a named collection; no-op when it exists unless
// force, which drops and recreates it.
func (s *BoltStore) CreateCollection(ctx context.Context, name string, dim int, metric domain.Distance, force bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" {
		return domain.Configf("collection name must not be empty")
	}
	if dim <= 0 {
		return domain.Configf("collection dimension must be positive, got %d", dim)
	}
	if _, ok := domain.ParseDistance(string(metric)); !ok {
		return domain.Configf("unknown distance metric %q", metric)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.meta[name]; exists {
		if !force {
			return nil
		}
		if err := s.dropLocked(name); err != nil {
			return err
		}
	}

	meta := collectionMeta{Dimension: dim, Metric: metric}
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(collectionBucket(name)); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put([]byte(name), data)
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	s.meta[name] = meta
	s.cache[name] = make(map[string]cachedPoint)
	return nil
}

// DeleteCollection irreversibly removes a collection and its points.
func (s *BoltStore) DeleteCollection(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.meta[name]; !exists {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return s.dropLocked(name)
}

func (s *BoltStore) dropLocked(name string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(collectionBucket(name)) != nil {
			if err := tx.DeleteBucket(collectionBucket(name)); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketMeta).Delete([]byte(name))
	})
	if err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}
	delete(s.meta, name)
	delete(s.cache, name)
	return nil
}

// ListCollections returns collection names in lexical order.
func (s *BoltStore) ListCollections(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.meta))
	for name := range s.meta {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Info returns count, dimension and metric for a collection.
func (s *BoltStore) Info(ctx context.Context, name string) (domain.CollectionInfo, error) {
	if err := ctx.Err(); err != nil {
		return domain.CollectionInfo{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, exists := s.meta[name]
	if !exists {
		return domain.CollectionInfo{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return domain.CollectionInfo{
		Name:      name,
		Count:     len(s.cache[name]),
		Dimension: meta.Dimension,
		Metric:    meta.Metric,
	}, nil
}

// Upsert writes points in batches, overwriting existing ids. The whole call
// is validated against the collection dimension before anything is written.
func (s *BoltStore) Upsert(ctx context.Context, name string, points []domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, exists := s.meta[name]
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	for _, p := range points {
		if len(p.Vector) != meta.Dimension {
			return domain.Configf("vector dimension mismatch for point %s: expected %d, got %d", p.ID, meta.Dimension, len(p.Vector))
		}
		if p.ID == "" {
			return domain.Configf("point id must not be empty")
		}
	}

	for start := 0; start < len(points); start += upsertBatchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]

		err := s.db.Update(func(tx *bbolt.Tx) error {
			b := tx.Bucket(collectionBucket(name))
			if b == nil {
				return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
			}
			for _, p := range batch {
				data, err := json.Marshal(storedPoint{Vector: p.Vector, Payload: p.Payload})
				if err != nil {
					return err
				}
				if err := b.Put([]byte(p.ID), data); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("upsert batch failed: %w", err)
		}
		for _, p := range batch {
			s.cache[name][p.ID] = cachedPoint{vector: p.Vector, payload: p.Payload}
		}
	}
	return nil
}

// Search scores every cached point against the query vector and returns the
// top results above threshold, descending.
func (s *BoltStore) Search(ctx context.Context, name string, vector []float32, limit int, threshold float64, filter domain.Filter) ([]domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, exists := s.meta[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if len(vector) != meta.Dimension {
		return nil, domain.Configf("query dimension mismatch: expected %d, got %d", meta.Dimension, len(vector))
	}
	if limit <= 0 {
		return nil, nil
	}

	results := make([]domain.SearchResult, 0, limit)
	for id, p := range s.cache[name] {
		if !matchesFilter(p.payload, filter) {
			continue
		}
		score := similarity(meta.Metric, vector, p.vector)
		if score < threshold {
			continue
		}
		results = append(results, domain.SearchResult{ID: id, Score: score, Payload: p.payload})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID // stable order for equal scores
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// DeletePoints removes points by id. Unknown ids are ignored.
func (s *BoltStore) DeletePoints(ctx context.Context, name string, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.meta[name]; !exists {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(collectionBucket(name))
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	for _, id := range ids {
		delete(s.cache[name], id)
	}
	return nil
}

// DeleteByFilter removes all points whose payload matches the filter.
func (s *BoltStore) DeleteByFilter(ctx context.Context, name string, filter domain.Filter) error {
	if len(filter) == 0 {
		return domain.Configf("delete filter must not be empty")
	}
	s.mu.RLock()
	var ids []string
	points, exists := s.cache[name]
	if exists {
		for id, p := range points {
			if matchesFilter(p.payload, filter) {
				ids = append(ids, id)
			}
		}
	}
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	return s.DeletePoints(ctx, name, ids)
}

// Scroll pages through points in lexical id order. offset is the id the page
// starts at; the returned offset is the id of the first point of the next
// page, or empty at the end.
func (s *BoltStore) Scroll(ctx context.Context, name string, limit int, offset string) ([]domain.Point, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, exists := s.meta[name]; !exists {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if limit <= 0 {
		limit = 10
	}

	var page []domain.Point
	next := ""
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(collectionBucket(name)).Cursor()
		var k, v []byte
		if offset == "" {
			k, v = c.First()
		} else {
			k, v = c.Seek([]byte(offset))
		}
		for ; k != nil; k, v = c.Next() {
			if len(page) == limit {
				next = string(k)
				return nil
			}
			var sp storedPoint
			if err := json.Unmarshal(v, &sp); err != nil {
				continue
			}
			page = append(page, domain.Point{ID: string(k), Vector: sp.Vector, Payload: sp.Payload})
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return page, next, nil
}

// matchesFilter reports whether payload satisfies every equality predicate.
func matchesFilter(payload map[string]any, filter domain.Filter) bool {
	for key, want := range filter {
		got, ok := payload[key]
		if !ok || !equalValue(got, want) {
			return false
		}
	}
	return true
}

// equalValue compares payload values across the numeric types json decoding
// produces.
func equalValue(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// similarity scores two vectors under the collection metric. All metrics are
// oriented so that higher is better; euclid maps distance d to 1/(1+d) to
// stay in (0, 1].
func similarity(metric domain.Distance, a, b []float32) float64 {
	switch metric {
	case domain.DistanceDot:
		return dot(a, b)
	case domain.DistanceEuclid:
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return 1 / (1 + math.Sqrt(sum))
	default: // cosine
		na := math.Sqrt(dot(a, a))
		nb := math.Sqrt(dot(b, b))
		if na == 0 || nb == 0 {
			return 0
		}
		return dot(a, b) / (na * nb)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
