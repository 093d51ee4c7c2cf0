// Package qdrant implements the VectorStore port as a minimal REST client to
// a Qdrant server. No SDK, just JSON over HTTP.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lawrag/internal/domain"
)

// Store talks to one Qdrant instance. Collection names are passed per call,
// so a single Store serves any number of collections.
type Store struct {
	url    string
	apiKey string
	client *http.Client
}

// Config holds connection details for a Qdrant server.
type Config struct {
	URL     string // e.g. http://localhost:6333
	APIKey  string
	Timeout time.Duration // per-request, default 15s
}

// New creates a Qdrant-backed store. It does not contact the server.
func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}
}

func metricName(metric domain.Distance) string {
	switch metric {
	case domain.DistanceDot:
		return "Dot"
	case domain.DistanceEuclid:
		return "Euclid"
	default:
		return "Cosine"
	}
}

func parseMetric(s string) domain.Distance {
	switch s {
	case "Dot":
		return domain.DistanceDot
	case "Euclid":
		return domain.DistanceEuclid
	default:
		return domain.DistanceCosine
	}
}

// CreateCollection creates a collection; no-op when it exists unless force,
// which drops and recreates it.
func (s *Store) CreateCollection(ctx context.Context, name string, dim int, metric domain.Distance, force bool) error {
	if dim <= 0 {
		return domain.Configf("collection dimension must be positive, got %d", dim)
	}
	names, err := s.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, existing := range names {
		if existing == name {
			if !force {
				return nil
			}
			if err := s.DeleteCollection(ctx, name); err != nil {
				return err
			}
			break
		}
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": metricName(metric),
		},
	}
	return s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", name), body, nil)
}

// DeleteCollection irreversibly removes a collection.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	return s.do(ctx, http.MethodDelete, fmt.Sprintf("/collections/%s", name), nil, nil)
}

// ListCollections returns the names of all collections on the server.
func (s *Store) ListCollections(ctx context.Context) ([]string, error) {
	var resp struct {
		Result struct {
			Collections []struct {
				Name string `json:"name"`
			} `json:"collections"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodGet, "/collections", nil, &resp); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Result.Collections))
	for _, c := range resp.Result.Collections {
		names = append(names, c.Name)
	}
	return names, nil
}

// Info returns count, dimension and metric for a collection.
func (s *Store) Info(ctx context.Context, name string) (domain.CollectionInfo, error) {
	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
			Config      struct {
				Params struct {
					Vectors struct {
						Size     int    `json:"size"`
						Distance string `json:"distance"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", name), nil, &resp); err != nil {
		return domain.CollectionInfo{}, err
	}
	return domain.CollectionInfo{
		Name:      name,
		Count:     resp.Result.PointsCount,
		Dimension: resp.Result.Config.Params.Vectors.Size,
		Metric:    parseMetric(resp.Result.Config.Params.Vectors.Distance),
	}, nil
}

// Upsert writes points in batches of 100 with wait=true, so each batch is
// durable before the next is sent. Batches are not atomic as a group.
func (s *Store) Upsert(ctx context.Context, name string, points []domain.Point) error {
	const batchSize = 100
	for start := 0; start < len(points); start += batchSize {
		end := start + batchSize
		if end > len(points) {
			end = len(points)
		}
		batch := points[start:end]

		payload := make([]map[string]any, len(batch))
		for i, p := range batch {
			payload[i] = map[string]any{
				"id":      p.ID,
				"vector":  p.Vector,
				"payload": p.Payload,
			}
		}
		body := map[string]any{"points": payload}
		path := fmt.Sprintf("/collections/%s/points?wait=true", name)
		if err := s.do(ctx, http.MethodPut, path, body, nil); err != nil {
			return fmt.Errorf("upsert batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// Search runs a scored vector search with optional threshold and
// AND-of-equality payload filter.
func (s *Store) Search(ctx context.Context, name string, vector []float32, limit int, threshold float64, filter domain.Filter) ([]domain.SearchResult, error) {
	// score_threshold is always sent: with cosine similarity Qdrant can
	// return negative scores, so even a threshold of 0.0 excludes results.
	body := map[string]any{
		"vector":          vector,
		"limit":           limit,
		"score_threshold": threshold,
		"with_payload":    true,
	}
	if f := qdrantFilter(filter); f != nil {
		body["filter"] = f
	}

	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", name)
	if err := s.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{
			ID:      fmt.Sprint(r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		})
	}
	return results, nil
}

// DeletePoints removes points by id.
func (s *Store) DeletePoints(ctx context.Context, name string, ids []string) error {
	body := map[string]any{"points": ids}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", name)
	return s.do(ctx, http.MethodPost, path, body, nil)
}

// DeleteByFilter removes all points whose payload matches the filter.
func (s *Store) DeleteByFilter(ctx context.Context, name string, filter domain.Filter) error {
	f := qdrantFilter(filter)
	if f == nil {
		return domain.Configf("delete filter must not be empty")
	}
	body := map[string]any{"filter": f}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", name)
	return s.do(ctx, http.MethodPost, path, body, nil)
}

// Scroll pages through points; offset is the opaque next_page_offset from
// the previous call.
func (s *Store) Scroll(ctx context.Context, name string, limit int, offset string) ([]domain.Point, string, error) {
	if limit <= 0 {
		limit = 10
	}
	body := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  true,
	}
	if offset != "" {
		body["offset"] = offset
	}

	var resp struct {
		Result struct {
			Points []struct {
				ID      any            `json:"id"`
				Vector  []float32      `json:"vector"`
				Payload map[string]any `json:"payload"`
			} `json:"points"`
			NextPageOffset any `json:"next_page_offset"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/scroll", name)
	if err := s.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, "", err
	}

	points := make([]domain.Point, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		points = append(points, domain.Point{
			ID:      fmt.Sprint(p.ID),
			Vector:  p.Vector,
			Payload: p.Payload,
		})
	}
	next := ""
	if resp.Result.NextPageOffset != nil {
		next = fmt.Sprint(resp.Result.NextPageOffset)
	}
	return points, next, nil
}

// qdrantFilter converts an equality filter map into qdrant's must-match
// filter form. Returns nil for an empty filter.
func qdrantFilter(filter domain.Filter) map[string]any {
	if len(filter) == 0 {
		return nil
	}
	must := make([]map[string]any, 0, len(filter))
	for key, value := range filter {
		must = append(must, map[string]any{
			"key":   key,
			"match": map[string]any{"value": value},
		})
	}
	return map[string]any{"must": must}
}

func (s *Store) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &domain.ConnectivityError{Target: "qdrant", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: qdrant %s %s", domain.ErrCollectionNotFound, method, path)
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("qdrant %s %s failed: %s: %s", method, path, resp.Status, raw)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode qdrant response: %w", err)
		}
	}
	return nil
}
