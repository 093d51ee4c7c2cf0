// Package embedding provides embedding providers that turn legal text into
// fixed-dimension vectors.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"lawrag/internal/domain"
)

// Client embeds text through an OpenAI-compatible /v1/embeddings endpoint.
// BGE-M3 and similar models are typically served this way (ollama, xinference,
// vllm). The client is constructed once and injected; the backend keeps the
// model loaded between calls.
type Client struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	batchSize int
	normalize bool
	client    *http.Client
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Model     string
	APIKeyEnv string        // environment variable holding the API key; empty means no auth
	Dimension int           // 0 selects the model default
	BatchSize int           // texts per request, default 32
	Normalize bool          // unit-normalize query vectors
	Timeout   time.Duration // per-request timeout, default 60s
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient builds an embedding client. It fails when an API key environment
// variable is named but unset; it does not contact the backend.
func NewClient(opts Options) (*Client, error) {
	apiKey := ""
	if opts.APIKeyEnv != "" {
		apiKey = os.Getenv(opts.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("API key not found in environment variable: %s", opts.APIKeyEnv)
		}
	}

	dimension := opts.Dimension
	if dimension == 0 {
		dimension = modelDimension(opts.Model)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:    apiKey,
		model:     opts.Model,
		baseURL:   opts.BaseURL,
		dimension: dimension,
		batchSize: batchSize,
		normalize: opts.Normalize,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func modelDimension(model string) int {
	switch model {
	case "bge-m3", "BAAI/bge-m3":
		return 1024
	case "text-embedding-3-small", "text-embedding-ada-002":
		return 1536
	case "text-embedding-3-large":
		return 3072
	case "nomic-embed-text":
		return 768
	}
	return 1024
}

// Encode embeds texts in batches, preserving input order.
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := c.encodeBatch(ctx, texts[i:end])
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}
	return all, nil
}

// EncodeQuery embeds a single query text, unit-normalized when configured.
func (c *Client) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.encodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	vector := vectors[0]
	if c.normalize {
		Normalize(vector)
	}
	return vector, nil
}

func (c *Client) encodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingRequest{Input: texts, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.ConnectivityError{Target: "embedding backend", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse embedding response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", parsed.Error.Message)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d texts", len(parsed.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding API returned out-of-range index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for _, v := range vectors {
		if len(v) != c.dimension {
			return nil, domain.Configf("embedding dimension mismatch: model returned %d, expected %d", len(v), c.dimension)
		}
	}
	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (c *Client) Dimension() int {
	return c.dimension
}

// ModelName returns the configured model name.
func (c *Client) ModelName() string {
	return c.model
}

// Normalize scales v to unit Euclidean norm in place. Zero vectors are left
// untouched.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}
