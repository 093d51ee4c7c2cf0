// Package api exposes the retrieval service over HTTP for the judgment
// generation pipeline: semantic search, assembled RAG context, health and
// stats.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"lawrag/internal/domain"
	"lawrag/internal/usecase"
)

// Server handles the query API. All endpoints speak JSON.
type Server struct {
	retriever  *usecase.Retriever
	admin      *usecase.Admin
	collection string
}

// NewServer builds the API over an already-wired retriever and admin.
func NewServer(retriever *usecase.Retriever, admin *usecase.Admin, collection string) *Server {
	return &Server{retriever: retriever, admin: admin, collection: collection}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /context", s.handleContext)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	return mux
}

type searchRequest struct {
	Query          string         `json:"query"`
	TopK           int            `json:"top_k"`
	ScoreThreshold float64        `json:"score_threshold"`
	Filter         map[string]any `json:"filter,omitempty"`
}

type searchResult struct {
	ID         string         `json:"id"`
	Score      float64        `json:"score"`
	Text       string         `json:"text"`
	SourceFile string         `json:"source_file"`
	Metadata   map[string]any `json:"metadata"`
}

type searchResponse struct {
	Success   bool           `json:"success"`
	Query     string         `json:"query"`
	Results   []searchResult `json:"results"`
	Count     int            `json:"count"`
	Timestamp string         `json:"timestamp"`
}

func toSearchResults(laws []domain.SearchResult) []searchResult {
	out := make([]searchResult, 0, len(laws))
	for _, law := range laws {
		out = append(out, searchResult{
			ID:         law.ID,
			Score:      law.Score,
			Text:       law.Text(),
			SourceFile: law.SourceFile(),
			Metadata:   law.Payload,
		})
	}
	return out
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query must not be empty")
		return
	}
	if req.TopK == 0 {
		req.TopK = 5
	}
	if req.TopK < 1 || req.TopK > 20 {
		writeError(w, http.StatusBadRequest, "top_k must be between 1 and 20")
		return
	}
	if req.ScoreThreshold < 0 || req.ScoreThreshold > 1 {
		writeError(w, http.StatusBadRequest, "score_threshold must be between 0.0 and 1.0")
		return
	}

	results, err := s.retriever.Search(r.Context(), req.Query, req.TopK, req.ScoreThreshold, domain.Filter(req.Filter))
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Success:   true,
		Query:     req.Query,
		Results:   toSearchResults(results),
		Count:     len(results),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

type contextRequest struct {
	CaseFacts     string  `json:"case_facts"`
	EvidenceChain string  `json:"evidence_chain,omitempty"`
	TopK          int     `json:"top_k"`
	MinScore      float64 `json:"min_score"`
}

type contextResponse struct {
	Success      bool           `json:"success"`
	Context      string         `json:"context"`
	RelevantLaws []searchResult `json:"relevant_laws"`
	Count        int            `json:"count"`
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.CaseFacts == "" {
		writeError(w, http.StatusBadRequest, "case_facts must not be empty")
		return
	}
	if req.TopK == 0 {
		req.TopK = 5
	}
	if req.TopK < 1 || req.TopK > 10 {
		writeError(w, http.StatusBadRequest, "top_k must be between 1 and 10")
		return
	}
	if req.MinScore < 0 || req.MinScore > 1 {
		writeError(w, http.StatusBadRequest, "min_score must be between 0.0 and 1.0")
		return
	}

	contextText, laws, err := s.retriever.Context(r.Context(), req.CaseFacts, req.EvidenceChain, req.TopK, req.MinScore)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contextResponse{
		Success:      true,
		Context:      contextText,
		RelevantLaws: toSearchResults(laws),
		Count:        len(laws),
	})
}

type healthResponse struct {
	Status         string `json:"status"`
	StoreConnected bool   `json:"store_connected"`
	Collection     string `json:"collection"`
	VectorCount    *int   `json:"vector_count,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info, err := s.admin.Info(r.Context(), s.collection)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, healthResponse{
			Status:         "healthy",
			StoreConnected: true,
			Collection:     s.collection,
			VectorCount:    &info.Count,
		})
	case errors.Is(err, domain.ErrCollectionNotFound):
		writeJSON(w, http.StatusOK, healthResponse{
			Status:         "degraded",
			StoreConnected: true,
			Collection:     s.collection,
		})
	default:
		writeJSON(w, http.StatusOK, healthResponse{
			Status:     "unhealthy",
			Collection: s.collection,
			Error:      err.Error(),
		})
	}
}

type statsResponse struct {
	Collection      string `json:"collection"`
	TotalVectors    int    `json:"total_vectors"`
	VectorDimension int    `json:"vector_dimension"`
	DistanceMetric  string `json:"distance_metric"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	info, err := s.admin.Info(r.Context(), s.collection)
	if err != nil {
		writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		Collection:      info.Name,
		TotalVectors:    info.Count,
		VectorDimension: info.Dimension,
		DistanceMetric:  string(info.Metric),
	})
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeSearchError(w http.ResponseWriter, err error) {
	var connErr *domain.ConnectivityError
	var cfgErr *domain.ConfigError
	switch {
	case errors.Is(err, domain.ErrCollectionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmptyInput), errors.As(err, &cfgErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &connErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
