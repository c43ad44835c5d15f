// Package qdrant provides a driven.VectorStore backed by a Qdrant server,
// spoken to over its REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const (
	// DefaultURL is the default Qdrant REST endpoint.
	DefaultURL = "http://localhost:6333"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second
)

// Config holds configuration for the Qdrant store.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	// Dimensions of stored vectors. 0 adopts the first upserted vector's length.
	Dimensions int
	Timeout    time.Duration
}

// Store is a REST client for a single Qdrant collection using cosine distance.
// The collection is created on first write if it does not exist.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client

	mu         sync.Mutex
	dimensions int
	ready      bool
}

// NewStore creates a new Qdrant store.
func NewStore(cfg Config) *Store {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Store{
		url:        strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type point struct {
	ID      string              `json:"id"`
	Vector  []float32           `json:"vector"`
	Payload domain.ChunkPayload `json:"payload"`
}

type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

type searchResponse struct {
	Result []struct {
		ID      any                 `json:"id"`
		Score   float64             `json:"score"`
		Payload domain.ChunkPayload `json:"payload"`
	} `json:"result"`
}

type countResponse struct {
	Result struct {
		Count int `json:"count"`
	} `json:"result"`
}

// Upsert writes all records in one request with wait=true.
func (s *Store) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	dims := s.dimensions
	if dims == 0 {
		dims = len(records[0].Vector)
	}
	s.mu.Unlock()

	points := make([]point, len(records))
	for i := range records {
		if err := vecmath.CheckDimensions(dims, len(records[i].Vector)); err != nil {
			return err
		}
		points[i] = point{ID: records[i].ID, Vector: records[i].Vector, Payload: records[i].Payload}
	}

	if err := s.ensureCollection(ctx, dims); err != nil {
		return err
	}

	body := map[string]any{"points": points}
	path := fmt.Sprintf("/collections/%s/points?wait=true", s.collection)
	if _, err := s.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// Search returns the k nearest points. A missing collection yields no hits.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	s.mu.Lock()
	dims := s.dimensions
	s.mu.Unlock()
	if err := vecmath.CheckDimensions(dims, len(query)); err != nil {
		return nil, err
	}

	req := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp searchResponse
	path := fmt.Sprintf("/collections/%s/points/search", s.collection)
	status, err := s.do(ctx, http.MethodPost, path, req, &resp)
	if status == http.StatusNotFound {
		return []driven.VectorHit{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, driven.VectorHit{
			ID:      fmt.Sprint(r.ID),
			Payload: r.Payload,
			Score:   r.Score,
		})
	}
	return hits, nil
}

// Count returns the exact number of points in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var resp countResponse
	path := fmt.Sprintf("/collections/%s/points/count", s.collection)
	status, err := s.do(ctx, http.MethodPost, path, map[string]any{"exact": true}, &resp)
	if status == http.StatusNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return resp.Result.Count, nil
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// ensureCollection creates the collection if missing, or adopts and checks
// the dimensionality of an existing one.
func (s *Store) ensureCollection(ctx context.Context, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return vecmath.CheckDimensions(s.dimensions, dims)
	}

	var info collectionInfo
	path := "/collections/" + s.collection
	status, err := s.do(ctx, http.MethodGet, path, nil, &info)
	switch {
	case status == http.StatusNotFound:
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dims,
				"distance": "Cosine",
			},
		}
		if _, err := s.do(ctx, http.MethodPut, path, body, nil); err != nil {
			return fmt.Errorf("create collection %s: %w", s.collection, err)
		}
		logger.Info("created qdrant collection %s (%d dimensions)", s.collection, dims)
	case err != nil:
		return fmt.Errorf("get collection %s: %w", s.collection, err)
	default:
		if existing := info.Result.Config.Params.Vectors.Size; existing > 0 && existing != dims {
			return fmt.Errorf("collection %s: %w",
				s.collection, vecmath.CheckDimensions(existing, dims))
		}
	}

	s.dimensions = dims
	s.ready = true
	return nil
}

// do sends a JSON request and decodes a JSON response into out.
// It returns the HTTP status (0 on transport failure).
func (s *Store) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.url+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		sentinel := domain.ErrStoreUnavailable
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(string(msg)), "dimension") {
			sentinel = domain.ErrDimensionMismatch
		}
		return resp.StatusCode, fmt.Errorf("qdrant %s %s: status %d: %s: %w",
			method, path, resp.StatusCode, strings.TrimSpace(string(msg)), sentinel)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
