package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// IndexConfig describes how to reach the Pinecone index data plane.
type IndexConfig struct {
	// Host is the index endpoint, e.g. "myindex-abc123.svc.us-east-1.pinecone.io".
	Host      string
	APIKey    string
	Namespace string
	Timeout   time.Duration
}

// PineconeIndex is a minimal data-plane client for a single Pinecone index.
type PineconeIndex struct {
	baseURL   string
	apiKey    string
	namespace string
	http      *http.Client
}

// NewPineconeIndex validates the configuration and returns a ready-to-use client.
func NewPineconeIndex(cfg IndexConfig) (*PineconeIndex, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("rag: pinecone index host required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("rag: pinecone api key required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	base := strings.TrimRight(cfg.Host, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	return &PineconeIndex{
		baseURL:   base,
		apiKey:    cfg.APIKey,
		namespace: cfg.Namespace,
		http: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Chunk is a stored text fragment returned from a query.
type Chunk struct {
	ID    string
	Score float64
	Text  string
}

// Vector is an embedding plus its source text, ready for upsert.
type Vector struct {
	ID     string
	Values []float32
	Text   string
}

type queryMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

type queryResponse struct {
	Matches []queryMatch `json:"matches"`
}

// Query returns the topK nearest stored chunks for the given vector.
func (c *PineconeIndex) Query(ctx context.Context, vector []float32, topK int) ([]Chunk, error) {
	if len(vector) == 0 {
		return nil, errors.New("rag: query vector is empty")
	}
	if topK <= 0 {
		topK = 3
	}

	payload := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}
	if c.namespace != "" {
		payload["namespace"] = c.namespace
	}

	data, err := c.doRequest(ctx, "/query", payload)
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("rag: decode query response failed: %w", err)
	}

	chunks := make([]Chunk, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		text, _ := m.Metadata["text"].(string)
		chunks = append(chunks, Chunk{
			ID:    m.ID,
			Score: m.Score,
			Text:  text,
		})
	}
	return chunks, nil
}

// Upsert writes vectors with their source text stored under the "text"
// metadata key, the layout the query path reads back.
func (c *PineconeIndex) Upsert(ctx context.Context, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	wire := make([]map[string]any, 0, len(vectors))
	for _, v := range vectors {
		if v.ID == "" || len(v.Values) == 0 {
			return errors.New("rag: upsert vector missing id or values")
		}
		wire = append(wire, map[string]any{
			"id":     v.ID,
			"values": v.Values,
			"metadata": map[string]any{
				"text": v.Text,
			},
		})
	}

	payload := map[string]any{"vectors": wire}
	if c.namespace != "" {
		payload["namespace"] = c.namespace
	}

	_, err := c.doRequest(ctx, "/vectors/upsert", payload)
	return err
}

func (c *PineconeIndex) doRequest(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("rag: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("rag: request build failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rag: pinecone request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rag: read response failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("rag: pinecone %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}
