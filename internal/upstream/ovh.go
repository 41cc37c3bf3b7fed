// Package upstream implements the client for the OVH batch_text2vec
// embedding endpoint. The wire format is minimal: the request body is a bare
// JSON array of texts and a successful response is a bare JSON array of
// vectors, one per text, in submission order.
package upstream

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

	"github.com/niposch/ovh-embedding-adapter/internal/models"
)

// Options configure the OVH batch client.
type Options struct {
	URL     string
	Token   string
	Timeout time.Duration
	// HTTPClient overrides the default client, used by tests.
	HTTPClient *http.Client
}

// Client issues batch embedding calls against a fixed endpoint with a fixed
// bearer credential.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
}

// StatusError reports a non-200 upstream response, carrying the status code
// and the raw response body.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d, response: %s", e.StatusCode, e.Body)
}

// New creates a client for the configured endpoint.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, errors.New("upstream: url required")
	}
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("upstream: token required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		url:        strings.TrimSpace(opts.URL),
		token:      strings.TrimSpace(opts.Token),
		httpClient: httpClient,
	}, nil
}

// EmbedBatch submits one batch of texts and returns one vector per text in
// the same order. The upstream does not echo indices; per-batch order is
// trusted.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([]models.EmbeddingVector, error) {
	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var vectors []models.EmbeddingVector
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decode upstream response: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("upstream returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}
