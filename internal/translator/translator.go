// Package translator holds the batching and reassembly core: it takes a
// normalized input sequence, splits it into upstream-sized batches, issues
// the batch calls in order, and rebuilds an OpenAI-shaped embeddings
// response preserving global item order.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/niposch/ovh-embedding-adapter/internal/models"
	"github.com/niposch/ovh-embedding-adapter/internal/observability"
	"github.com/niposch/ovh-embedding-adapter/internal/upstream"
)

// ModelName is the fixed model identifier reported in every response.
const ModelName = "ovh-embeddings"

// DefaultMaxBatchSize is the batch ceiling the OVH endpoint imposes.
const DefaultMaxBatchSize = 10

// BatchEmbedder is the upstream collaborator: for a batch of m texts it
// returns m vectors in the same order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]models.EmbeddingVector, error)
}

// BatchError reports the first failed batch call. No further batches are
// attempted after it and no partial results are kept.
type BatchError struct {
	BatchStart int
	Err        error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("error from OVH API (batch starting at index %d): %s", e.BatchStart, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Translator converts one normalized embedding request into one response.
// It holds no per-request state and is safe for concurrent use.
type Translator struct {
	embedder     BatchEmbedder
	maxBatchSize int
	obs          *observability.Provider
}

// New builds a translator around the given upstream embedder.
func New(embedder BatchEmbedder, maxBatchSize int, obs *observability.Provider) *Translator {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	return &Translator{embedder: embedder, maxBatchSize: maxBatchSize, obs: obs}
}

// Translate runs the full pipeline for one request: normalize, batch, call
// upstream per batch in order, reassemble. Batches are processed strictly
// sequentially; the first failure aborts the request.
func (t *Translator) Translate(ctx context.Context, req models.EmbeddingsRequest) (models.EmbeddingsResponse, error) {
	texts, err := models.ParseInput(req.Input)
	if err != nil {
		return models.EmbeddingsResponse{}, err
	}

	all := make([]models.EmbeddingVector, 0, len(texts))
	for k, batch := range chunkTexts(texts, t.maxBatchSize) {
		batchStart := k * t.maxBatchSize
		began := time.Now()
		vectors, err := t.embedder.EmbedBatch(ctx, batch)
		elapsed := time.Since(began)
		if err != nil {
			t.obs.RecordUpstreamBatch(upstreamStatusLabel(err), len(batch), elapsed)
			return models.EmbeddingsResponse{}, &BatchError{BatchStart: batchStart, Err: err}
		}
		t.obs.RecordUpstreamBatch("200", len(batch), elapsed)
		all = append(all, vectors...)
	}

	data := make([]models.EmbeddingData, len(all))
	for i, vector := range all {
		data[i] = models.EmbeddingData{
			Embedding: vector,
			Index:     i,
			Object:    "embedding",
		}
	}

	tokens := countTokens(texts)
	t.obs.RecordTokens(int64(tokens))

	return models.EmbeddingsResponse{
		Data:   data,
		Model:  ModelName,
		Object: "list",
		Usage: models.Usage{
			PromptTokens: tokens,
			TotalTokens:  tokens,
		},
	}, nil
}

// chunkTexts partitions texts into consecutive chunks of at most size
// elements; chunk k covers indices [k*size, min((k+1)*size, n)).
func chunkTexts(texts []string, size int) [][]string {
	if len(texts) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		chunks = append(chunks, texts[start:end])
	}
	return chunks
}

// countTokens approximates token usage as the whitespace-delimited word
// count summed over every input text.
func countTokens(texts []string) int {
	total := 0
	for _, text := range texts {
		total += len(strings.Fields(text))
	}
	return total
}

func upstreamStatusLabel(err error) string {
	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("%d", statusErr.StatusCode)
	}
	return "transport_error"
}
