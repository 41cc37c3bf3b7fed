package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/niposch/ovh-embedding-adapter/internal/models"
	"github.com/niposch/ovh-embedding-adapter/internal/upstream"
)

// testVector derives a unique deterministic vector per text.
func testVector(text string) models.EmbeddingVector {
	h := fnv.New32a()
	h.Write([]byte(text))
	return models.EmbeddingVector{float64(h.Sum32()), float64(len(text))}
}

type mockEmbedder struct {
	batches [][]string
	failOn  int // zero-based call number to fail on, -1 to never fail
	failErr error
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{failOn: -1}
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([]models.EmbeddingVector, error) {
	call := len(m.batches)
	m.batches = append(m.batches, append([]string(nil), texts...))
	if call == m.failOn {
		return nil, m.failErr
	}
	out := make([]models.EmbeddingVector, len(texts))
	for i, text := range texts {
		out[i] = testVector(text)
	}
	return out, nil
}

func rawInput(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestChunkTextsPartition(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 19, 20, 25, 100} {
		n := n
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			texts := make([]string, n)
			for i := range texts {
				texts[i] = fmt.Sprintf("text-%d", i)
			}

			chunks := chunkTexts(texts, 10)
			require.Len(t, chunks, (n+9)/10)

			total := 0
			for k, chunk := range chunks {
				require.LessOrEqual(t, len(chunk), 10)
				for j, text := range chunk {
					require.Equal(t, texts[k*10+j], text)
				}
				total += len(chunk)
			}
			require.Equal(t, n, total)
		})
	}
}

func TestTranslatePreservesOrderAcrossBatches(t *testing.T) {
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	embedder := newMockEmbedder()
	tr := New(embedder, 10, nil)

	resp, err := tr.Translate(context.Background(), models.EmbeddingsRequest{Input: rawInput(t, texts)})
	require.NoError(t, err)

	require.Len(t, embedder.batches, 3)
	require.Len(t, embedder.batches[0], 10)
	require.Len(t, embedder.batches[1], 10)
	require.Len(t, embedder.batches[2], 5)

	require.Len(t, resp.Data, 25)
	for i, item := range resp.Data {
		require.Equal(t, i, item.Index)
		require.Equal(t, "embedding", item.Object)
		require.Equal(t, testVector(texts[i]), item.Embedding)
	}
	require.Equal(t, ModelName, resp.Model)
	require.Equal(t, "list", resp.Object)
}

func TestTranslateSingleString(t *testing.T) {
	embedder := newMockEmbedder()
	tr := New(embedder, 10, nil)

	resp, err := tr.Translate(context.Background(), models.EmbeddingsRequest{Input: rawInput(t, "hello world")})
	require.NoError(t, err)

	require.Len(t, embedder.batches, 1)
	require.Equal(t, []string{"hello world"}, embedder.batches[0])

	require.Len(t, resp.Data, 1)
	require.Equal(t, 0, resp.Data[0].Index)
	require.Equal(t, testVector("hello world"), resp.Data[0].Embedding)
	require.Equal(t, 2, resp.Usage.PromptTokens)
	require.Equal(t, 2, resp.Usage.TotalTokens)
}

func TestTranslateUsageWordCounts(t *testing.T) {
	embedder := newMockEmbedder()
	tr := New(embedder, 10, nil)

	resp, err := tr.Translate(context.Background(), models.EmbeddingsRequest{Input: rawInput(t, []string{"a b", "c"})})
	require.NoError(t, err)

	require.Equal(t, 3, resp.Usage.PromptTokens)
	require.Equal(t, 3, resp.Usage.TotalTokens)
}

func TestTranslateFailFastOnBatchError(t *testing.T) {
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	embedder := newMockEmbedder()
	embedder.failOn = 1
	embedder.failErr = &upstream.StatusError{StatusCode: 503, Body: "overloaded"}
	tr := New(embedder, 10, nil)

	resp, err := tr.Translate(context.Background(), models.EmbeddingsRequest{Input: rawInput(t, texts)})
	require.Error(t, err)

	var batchErr *BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Equal(t, 10, batchErr.BatchStart)
	require.Contains(t, err.Error(), "batch starting at index 10")
	require.Contains(t, err.Error(), "503")
	require.Contains(t, err.Error(), "overloaded")

	// Third batch must never be attempted and nothing from the first
	// batch may leak into the response.
	require.Len(t, embedder.batches, 2)
	require.Empty(t, resp.Data)
}

func TestTranslateEmptyArray(t *testing.T) {
	embedder := newMockEmbedder()
	tr := New(embedder, 10, nil)

	resp, err := tr.Translate(context.Background(), models.EmbeddingsRequest{Input: rawInput(t, []string{})})
	require.NoError(t, err)

	require.Empty(t, embedder.batches)
	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data, 0)
	require.Equal(t, 0, resp.Usage.PromptTokens)
	require.Equal(t, 0, resp.Usage.TotalTokens)
}

func TestTranslateMissingInput(t *testing.T) {
	embedder := newMockEmbedder()
	tr := New(embedder, 10, nil)

	resp, err := tr.Translate(context.Background(), models.EmbeddingsRequest{})
	require.NoError(t, err)

	require.Empty(t, embedder.batches)
	require.Len(t, resp.Data, 0)
}

func TestTranslateInvalidInput(t *testing.T) {
	embedder := newMockEmbedder()
	tr := New(embedder, 10, nil)

	_, err := tr.Translate(context.Background(), models.EmbeddingsRequest{Input: json.RawMessage(`{"nested": true}`)})
	require.ErrorIs(t, err, models.ErrInvalidInput)
	require.Empty(t, embedder.batches)
}

func TestTranslateIdempotent(t *testing.T) {
	texts := []string{"alpha", "beta", "gamma"}

	embedder := newMockEmbedder()
	tr := New(embedder, 10, nil)

	first, err := tr.Translate(context.Background(), models.EmbeddingsRequest{Input: rawInput(t, texts)})
	require.NoError(t, err)
	second, err := tr.Translate(context.Background(), models.EmbeddingsRequest{Input: rawInput(t, texts)})
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, firstJSON, secondJSON)
}
