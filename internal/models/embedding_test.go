package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "single string", raw: `"hello world"`, want: []string{"hello world"}},
		{name: "empty string", raw: `""`, want: []string{""}},
		{name: "array", raw: `["a", "b", "c"]`, want: []string{"a", "b", "c"}},
		{name: "empty array", raw: `[]`, want: []string{}},
		{name: "null", raw: `null`, want: nil},
		{name: "absent", raw: ``, want: nil},
		{name: "mixed array stringified", raw: `["a", 42, true]`, want: []string{"a", "42", "true"}},
		{name: "object rejected", raw: `{"text": "a"}`, wantErr: true},
		{name: "number rejected", raw: `42`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var raw json.RawMessage
			if tt.raw != "" {
				raw = json.RawMessage(tt.raw)
			}

			got, err := ParseInput(raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				require.Empty(t, got)
			} else {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEmbeddingsResponseJSONShape(t *testing.T) {
	resp := EmbeddingsResponse{
		Data: []EmbeddingData{
			{Embedding: EmbeddingVector{0.1, 0.2}, Index: 0, Object: "embedding"},
		},
		Model:  "ovh-embeddings",
		Object: "list",
		Usage:  Usage{PromptTokens: 2, TotalTokens: 2},
	}

	payload, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.Contains(t, decoded, "data")
	require.Contains(t, decoded, "model")
	require.Contains(t, decoded, "object")
	require.Contains(t, decoded, "usage")

	usage, ok := decoded["usage"].(map[string]interface{})
	require.True(t, ok)
	require.Contains(t, usage, "prompt_tokens")
	require.Contains(t, usage, "total_tokens")
}
