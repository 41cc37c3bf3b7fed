package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// EmbeddingVector is the ordered float sequence the upstream returns for one
// input text. It is opaque to this service and passed through unmodified.
type EmbeddingVector = []float64

// EmbeddingsRequest is the inbound OpenAI-shaped request body. Input is kept
// raw because callers send either a single string or an array of strings.
type EmbeddingsRequest struct {
	Input json.RawMessage `json:"input"`
	Model string          `json:"model,omitempty"`
}

type EmbeddingData struct {
	Embedding EmbeddingVector `json:"embedding"`
	Index     int             `json:"index"`
	Object    string          `json:"object"`
}

type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type EmbeddingsResponse struct {
	Data   []EmbeddingData `json:"data"`
	Model  string          `json:"model"`
	Object string          `json:"object"`
	Usage  Usage           `json:"usage"`
}

var ErrInvalidInput = errors.New("input must be a string or an array of strings")

// ParseInput normalizes the raw input field into an ordered sequence of
// texts. A single string becomes a one-element sequence; an absent or null
// input becomes an empty sequence. Non-string array elements are
// stringified rather than rejected.
func ParseInput(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return []string{str}, nil
	}

	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	var mixed []interface{}
	if err := json.Unmarshal(raw, &mixed); err == nil {
		texts := make([]string, len(mixed))
		for i, item := range mixed {
			if s, ok := item.(string); ok {
				texts[i] = s
			} else {
				texts[i] = fmt.Sprintf("%v", item)
			}
		}
		return texts, nil
	}

	return nil, ErrInvalidInput
}
