package llm

import "context"

type GenerationParams struct {
	Temperature *float32 `json:"temperature"`
	TopP        *float32 `json:"top_p"`
	MaxTokens   *int     `json:"max_tokens"`
	Stop        []string `json:"stop"`
	// JSONObject asks the backend to constrain output to a single JSON
	// object, for callers that parse the response strictly.
	JSONObject bool `json:"json_object"`
}

// LLMClient defines the standard interface for any LLM backend
type LLMClient interface {
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
	// Model reports the backend model identifier, for health/status surfaces.
	Model() string
}
