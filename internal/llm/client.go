// Package llm provides the model access layer: a provider-neutral Client
// interface, an operations facade that wires tool callbacks and event
// emission around every call, and typed object extraction on top of raw
// completions.
package llm

import (
	"context"
	"time"
)

// Message is one turn of a chat exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a provider-neutral completion request.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	Tools       []ToolCallback
}

// Usage reports token consumption for one call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is a provider-neutral completion response.
type Response struct {
	Content  string
	Model    string
	Usage    Usage
	Duration time.Duration
}

// Client is the minimal provider contract. Implementations are expected
// to be safe for concurrent use.
type Client interface {
	// Complete runs one completion round trip.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Model returns the model identifier the client targets.
	Model() string
}

// UserMessage builds a single-turn message slice from a prompt.
func UserMessage(prompt string) []Message {
	return []Message{{Role: "user", Content: prompt}}
}
