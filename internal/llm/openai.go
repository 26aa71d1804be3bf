package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

const defaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint.
type OpenAIClient struct {
	key      string
	model    string
	endpoint string
	http     *http.Client
}

// NewOpenAIClient creates a client for the given key and model against
// the default endpoint.
func NewOpenAIClient(key, model string) *OpenAIClient {
	return &OpenAIClient{
		key:      key,
		model:    model,
		endpoint: defaultOpenAIEndpoint,
		http:     &http.Client{Timeout: 60 * time.Second},
	}
}

// WithEndpoint points the client at a compatible non-default endpoint.
func (c *OpenAIClient) WithEndpoint(endpoint string) *OpenAIClient {
	c.endpoint = endpoint
	return c
}

// WithTimeout replaces the default 60s per-call timeout.
func (c *OpenAIClient) WithTimeout(d time.Duration) *OpenAIClient {
	c.http.Timeout = d
	return c
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	type chatRequest struct {
		Model       string    `json:"model"`
		Messages    []Message `json:"messages"`
		MaxTokens   int       `json:"max_tokens,omitempty"`
		Temperature float64   `json:"temperature,omitempty"`
	}
	type chatResponse struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	messages := req.Messages
	if req.System != "" {
		messages = append([]Message{{Role: "system", Content: req.System}}, messages...)
	}

	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.key)

	started := time.Now()
	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read completion response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		log.Warn("completion failed", "model", model, "status", res.StatusCode)
		return nil, &StatusError{Code: res.StatusCode, Body: string(body)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	return &Response{
		Content: parsed.Choices[0].Message.Content,
		Model:   parsed.Model,
		Usage: Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		},
		Duration: time.Since(started),
	}, nil
}
