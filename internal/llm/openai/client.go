package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"llmbroker/internal/config"
	"llmbroker/internal/llm"
	"llmbroker/internal/port"
)

const (
	apiURL    = "https://api.openai.com/v1/chat/completions"
	userAgent = "llmbroker/1.0"
)

// Client implements port.ChatTransport against an OpenAI-compatible Chat
// Completions endpoint.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates a chat transport from the broker configuration. An empty
// endpoint selects the public OpenAI API.
func NewClient(cfg *config.BrokerConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = apiURL
	}
	return newClient(cfg, endpoint)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.BrokerConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.BrokerConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout()
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Complete posts a single chat completion request and returns the raw
// response body. There is no retry.
func (c *Client) Complete(ctx context.Context, in port.ChatRequest) ([]byte, error) {
	model := in.Model
	if model == "" {
		model = c.model
	}

	reqBody := map[string]interface{}{
		"model": model,
		"messages": []map[string]interface{}{
			{
				"role":    "system",
				"content": in.System,
			},
			{
				"role":    "user",
				"content": buildContentBlocks(in),
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling chat completions API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &llm.StatusError{Provider: "openai", StatusCode: resp.StatusCode, Body: string(respBody)}
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := llm.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, llm.NewRateLimitError("openai", statusErr, retryAfter)
		}
		return nil, statusErr
	}

	return respBody, nil
}

// buildContentBlocks returns one text part followed by an image_url part per image.
func buildContentBlocks(in port.ChatRequest) []map[string]interface{} {
	blocks := []map[string]interface{}{
		{
			"type": "text",
			"text": in.UserText,
		},
	}
	for _, img := range in.Images {
		blocks = append(blocks, map[string]interface{}{
			"type": "image_url",
			"image_url": map[string]interface{}{
				"url": img.DataURI(),
			},
		})
	}
	return blocks
}
