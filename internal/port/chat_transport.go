package port

import (
	"context"

	"llmbroker/internal/domain"
)

// ChatRequest is one system + user exchange sent to a chat completion endpoint.
type ChatRequest struct {
	Model    string
	System   string
	UserText string
	Images   []domain.ImagePart
}

// ChatTransport performs a single chat completion call and returns the raw
// response body. Non-success statuses are errors; there are no retries.
type ChatTransport interface {
	Complete(ctx context.Context, req ChatRequest) ([]byte, error)
}
