package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"llmbroker/internal/port"
)

// MockChatTransport is a mock implementation of port.ChatTransport.
type MockChatTransport struct {
	mock.Mock
}

func (m *MockChatTransport) Complete(ctx context.Context, req port.ChatRequest) ([]byte, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
