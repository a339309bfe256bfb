package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"llmbroker/internal/service"
)

// MockBrokerService is a mock implementation of service.BrokerService.
type MockBrokerService struct {
	mock.Mock
}

func (m *MockBrokerService) GetResponse(ctx context.Context, input *service.GetResponseInput) (*service.GetResponseOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GetResponseOutput), args.Error(1)
}

func (m *MockBrokerService) InvalidateCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBrokerService) Schema() *service.Schema {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.Schema)
}

func (m *MockBrokerService) Ready(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
