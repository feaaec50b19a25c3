package engine

import (
	"context"

	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
	"github.com/stretchr/testify/mock"
)

// MockEngine is a mock implementation of contract.Engine for testing.
type MockEngine struct {
	mock.Mock
}

var _ contract.Engine = &MockEngine{} // Compile-time check

// ComputeStatWeights implements the contract.Engine interface.
func (m *MockEngine) ComputeStatWeights(ctx context.Context, req schema.StatWeightsRequest, onProgress func(schema.ProgressMetrics)) (*schema.StatWeightsResult, error) {
	args := m.Called(ctx, req, onProgress)
	result, _ := args.Get(0).(*schema.StatWeightsResult)
	return result, args.Error(1)
}

// AbortType implements the contract.Engine interface.
func (m *MockEngine) AbortType(ctx context.Context, requestType schema.RequestType) error {
	args := m.Called(ctx, requestType)
	return args.Error(0)
}
