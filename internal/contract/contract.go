// Package contract provides interfaces and shared utilities for the statweights internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/statweights/schema"
)

// Engine is the external simulation engine that produces raw stat weights.
// This allows the controller to be tested without a simulator binary.
type Engine interface {
	// ComputeStatWeights runs one stat-weights request. A nil result with a nil
	// error means the run produced nothing, usually because it was cancelled.
	ComputeStatWeights(ctx context.Context, req schema.StatWeightsRequest, onProgress func(schema.ProgressMetrics)) (*schema.StatWeightsResult, error)

	// AbortType cancels every in-flight request of the given type.
	AbortType(ctx context.Context, requestType schema.RequestType) error
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetEngineStore() CacheStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}
