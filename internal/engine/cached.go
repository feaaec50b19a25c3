package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a memoized engine result stays valid.
const cacheTTL = 7 * 24 * time.Hour

// CachedEngine memoizes another engine's results in a cache store.
type CachedEngine struct {
	inner contract.Engine
	store contract.CacheStore
	now   func() time.Time

	// Refresh skips cache reads. Fresh results are still stored.
	Refresh bool
}

var _ contract.Engine = &CachedEngine{} // Compile-time check

// NewCachedEngine wraps inner with store.
func NewCachedEngine(inner contract.Engine, store contract.CacheStore) *CachedEngine {
	return &CachedEngine{inner: inner, store: store, now: time.Now}
}

// ComputeStatWeights implements the contract.Engine interface.
func (e *CachedEngine) ComputeStatWeights(ctx context.Context, req schema.StatWeightsRequest, onProgress func(schema.ProgressMetrics)) (*schema.StatWeightsResult, error) {
	key := generateCacheKey(req)

	if !e.Refresh {
		if result := e.checkCacheHit(key); result != nil {
			if onProgress != nil {
				onProgress(schema.ProgressMetrics{
					CompletedIterations: req.Iterations,
					TotalIterations:     req.Iterations,
					CompletedSims:       1,
					TotalSims:           1,
				})
			}
			return result, nil
		}
	}

	result, err := e.inner.ComputeStatWeights(ctx, req, onProgress)
	if err != nil || result == nil {
		return result, err
	}
	if data, err := json.Marshal(result); err == nil {
		if err := e.store.Set(key, data, currentCacheVersion, e.now().Unix()); err != nil {
			contract.LogWarn("Cannot store engine result", err)
		}
	}
	return result, nil
}

// AbortType implements the contract.Engine interface.
func (e *CachedEngine) AbortType(ctx context.Context, requestType schema.RequestType) error {
	return e.inner.AbortType(ctx, requestType)
}

// checkCacheHit attempts to retrieve and validate a cached result
func (e *CachedEngine) checkCacheHit(key string) *schema.StatWeightsResult {
	data, version, ts, err := e.store.Get(key)
	if err != nil {
		return nil // Cache miss
	}
	if version != currentCacheVersion || e.now().Sub(time.Unix(ts, 0)) > cacheTTL {
		return nil // Stale or version mismatch
	}
	var result schema.StatWeightsResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// generateCacheKey hashes everything that influences the result. The request
// ID is excluded so identical requests share an entry.
func generateCacheKey(req schema.StatWeightsRequest) string {
	req.RequestID = ""
	data, err := json.Marshal(req)
	if err != nil {
		data = fmt.Appendf(nil, "%v", req)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
