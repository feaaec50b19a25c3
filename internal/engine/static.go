package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
)

// StaticEngine replays a recorded result file instead of simulating.
type StaticEngine struct {
	path    string
	signals *SignalManager
}

var _ contract.Engine = &StaticEngine{} // Compile-time check

// NewStaticEngine serves the StatWeightsResult JSON stored at path.
func NewStaticEngine(path string) *StaticEngine {
	return &StaticEngine{path: path, signals: NewSignalManager()}
}

// ComputeStatWeights implements the contract.Engine interface.
func (e *StaticEngine) ComputeStatWeights(ctx context.Context, req schema.StatWeightsRequest, onProgress func(schema.ProgressMetrics)) (*schema.StatWeightsResult, error) {
	runCtx, release := e.signals.Register(ctx, schema.StatWeightsRequests)
	defer release()

	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, fmt.Errorf("read result file: %w", err)
	}
	var result schema.StatWeightsResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse result file %s: %w", e.path, err)
	}
	if runCtx.Err() != nil {
		return nil, nil
	}
	if onProgress != nil {
		onProgress(schema.ProgressMetrics{
			CompletedIterations: req.Iterations,
			TotalIterations:     req.Iterations,
			CompletedSims:       1,
			TotalSims:           1,
		})
	}
	return &result, nil
}

// AbortType implements the contract.Engine interface.
func (e *StaticEngine) AbortType(_ context.Context, requestType schema.RequestType) error {
	e.signals.AbortType(requestType)
	return nil
}
