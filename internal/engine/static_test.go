package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeResultFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestStaticEngine(t *testing.T) {
	path := writeResultFile(t, `{"hps":{"weights":{"spell_power":1.5}}}`)
	e := NewStaticEngine(path)

	var got schema.ProgressMetrics
	result, err := e.ComputeStatWeights(context.Background(), schema.StatWeightsRequest{Iterations: 50}, func(p schema.ProgressMetrics) { got = p })
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1.5, (*result)[schema.HPSMetric].Weights[schema.StatSpellPower])
	assert.Equal(t, 50, got.CompletedIterations)
	assert.NoError(t, e.AbortType(context.Background(), schema.AllRequests))
}

func TestStaticEngineCancelled(t *testing.T) {
	e := NewStaticEngine(writeResultFile(t, `{}`))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := e.ComputeStatWeights(ctx, schema.StatWeightsRequest{}, nil)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestStaticEngineBadFile(t *testing.T) {
	_, err := NewStaticEngine(filepath.Join(t.TempDir(), "missing.json")).ComputeStatWeights(context.Background(), schema.StatWeightsRequest{}, nil)
	assert.Error(t, err)

	_, err = NewStaticEngine(writeResultFile(t, `{"dps":{"weights":{"luck":1}}}`)).ComputeStatWeights(context.Background(), schema.StatWeightsRequest{}, nil)
	assert.Error(t, err)

	_, err = NewStaticEngine(writeResultFile(t, `{"mps":{"weights":{"agility":1}}}`)).ComputeStatWeights(context.Background(), schema.StatWeightsRequest{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metric 'mps'")
}

func TestNew(t *testing.T) {
	_, err := New(&contract.Config{}, nil)
	assert.ErrorIs(t, err, contract.ErrConfiguration)

	eng, err := New(&contract.Config{ResultFile: "r.json", EnginePath: "sim"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &StaticEngine{}, eng)

	eng, err = New(&contract.Config{EnginePath: "sim"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ExecEngine{}, eng)

	eng, err = New(&contract.Config{EnginePath: "sim"}, &mockStore{})
	require.NoError(t, err)
	require.IsType(t, &CachedEngine{}, eng)
	assert.False(t, eng.(*CachedEngine).Refresh)

	eng, err = New(&contract.Config{EnginePath: "sim", RefreshCache: true}, &mockStore{})
	require.NoError(t, err)
	assert.True(t, eng.(*CachedEngine).Refresh)
}
