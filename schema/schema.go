// Package schema has the models, enums and render models shared by all parts of statweights.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// MetricResult is one metric's sensitivity output. EPValues and EPValuesStdev
// are only meaningful after a normalization pass.
type MetricResult struct {
	Weights       StatVector `json:"weights"`
	WeightsStdev  StatVector `json:"weights_stdev"`
	EPValues      StatVector `json:"ep_values"`
	EPValuesStdev StatVector `json:"ep_values_stdev"`
}

// Values returns the weight or EP vector depending on statsType.
func (m MetricResult) Values(statsType StatsType) StatVector {
	if statsType == WeightStatsType {
		return m.Weights
	}
	return m.EPValues
}

// Stdevs returns the stdev vector that pairs with Values.
func (m MetricResult) Stdevs(statsType StatsType) StatVector {
	if statsType == WeightStatsType {
		return m.WeightsStdev
	}
	return m.EPValuesStdev
}

// StatWeightsResult holds the metrics a run produced. A missing key means the
// metric does not apply to the simulated configuration.
type StatWeightsResult map[MetricKind]MetricResult

// Get returns the metric and whether it applies.
func (r StatWeightsResult) Get(kind MetricKind) (MetricResult, bool) {
	m, ok := r[kind]
	return m, ok
}

// Clone returns an independent copy of r.
func (r StatWeightsResult) Clone() StatWeightsResult {
	if r == nil {
		return nil
	}
	out := make(StatWeightsResult, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// UnmarshalJSON decodes an object keyed by metric name and rejects metrics
// outside AllMetricKinds.
func (r *StatWeightsResult) UnmarshalJSON(data []byte) error {
	var raw map[string]MetricResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stat weights result: %w", err)
	}
	if raw == nil {
		*r = nil
		return nil
	}
	out := make(StatWeightsResult, len(raw))
	for key, metric := range raw {
		kind, ok := ParseMetricKind(key)
		if !ok {
			return fmt.Errorf("stat weights result: unknown metric '%s' (expected one of %s)", key, metricKindList())
		}
		out[kind] = metric
	}
	*r = out
	return nil
}

func metricKindList() string {
	names := make([]string, len(AllMetricKinds))
	for i, kind := range AllMetricKinds {
		names[i] = string(kind)
	}
	return strings.Join(names, ", ")
}

// Kinds returns the applicable metrics in ratio order.
func (r StatWeightsResult) Kinds() []MetricKind {
	var out []MetricKind
	for _, kind := range AllMetricKinds {
		if _, ok := r[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}

// EPRatios weights each metric's contribution to the aggregate, in AllMetricKinds order.
type EPRatios [NumMetricKinds]float64

// Get returns the ratio for kind, or 0 for an unknown metric.
func (r EPRatios) Get(kind MetricKind) float64 {
	i := kind.Index()
	if i < 0 {
		return 0
	}
	return r[i]
}

// Validate rejects NaN and infinite ratios.
func (r EPRatios) Validate() error {
	for i, v := range r {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("ratio for %s must be finite (received %v)", AllMetricKinds[i], v)
		}
	}
	return nil
}

// EPRatiosFromSlice converts a slice of exactly NumMetricKinds values.
func EPRatiosFromSlice(values []float64) (EPRatios, error) {
	var r EPRatios
	if len(values) != NumMetricKinds {
		return r, fmt.Errorf("expected %d ratios (%v), received %d", NumMetricKinds, AllMetricKinds, len(values))
	}
	copy(r[:], values)
	return r, r.Validate()
}

// ProgressMetrics reports how far an engine run has progressed.
type ProgressMetrics struct {
	CompletedIterations int `json:"completed_iterations"`
	TotalIterations     int `json:"total_iterations"`
	CompletedSims       int `json:"completed_sims"`
	TotalSims           int `json:"total_sims"`
}

// Regressed reports whether next moves either counter backwards from p.
func (p ProgressMetrics) Regressed(next ProgressMetrics) bool {
	return next.CompletedIterations < p.CompletedIterations || next.CompletedSims < p.CompletedSims
}

// StatWeightsRequest is what the engine receives for one stat-weights run.
type StatWeightsRequest struct {
	RequestID     string          `json:"request_id"`
	EPStats       []UnitStat      `json:"ep_stats"`
	ReferenceStat UnitStat        `json:"reference_stat"`
	Iterations    int             `json:"iterations"`
	SimConfig     json.RawMessage `json:"sim_config,omitempty"`
}
