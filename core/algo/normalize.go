// Package algo holds the pure stat-weight math: EP normalization, ratio
// aggregation and confidence conversion.
package algo

import "github.com/huangsam/statweights/schema"

// Normalize returns a copy of result whose EP vectors are expressed relative
// to ref. A zero reference weight (or stdev) saturates the corresponding EP
// vector to zero instead of producing NaN or Inf.
func Normalize(result schema.MetricResult, ref schema.UnitStat) schema.MetricResult {
	refWeight := result.Weights.Get(ref)
	refStdev := result.WeightsStdev.Get(ref)

	out := result
	out.EPValues = ratioTo(result.Weights, refWeight)
	out.EPValuesStdev = ratioTo(result.WeightsStdev, refStdev)
	return out
}

// ratioTo divides every slot by denom, or returns the zero vector when denom is 0.
func ratioTo(v schema.StatVector, denom float64) schema.StatVector {
	if denom == 0 {
		return schema.StatVector{}
	}
	// Divide rather than scale by 1/denom so the reference slot is exactly 1.
	var out schema.StatVector
	for i, value := range v {
		out[i] = value / denom
	}
	return out
}

// NormalizeAll normalizes every applicable metric of result with the
// reference stat that refFor picks for the metric's group. The input is not modified.
func NormalizeAll(result schema.StatWeightsResult, refFor func(schema.ReferenceGroup) schema.UnitStat) schema.StatWeightsResult {
	if result == nil {
		return nil
	}
	out := make(schema.StatWeightsResult, len(result))
	for kind, metric := range result {
		out[kind] = Normalize(metric, refFor(kind.Group()))
	}
	return out
}
