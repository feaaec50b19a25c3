package algo

import (
	"math"

	"github.com/huangsam/statweights/schema"
	"github.com/montanaflynn/stats"
)

// deltaPrecision is the number of decimals a delta is rounded to before its sign is read.
const deltaPrecision = 2

// Aggregate combines the applicable metrics of result into one vector,
// scaling each metric's EP (or weight) vector by its ratio. Missing metrics
// contribute nothing. The returned vector is new; inputs are untouched.
func Aggregate(result schema.StatWeightsResult, ratios schema.EPRatios, statsType schema.StatsType) schema.StatVector {
	var combined schema.StatVector
	for i, kind := range schema.AllMetricKinds {
		metric, ok := result.Get(kind)
		if !ok {
			continue
		}
		combined = combined.Add(metric.Values(statsType).Scale(ratios[i]))
	}
	return combined
}

// ScaledValue is the ratio-weighted EP sum for a single stat.
func ScaledValue(stat schema.UnitStat, ratios schema.EPRatios, result schema.StatWeightsResult) float64 {
	var total float64
	for i, kind := range schema.AllMetricKinds {
		if metric, ok := result.Get(kind); ok {
			total += ratios[i] * metric.EPValues.Get(stat)
		}
	}
	return total
}

// CompareDelta reports whether total moves the current weight up or down
// once the difference is rounded to two decimals.
func CompareDelta(total, current float64) schema.DeltaDirection {
	delta := total - current
	rounded, err := stats.Round(delta, deltaPrecision)
	if err != nil || math.IsNaN(rounded) {
		return schema.DeltaNeutral
	}
	switch {
	case rounded > 0:
		return schema.DeltaIncrease
	case rounded < 0:
		return schema.DeltaDecrease
	default:
		return schema.DeltaNeutral
	}
}
