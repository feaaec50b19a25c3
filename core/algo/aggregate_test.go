package algo

import (
	"math"
	"testing"

	"github.com/huangsam/statweights/schema"
	"github.com/stretchr/testify/assert"
)

func epMetric(values map[schema.UnitStat]float64) schema.MetricResult {
	var m schema.MetricResult
	for s, v := range values {
		m.EPValues[s] = v
		m.Weights[s] = v * 10
	}
	return m
}

func TestAggregateSingleMetricScenario(t *testing.T) {
	result := schema.StatWeightsResult{
		schema.DPSMetric: epMetric(map[schema.UnitStat]float64{schema.StatAgility: 3}),
	}
	got := Aggregate(result, schema.EPRatios{1, 0, 0, 0, 0, 0}, schema.EPStatsType)
	assert.Equal(t, schema.StatVector{}.With(schema.StatAgility, 3), got)
}

func TestAggregateZeroRatios(t *testing.T) {
	result := schema.StatWeightsResult{
		schema.DPSMetric: epMetric(map[schema.UnitStat]float64{schema.StatAgility: 3}),
		schema.TPSMetric: epMetric(map[schema.UnitStat]float64{schema.StatStrength: 1.5}),
		schema.TMIMetric: epMetric(map[schema.UnitStat]float64{schema.StatDefense: -2}),
	}
	assert.True(t, Aggregate(result, schema.EPRatios{}, schema.EPStatsType).IsZero())
	assert.True(t, Aggregate(result, schema.EPRatios{}, schema.WeightStatsType).IsZero())
}

func TestAggregateIdentityRatio(t *testing.T) {
	for i, kind := range schema.AllMetricKinds {
		t.Run(string(kind), func(t *testing.T) {
			m := epMetric(map[schema.UnitStat]float64{schema.StatStamina: 1.25, schema.StatArmor: 0.5})
			result := schema.StatWeightsResult{kind: m}
			var ratios schema.EPRatios
			ratios[i] = 1
			assert.Equal(t, m.EPValues, Aggregate(result, ratios, schema.EPStatsType))
			assert.Equal(t, m.Weights, Aggregate(result, ratios, schema.WeightStatsType))
		})
	}
}

func TestAggregateAbsentMetricsContributeNothing(t *testing.T) {
	result := schema.StatWeightsResult{
		schema.HPSMetric: epMetric(map[schema.UnitStat]float64{schema.StatSpirit: 2}),
	}
	got := Aggregate(result, schema.EPRatios{5, 1, 5, 5, 5, 5}, schema.EPStatsType)
	assert.Equal(t, schema.StatVector{}.With(schema.StatSpirit, 2), got)
	assert.True(t, Aggregate(nil, schema.EPRatios{1, 1, 1, 1, 1, 1}, schema.EPStatsType).IsZero())
}

func TestAggregateWeightedSum(t *testing.T) {
	result := schema.StatWeightsResult{
		schema.DPSMetric:    epMetric(map[schema.UnitStat]float64{schema.StatAgility: 2}),
		schema.TPSMetric:    epMetric(map[schema.UnitStat]float64{schema.StatAgility: 4}),
		schema.PDeathMetric: epMetric(map[schema.UnitStat]float64{schema.StatAgility: -1}),
	}
	ratios := schema.EPRatios{1, 0, 0.5, 0, 0, 2}
	got := Aggregate(result, ratios, schema.EPStatsType)
	assert.InDelta(t, 2.0, got[schema.StatAgility], 1e-12)
	assert.InDelta(t, 2.0, ScaledValue(schema.StatAgility, ratios, result), 1e-12)
	assert.Equal(t, 0.0, ScaledValue(schema.StatStrength, ratios, result))
}

func TestCompareDelta(t *testing.T) {
	tests := []struct {
		name           string
		total, current float64
		want           schema.DeltaDirection
	}{
		{"increase", 1.5, 1.0, schema.DeltaIncrease},
		{"decrease", 0.5, 1.0, schema.DeltaDecrease},
		{"equal", 2, 2, schema.DeltaNeutral},
		{"below precision up", 1.004, 1.0, schema.DeltaNeutral},
		{"below precision down", 0.996, 1.0, schema.DeltaNeutral},
		{"rounds up to a cent", 1.006, 1.0, schema.DeltaIncrease},
		{"nan", math.NaN(), 1.0, schema.DeltaNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareDelta(tt.total, tt.current))
		})
	}
}

func TestStDevToConf90(t *testing.T) {
	assert.InDelta(t, 1.645, StDevToConf90(1, 1), 1e-12)
	assert.InDelta(t, 1.645*2/10, StDevToConf90(2, 100), 1e-12)
	assert.Equal(t, StDevToConf90(3, 1), StDevToConf90(3, 0))
	assert.Equal(t, 0.0, StDevToConf90(0, 1000))
}
