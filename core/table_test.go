package core

import (
	"testing"

	"github.com/huangsam/statweights/core/algo"
	"github.com/huangsam/statweights/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowStats(table schema.WeightsTable) []schema.UnitStat {
	var out []schema.UnitStat
	for _, r := range table.Rows {
		out = append(out, r.Stat)
	}
	return out
}

func TestBuildWeightsTableWithoutResult(t *testing.T) {
	s := NewSession(testConfig())
	table := BuildWeightsTable(s, false, "")

	assert.False(t, table.HasResult)
	assert.Equal(t, schema.EPStatsType, table.StatsType)
	assert.Equal(t, []schema.UnitStat{schema.StatStrength, schema.StatAgility, schema.StatAttackPower, schema.PseudoStatMainHandDps}, rowStats(table))
	for _, row := range table.Rows {
		assert.Equal(t, schema.DeltaNeutral, row.Delta)
		require.Len(t, row.Metrics, schema.NumMetricKinds)
		for _, c := range row.Metrics {
			assert.True(t, c.NotApplicable)
		}
	}
	require.Len(t, table.References, 3)
	assert.Equal(t, schema.StatArmor, table.References[2].Stat)
	assert.False(t, table.References[2].Explicit)
}

func TestBuildWeightsTableShowAll(t *testing.T) {
	s := NewSession(testConfig())
	table := BuildWeightsTable(s, true, schema.WeightStatsType)
	assert.Len(t, table.Rows, schema.NumStats+1, "all primary stats plus the one measured pseudo stat")
	assert.Equal(t, schema.WeightStatsType, table.StatsType)
	assert.NotContains(t, rowStats(table), schema.PseudoStatOffHandDps)
}

func TestBuildWeightsTableCells(t *testing.T) {
	s := NewSession(testConfig())
	s.StoreResult(rawResult(), 100)
	require.NoError(t, s.SetEPRatios(schema.EPRatios{1, 0, 0, 0, 0, 0}))

	table := BuildWeightsTable(s, false, schema.EPStatsType)
	require.True(t, table.HasResult)
	assert.Equal(t, 100, table.Iterations)
	assert.Equal(t, 2.5, table.AggregatedEP[schema.StatAgility])
	assert.Equal(t, 25.0, table.AggregatedWeights[schema.StatAgility])

	var agility schema.WeightsRow
	for _, r := range table.Rows {
		if r.Stat == schema.StatAgility {
			agility = r
		}
	}
	assert.Equal(t, "Agility", agility.Name)
	assert.Equal(t, 2.5, agility.Total)
	assert.Equal(t, 1.5, agility.Current)
	assert.Equal(t, schema.DeltaIncrease, agility.Delta)

	dps, ok := agility.Cell(schema.DPSMetric)
	require.True(t, ok)
	assert.False(t, dps.NotApplicable)
	assert.Equal(t, 25.0, dps.Weight.Value)
	assert.Equal(t, 2.5, dps.EP.Value)
	assert.InDelta(t, algo.StDevToConf90(4, 100), dps.Weight.Conf90, 1e-12)
	assert.InDelta(t, algo.StDevToConf90(2, 100), dps.EP.Conf90, 1e-12)
	assert.False(t, dps.Weight.Unused)
	assert.Equal(t, schema.DeltaIncrease, dps.Delta)

	dtps, ok := agility.Cell(schema.DTPSMetric)
	require.True(t, ok)
	assert.True(t, dtps.Weight.Unused)
	assert.True(t, dtps.EP.Unused)
	assert.Equal(t, schema.DeltaNeutral, dtps.Delta, "unused columns are not highlighted")

	hps, ok := agility.Cell(schema.HPSMetric)
	require.True(t, ok)
	assert.True(t, hps.NotApplicable)
}

func TestBuildWeightsTableDeltaDirection(t *testing.T) {
	s := NewSession(testConfig())
	s.StoreResult(rawResult(), 100)
	s.SetActiveWeight(schema.StatAgility, 3)
	s.SetActiveWeight(schema.StatAttackPower, 1.004)

	table := BuildWeightsTable(s, false, schema.EPStatsType)
	for _, r := range table.Rows {
		switch r.Stat {
		case schema.StatAgility:
			assert.Equal(t, schema.DeltaDecrease, r.Delta)
		case schema.StatAttackPower:
			assert.Equal(t, schema.DeltaNeutral, r.Delta)
		}
	}
}
