package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/statweights/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() schema.WeightsTable {
	return schema.WeightsTable{
		StatsType:  schema.EPStatsType,
		HasResult:  true,
		Iterations: 3000,
		Ratios:     schema.EPRatios{1, 0, 0, 0, 0, 0},
		Metrics:    []schema.MetricKind{schema.DPSMetric, schema.HPSMetric},
		Rows: []schema.WeightsRow{
			{
				Stat: schema.StatAttackPower,
				Name: schema.StatAttackPower.Name(),
				Metrics: []schema.MetricCells{
					{Metric: schema.DPSMetric, Weight: schema.WeightCell{Value: 10, Conf90: 0.06}, EP: schema.WeightCell{Value: 1}},
					{Metric: schema.HPSMetric, NotApplicable: true},
				},
				Total:   1,
				Current: 1,
				Delta:   schema.DeltaNeutral,
			},
		},
	}
}

func TestWeightRecordStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(WeightRecord))
	require.NotNil(t, s)

	expectedColumns := []string{
		"export_time", "iterations", "stat", "stat_name", "metric", "ratio",
		"weight", "weight_conf90", "ep", "ep_conf90", "total", "current", "delta",
	}
	for _, colName := range expectedColumns {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestConvertWeightsTable(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	records := ConvertWeightsTable(sampleTable(), now)
	require.Len(t, records, 2)

	dps := records[0]
	assert.Equal(t, "attack_power", dps.Stat)
	assert.Equal(t, "dps", dps.Metric)
	assert.Equal(t, 1.0, dps.Ratio)
	assert.Equal(t, int32(3000), dps.Iterations)
	require.NotNil(t, dps.Weight)
	assert.Equal(t, 10.0, *dps.Weight)
	require.NotNil(t, dps.EP)
	assert.Equal(t, 1.0, *dps.EP)
	assert.Equal(t, "neutral", dps.Delta)

	hps := records[1]
	assert.Equal(t, "hps", hps.Metric)
	assert.Nil(t, hps.Weight, "not applicable metric should be null")
	assert.Nil(t, hps.EP)
}

func TestConvertWeightsTableEmpty(t *testing.T) {
	assert.Empty(t, ConvertWeightsTable(schema.WeightsTable{}, time.Now()))
}

func TestWriteAndReadWeightsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "weights.parquet")
	now := time.Unix(1700000000, 0).UTC()
	data := ConvertWeightsTable(sampleTable(), now)

	require.NoError(t, WriteWeightsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	rows, err := ReadWeightsParquet(outputPath)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "attack_power", rows[0].Stat)
	require.NotNil(t, rows[0].Weight)
	assert.InDelta(t, 10.0, *rows[0].Weight, 1e-9)
	assert.Nil(t, rows[1].Weight)
	assert.True(t, rows[0].ExportTime.Equal(now))
}

func TestWriteWeightsParquetBadPath(t *testing.T) {
	err := WriteWeightsParquet(nil, filepath.Join(t.TempDir(), "missing", "weights.parquet"))
	assert.Error(t, err)
}
