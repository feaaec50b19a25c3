package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/statweights/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainDeltaLabel(t *testing.T) {
	assert.Equal(t, IncreaseValue, GetPlainDeltaLabel(schema.DeltaIncrease))
	assert.Equal(t, DecreaseValue, GetPlainDeltaLabel(schema.DeltaDecrease))
	assert.Equal(t, NeutralValue, GetPlainDeltaLabel(schema.DeltaNeutral))
}

func TestColorizeDelta(t *testing.T) {
	assert.Contains(t, ColorizeDelta("1.25", schema.DeltaIncrease), "1.25")
	assert.Equal(t, "1.25", ColorizeDelta("1.25", schema.DeltaNeutral))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("sometimes")
	assert.Error(t, err)
}

func TestParseMetricColumn(t *testing.T) {
	kind, st, err := ParseMetricColumn("dps")
	require.NoError(t, err)
	assert.Equal(t, schema.DPSMetric, kind)
	assert.Equal(t, schema.EPStatsType, st)

	kind, st, err = ParseMetricColumn("p_death:Weight")
	require.NoError(t, err)
	assert.Equal(t, schema.PDeathMetric, kind)
	assert.Equal(t, schema.WeightStatsType, st)

	_, _, err = ParseMetricColumn("mps:ep")
	assert.ErrorIs(t, err, ErrConfiguration)
	_, _, err = ParseMetricColumn("dps:raw")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.txt")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, path, f.Name())
}

func TestGetCacheDBFilePath(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetCacheDBFilePath(), ".statweights_cache.db"))
}
