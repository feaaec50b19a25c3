//go:build basic

package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFromResultFile(t *testing.T) {
	result := writeResultFixture(t)
	env := map[string]string{"STATWEIGHTS_CACHE_BACKEND": "none"}

	t.Run("text table", func(t *testing.T) {
		out, err := runCommand(t, env, "compute", "--result-file", result, "--ep-stats", "agility,strength,attack_power", "--color", "no")
		require.NoError(t, err)
		assert.Contains(t, out, "Agility")
		assert.Contains(t, out, "2.50")
		assert.Contains(t, out, "EP ratios")
	})

	t.Run("json document", func(t *testing.T) {
		out, err := runCommand(t, env, "compute", "--result-file", result, "--output", "json")
		require.NoError(t, err)
		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		assert.NotEmpty(t, doc)
	})

	t.Run("copy requires an applicable metric", func(t *testing.T) {
		_, err := runCommand(t, env, "compute", "--result-file", result, "--copy", "hps:ep")
		assert.Error(t, err)
	})

	t.Run("missing engine", func(t *testing.T) {
		_, err := runCommand(t, env, "compute")
		assert.Error(t, err)
	})
}

func TestComputeUsesSQLiteCache(t *testing.T) {
	result := writeResultFixture(t)
	env := map[string]string{
		"STATWEIGHTS_CACHE_BACKEND": "sqlite",
		"HOME":                      t.TempDir(),
	}

	_, err := runCommand(t, env, "compute", "--result-file", result)
	require.NoError(t, err)
	_, err = runCommand(t, env, "compute", "--result-file", result)
	require.NoError(t, err)

	out, err := runCommand(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache Backend: sqlite")
	assert.Contains(t, out, "Total Entries: 1")

	_, err = runCommand(t, env, "cache", "clear")
	require.NoError(t, err)
	out, err = runCommand(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Entries: 0")
}

func TestStatsAndVersion(t *testing.T) {
	out, err := runCommand(t, nil, "stats", "--cache-backend", "none")
	require.NoError(t, err)
	assert.Contains(t, out, "attack_power")

	_, err = runCommand(t, nil, "version")
	require.NoError(t, err)
}
