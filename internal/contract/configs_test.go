package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/statweights/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Precision:    2,
		Output:       "text",
		Color:        "yes",
		CacheBackend: "none",
		Iterations:   1000,
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{"valid minimal config", func(*ConfigRawInput) {}, false},
		{"invalid output", func(in *ConfigRawInput) { in.Output = "html" }, true},
		{"xlsx without file", func(in *ConfigRawInput) { in.Output = "xlsx" }, true},
		{"xlsx with file", func(in *ConfigRawInput) { in.Output = "xlsx"; in.OutputFile = "w.xlsx" }, false},
		{"invalid precision", func(in *ConfigRawInput) { in.Precision = 9 }, true},
		{"invalid color", func(in *ConfigRawInput) { in.Color = "maybe" }, true},
		{"invalid stats type", func(in *ConfigRawInput) { in.StatsType = "raw" }, true},
		{"invalid backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }, true},
		{"mysql without dsn", func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, true},
		{"short ratios", func(in *ConfigRawInput) { in.EPRatios = []string{"1", "0"} }, true},
		{"nan ratio", func(in *ConfigRawInput) { in.EPRatios = []string{"1", "0", "0", "0", "0", "NaN"} }, true},
		{"bad ratio", func(in *ConfigRawInput) { in.EPRatios = []string{"1", "x", "0", "0", "0", "0"} }, true},
		{"unknown reference", func(in *ConfigRawInput) { in.ReferenceStat = "luck" }, true},
		{"unknown tank reference", func(in *ConfigRawInput) { in.TankRefStat = "luck" }, true},
		{"non-ep stat", func(in *ConfigRawInput) { in.EPStats = []string{"school_hit_fire"} }, true},
		{"unknown weight key", func(in *ConfigRawInput) { in.DefaultWeights = map[string]float64{"luck": 1} }, true},
		{"zero iterations", func(in *ConfigRawInput) { in.Iterations = 0 }, true},
		{"missing sim config", func(in *ConfigRawInput) { in.SimConfig = "/does/not/exist.json" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRawInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfiguration)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validRawInput()))

	assert.Equal(t, DefaultEPRatios, cfg.EPRatios)
	assert.Equal(t, schema.StatAttackPower, cfg.ReferenceStat)
	assert.Nil(t, cfg.DamageRefStat)
	assert.Nil(t, cfg.TankRefStat)
	assert.Len(t, cfg.EPStats, schema.NumStats)
	assert.Equal(t, schema.EPStatsType, cfg.StatsType)
	assert.True(t, cfg.DefaultWeights.IsZero())
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.RefreshCache)
}

func TestProcessAndValidateParsesInputs(t *testing.T) {
	dir := t.TempDir()
	simPath := filepath.Join(dir, "sim.json")
	require.NoError(t, os.WriteFile(simPath, []byte(`{"race":"orc"}`), 0o644))

	input := validRawInput()
	input.EPRatios = []string{"1", "0", " 0.5", "0", "0", "0"}
	input.ReferenceStat = "Spell Power"
	input.HealingRefStat = "healing_power"
	input.EPStats = []string{"intellect", "spell_power", "intellect", "cast_speed_multiplier"}
	input.DefaultWeights = map[string]float64{"intellect": 0.4, "spell_power": 1}
	input.CurrentWeights = map[string]float64{"intellect": 0.6}
	input.EngineArgs = []string{" --quiet", ""}
	input.SimConfig = simPath
	input.Refresh = true

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, schema.EPRatios{1, 0, 0.5, 0, 0, 0}, cfg.EPRatios)
	assert.Equal(t, schema.StatSpellPower, cfg.ReferenceStat)
	require.NotNil(t, cfg.HealingRefStat)
	assert.Equal(t, schema.StatHealingPower, *cfg.HealingRefStat)
	assert.Equal(t, cfg.HealingRefStat, cfg.RefStat(schema.HealingGroup))
	assert.Nil(t, cfg.RefStat(schema.DamageGroup))
	assert.Equal(t, []schema.UnitStat{schema.StatIntellect, schema.StatSpellPower, schema.PseudoStatCastSpeedMultiplier}, cfg.EPStats)
	assert.Equal(t, 1.0, cfg.DefaultWeights[schema.StatSpellPower])
	assert.Equal(t, 0.6, cfg.CurrentWeights[schema.StatIntellect])
	assert.Equal(t, 0.0, cfg.CurrentWeights[schema.StatSpellPower])
	assert.Equal(t, []string{"--quiet"}, cfg.EngineArgs)
	assert.JSONEq(t, `{"race":"orc"}`, string(cfg.SimConfig))
	assert.True(t, cfg.RefreshCache)
}

func TestValidateIterations(t *testing.T) {
	assert.NoError(t, ValidateIterations(1))
	assert.NoError(t, ValidateIterations(MaxIterations))
	assert.Error(t, ValidateIterations(0))
	assert.Error(t, ValidateIterations(-5))
	assert.Error(t, ValidateIterations(MaxIterations+1))
}

func TestConfigClone(t *testing.T) {
	ref := schema.StatArmor
	cfg := &Config{
		EPStats:     []schema.UnitStat{schema.StatAgility},
		EngineArgs:  []string{"-v"},
		TankRefStat: &ref,
		SimConfig:   []byte(`{}`),
	}
	clone := cfg.Clone()
	clone.EPStats[0] = schema.StatStrength
	clone.EngineArgs[0] = "-q"
	*clone.TankRefStat = schema.StatDefense
	clone.SimConfig[0] = '['

	assert.Equal(t, schema.StatAgility, cfg.EPStats[0])
	assert.Equal(t, "-v", cfg.EngineArgs[0])
	assert.Equal(t, schema.StatArmor, *cfg.TankRefStat)
	assert.Equal(t, `{}`, string(cfg.SimConfig))
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		conn    string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none", schema.NoneBackend, "", false},
		{"mysql ok", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/statweights", false},
		{"mysql no tcp", schema.MySQLBackend, "user:pass@localhost/statweights", true},
		{"postgres ok", schema.PostgreSQLBackend, "host=localhost dbname=statweights", false},
		{"postgres no dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
