package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/statweights/schema"
)

// Default values for configuration.
const (
	DefaultIterations    = 3000
	MaxIterations        = 1_000_000
	DefaultPrecision     = 2
	MaxPrecision         = 4
	DefaultReferenceStat = "attack_power"
)

// DefaultEPRatios weights DPS only, which matches what most specs care about.
var DefaultEPRatios = schema.EPRatios{1, 0, 0, 0, 0, 0}

// Config holds the runtime configuration for a stat weights session.
// This struct is the "final, validated" config.
type Config struct {
	EPRatios      schema.EPRatios
	ReferenceStat schema.UnitStat

	// Per-group reference overrides; nil falls back to the defaults.
	DamageRefStat  *schema.UnitStat
	HealingRefStat *schema.UnitStat
	TankRefStat    *schema.UnitStat

	EPStats        []schema.UnitStat
	DefaultWeights schema.StatVector
	CurrentWeights schema.StatVector

	Iterations   int
	StatsType    schema.StatsType
	ShowAllStats bool
	Precision    int
	Output       schema.OutputMode
	OutputFile   string
	Width        int // Terminal width override (0 = auto-detect)
	UseColors    bool

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	RefreshCache   bool   // Re-run the engine even when a cached result exists

	EnginePath string
	EngineArgs []string
	SimConfig  json.RawMessage
	ResultFile string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	EPRatios       []string `mapstructure:"ep-ratios"`
	ReferenceStat  string   `mapstructure:"reference-stat"`
	DamageRefStat  string   `mapstructure:"dps-ref-stat"`
	HealingRefStat string   `mapstructure:"heal-ref-stat"`
	TankRefStat    string   `mapstructure:"tank-ref-stat"`
	EPStats        []string `mapstructure:"ep-stats"`
	StatsType      string   `mapstructure:"stats-type"`
	ShowAllStats   bool     `mapstructure:"show-all-stats"`
	Precision      int      `mapstructure:"precision"`
	Output         string   `mapstructure:"output"`
	OutputFile     string   `mapstructure:"output-file"`
	Width          int      `mapstructure:"width"`
	Color          string   `mapstructure:"color"`
	CacheBackend   string   `mapstructure:"cache-backend"`
	CacheDBConnect string   `mapstructure:"cache-db-connect"`
	Refresh        bool     `mapstructure:"refresh"`

	// --- Fields from computeCmd.Flags() ---
	Iterations int      `mapstructure:"iterations"`
	EnginePath string   `mapstructure:"engine-path"`
	EngineArgs []string `mapstructure:"engine-args"`
	SimConfig  string   `mapstructure:"sim-config"`
	ResultFile string   `mapstructure:"result-file"`

	// --- Weight vectors from config file ---
	DefaultWeights map[string]float64 `mapstructure:"default-weights"`
	CurrentWeights map[string]float64 `mapstructure:"current-weights"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.EPStats != nil {
		clone.EPStats = make([]schema.UnitStat, len(c.EPStats))
		copy(clone.EPStats, c.EPStats)
	}
	if c.EngineArgs != nil {
		clone.EngineArgs = make([]string, len(c.EngineArgs))
		copy(clone.EngineArgs, c.EngineArgs)
	}
	if c.SimConfig != nil {
		clone.SimConfig = append(json.RawMessage(nil), c.SimConfig...)
	}
	clone.DamageRefStat = cloneStat(c.DamageRefStat)
	clone.HealingRefStat = cloneStat(c.HealingRefStat)
	clone.TankRefStat = cloneStat(c.TankRefStat)
	return &clone
}

func cloneStat(s *schema.UnitStat) *schema.UnitStat {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// RefStat returns the explicit reference override for group, or nil.
func (c *Config) RefStat(group schema.ReferenceGroup) *schema.UnitStat {
	switch group {
	case schema.HealingGroup:
		return c.HealingRefStat
	case schema.TankGroup:
		return c.TankRefStat
	default:
		return c.DamageRefStat
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct. Every failure wraps ErrConfiguration.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	steps := []func(*Config, *ConfigRawInput) error{
		validateSimpleInputs,
		processEPRatios,
		processReferenceStats,
		processEPStats,
		processWeightVectors,
		processEngineInputs,
	}
	for _, step := range steps {
		if err := step(cfg, input); err != nil {
			return fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the display and backend fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.ShowAllStats = input.ShowAllStats
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, yaml, xlsx, parquet", input.Output)
	}
	if (cfg.Output == schema.XLSXOut || cfg.Output == schema.ParquetOut) && cfg.OutputFile == "" {
		return fmt.Errorf("%s output requires --output-file", cfg.Output)
	}

	cfg.StatsType = schema.StatsType(strings.ToLower(input.StatsType))
	if cfg.StatsType == "" {
		cfg.StatsType = schema.EPStatsType
	}
	if _, ok := schema.ValidStatsTypes[cfg.StatsType]; !ok {
		return fmt.Errorf("invalid stats type '%s'. must be ep or weight", input.StatsType)
	}

	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	cfg.RefreshCache = input.Refresh
	return ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect)
}

// processEPRatios parses the six metric ratios, falling back to DefaultEPRatios.
func processEPRatios(cfg *Config, input *ConfigRawInput) error {
	if len(input.EPRatios) == 0 {
		cfg.EPRatios = DefaultEPRatios
		return nil
	}
	values := make([]float64, 0, len(input.EPRatios))
	for _, s := range input.EPRatios {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("invalid ep ratio '%s': %w", s, err)
		}
		values = append(values, v)
	}
	ratios, err := schema.EPRatiosFromSlice(values)
	if err != nil {
		return err
	}
	cfg.EPRatios = ratios
	return nil
}

// processReferenceStats resolves the global reference and the per-group overrides.
func processReferenceStats(cfg *Config, input *ConfigRawInput) error {
	refStr := input.ReferenceStat
	if strings.TrimSpace(refStr) == "" {
		refStr = DefaultReferenceStat
	}
	ref, err := schema.ParseUnitStat(refStr)
	if err != nil {
		return fmt.Errorf("invalid reference stat: %w", err)
	}
	cfg.ReferenceStat = ref

	overrides := []struct {
		flag string
		raw  string
		dst  **schema.UnitStat
	}{
		{"dps-ref-stat", input.DamageRefStat, &cfg.DamageRefStat},
		{"heal-ref-stat", input.HealingRefStat, &cfg.HealingRefStat},
		{"tank-ref-stat", input.TankRefStat, &cfg.TankRefStat},
	}
	for _, o := range overrides {
		*o.dst = nil
		if strings.TrimSpace(o.raw) == "" {
			continue
		}
		stat, err := schema.ParseUnitStat(o.raw)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", o.flag, err)
		}
		*o.dst = &stat
	}
	return nil
}

// processEPStats resolves the stats a run measures. Empty means every primary stat.
func processEPStats(cfg *Config, input *ConfigRawInput) error {
	cfg.EPStats = nil
	seen := make(map[schema.UnitStat]bool)
	for _, raw := range input.EPStats {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		stat, err := schema.ParseUnitStat(raw)
		if err != nil {
			return fmt.Errorf("invalid ep stat: %w", err)
		}
		if !stat.IsEP() {
			return fmt.Errorf("stat '%s' cannot be measured for EP", stat.Key())
		}
		if !seen[stat] {
			seen[stat] = true
			cfg.EPStats = append(cfg.EPStats, stat)
		}
	}
	if len(cfg.EPStats) == 0 {
		for i := range schema.NumStats {
			cfg.EPStats = append(cfg.EPStats, schema.UnitStat(i))
		}
	}
	return nil
}

// processWeightVectors parses the default and current weights. Current falls
// back to the defaults when not given.
func processWeightVectors(cfg *Config, input *ConfigRawInput) error {
	defaults, err := schema.StatVectorFromMap(input.DefaultWeights)
	if err != nil {
		return fmt.Errorf("invalid default-weights: %w", err)
	}
	cfg.DefaultWeights = defaults

	cfg.CurrentWeights = defaults
	if len(input.CurrentWeights) > 0 {
		current, err := schema.StatVectorFromMap(input.CurrentWeights)
		if err != nil {
			return fmt.Errorf("invalid current-weights: %w", err)
		}
		cfg.CurrentWeights = current
	}
	return nil
}

// ValidateIterations checks an iteration count against MaxIterations.
func ValidateIterations(n int) error {
	if n <= 0 || n > MaxIterations {
		return fmt.Errorf("iterations must be greater than 0 and cannot exceed %d (received %d)", MaxIterations, n)
	}
	return nil
}

// processEngineInputs validates the engine invocation and loads the sim config file.
func processEngineInputs(cfg *Config, input *ConfigRawInput) error {
	if err := ValidateIterations(input.Iterations); err != nil {
		return err
	}
	cfg.Iterations = input.Iterations
	cfg.EnginePath = strings.TrimSpace(input.EnginePath)
	cfg.EngineArgs = nil
	for _, arg := range input.EngineArgs {
		if arg = strings.TrimSpace(arg); arg != "" {
			cfg.EngineArgs = append(cfg.EngineArgs, arg)
		}
	}
	cfg.ResultFile = strings.TrimSpace(input.ResultFile)

	cfg.SimConfig = nil
	if input.SimConfig != "" {
		data, err := os.ReadFile(input.SimConfig)
		if err != nil {
			return fmt.Errorf("cannot read sim config: %w", err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("sim config %s is not valid JSON", input.SimConfig)
		}
		cfg.SimConfig = data
	}
	return nil
}
