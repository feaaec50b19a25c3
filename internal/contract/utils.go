package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/statweights/schema"
)

// Color variables for console output.
var (
	IncreaseColor = color.New(color.FgGreen, color.Bold) // IncreaseColor marks a stat the aggregate would raise.
	DecreaseColor = color.New(color.FgRed, color.Bold)   // DecreaseColor marks a stat the aggregate would lower.
	UnusedColor   = color.New(color.Faint)               // UnusedColor dims columns whose ratio is zero.
	HeaderColor   = color.New(color.FgCyan)
)

// Delta label constants.
const (
	IncreaseValue = "+"
	DecreaseValue = "-"
	NeutralValue  = ""
)

// GetPlainDeltaLabel returns the plain marker for a delta direction. This is
// the core logic used for CSV, JSON and table printing.
func GetPlainDeltaLabel(dir schema.DeltaDirection) string {
	switch dir {
	case schema.DeltaIncrease:
		return IncreaseValue
	case schema.DeltaDecrease:
		return DecreaseValue
	default:
		return NeutralValue
	}
}

// ColorizeDelta applies the highlight for dir to text.
func ColorizeDelta(text string, dir schema.DeltaDirection) string {
	switch dir {
	case schema.DeltaIncrease:
		return IncreaseColor.Sprint(text)
	case schema.DeltaDecrease:
		return DecreaseColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the engine cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".statweights_cache.db"
	}
	return filepath.Join(homeDir, ".statweights_cache.db")
}

// ParseBoolString parses yes/no style flag values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// ParseMetricColumn parses "metric:statsType" such as "dps:ep" or "p_death:weight".
// The stats type defaults to ep when omitted.
func ParseMetricColumn(s string) (schema.MetricKind, schema.StatsType, error) {
	metricStr, typeStr, found := strings.Cut(strings.TrimSpace(s), ":")
	kind, ok := schema.ParseMetricKind(metricStr)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown metric '%s', must be one of %v", ErrConfiguration, metricStr, schema.AllMetricKinds)
	}
	statsType := schema.EPStatsType
	if found {
		statsType = schema.StatsType(strings.ToLower(strings.TrimSpace(typeStr)))
		if _, ok := schema.ValidStatsTypes[statsType]; !ok {
			return "", "", fmt.Errorf("%w: invalid stats type '%s', must be ep or weight", ErrConfiguration, typeStr)
		}
	}
	return kind, statsType, nil
}
