// Package cmd defines the command-line interface for statweights.
package cmd

import (
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(computeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringSlice("ep-ratios", nil, "Comma-separated ratios for dps,hps,tps,dtps,tmi,p_death")
	rootCmd.PersistentFlags().String("reference-stat", contract.DefaultReferenceStat, "Stat that every EP value is measured against")
	rootCmd.PersistentFlags().String("dps-ref-stat", "", "Reference stat override for damage metrics")
	rootCmd.PersistentFlags().String("heal-ref-stat", "", "Reference stat override for healing metrics")
	rootCmd.PersistentFlags().String("tank-ref-stat", "", "Reference stat override for tank metrics (default armor)")
	rootCmd.PersistentFlags().StringSlice("ep-stats", nil, "Comma-separated stats to measure (default: every primary stat)")
	rootCmd.PersistentFlags().String("stats-type", string(schema.EPStatsType), "Column type to aggregate or copy: ep or weight")
	rootCmd.PersistentFlags().Bool("show-all-stats", false, "Show every primary stat, even ones not measured")
	rootCmd.PersistentFlags().Int("iterations", contract.DefaultIterations, "Simulation iterations per run")
	rootCmd.PersistentFlags().String("engine-path", "", "Path to the simulator binary")
	rootCmd.PersistentFlags().StringSlice("engine-args", nil, "Extra arguments passed to the simulator")
	rootCmd.PersistentFlags().String("sim-config", "", "Path to the JSON character config sent with each request")
	rootCmd.PersistentFlags().String("result-file", "", "Replay a recorded result JSON instead of running the simulator")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or yaml or xlsx or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().Bool("refresh", false, "Ignore cached engine results and re-run the simulator (fresh results are still cached)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of computeCmd to Viper
	computeCmd.Flags().String("apply", "", "Install the aggregated column as active weights: ep or weight")
	computeCmd.Flags().String("copy", "", "Install one metric column as active weights (format: 'dps:ep')")
	if err := viper.BindPFlags(computeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compute flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Address the HTTP API listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache migrate flags", err)
	}
}
