package cmd

import (
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/internal/outwriter"
	"github.com/huangsam/statweights/schema"
	"github.com/spf13/cobra"
)

// statsCmd lists the unit stats accepted by --ep-stats and --reference-stat.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "List the stats that can be measured or used as a reference.",
	Long: `List unit stat keys with their display names.

By default only stats that can be measured for EP are listed. Use
--show-all-stats to include every unit stat.

Examples:
  statweights stats
  statweights stats --show-all-stats --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		stats := schema.EPUnitStats()
		if cfg.ShowAllStats {
			stats = schema.AllUnitStats()
		}
		if err := outwriter.NewOutWriter().WriteStatList(stats, cfg); err != nil {
			contract.LogFatal("Cannot list stats", err)
		}
	},
}
