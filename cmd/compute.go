package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/huangsam/statweights/core"
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/internal/engine"
	"github.com/huangsam/statweights/internal/iocache"
	"github.com/huangsam/statweights/internal/outwriter"
	"github.com/huangsam/statweights/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newController builds the engine, session and controller for the validated config.
func newController() (*core.Controller, error) {
	eng, err := engine.New(cfg, iocache.Manager.GetEngineStore())
	if err != nil {
		return nil, err
	}
	return core.NewController(eng, core.NewSession(cfg)), nil
}

// printProgress rewrites a single stderr line with the engine's progress.
func printProgress(p schema.ProgressMetrics) {
	_, _ = fmt.Fprintf(os.Stderr, "\r⏳ Simulating %d/%d iterations (%d/%d sims)",
		p.CompletedIterations, p.TotalIterations, p.CompletedSims, p.TotalSims)
}

// applyActiveWeights installs the column requested by --copy or --apply.
func applyActiveWeights(session *core.Session, copyColumn, apply string) error {
	if copyColumn != "" && apply != "" {
		return fmt.Errorf("%w: --copy and --apply cannot be combined", contract.ErrConfiguration)
	}
	if copyColumn != "" {
		kind, statsType, err := contract.ParseMetricColumn(copyColumn)
		if err != nil {
			return err
		}
		return session.CopyColumn(kind, statsType)
	}
	if apply != "" {
		statsType := schema.StatsType(strings.ToLower(strings.TrimSpace(apply)))
		if _, ok := schema.ValidStatsTypes[statsType]; !ok {
			return fmt.Errorf("%w: invalid --apply value '%s', must be ep or weight", contract.ErrConfiguration, apply)
		}
		return session.ApplyAggregate(statsType)
	}
	return nil
}

// runCompute executes one request. An interrupt hides the run instead of killing the process.
func runCompute(ctx context.Context) error {
	ctrl, err := newController()
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCtx.Done():
			if ctx.Err() == nil {
				_, _ = fmt.Fprintln(os.Stderr, "\n🛑 Aborting stat weights request...")
				ctrl.Hide(ctx)
			}
		case <-done:
		}
	}()

	_, _ = fmt.Fprintf(os.Stderr, "🧮 Computing stat weights with %d iterations...\n", cfg.Iterations)
	outcome, err := ctrl.Compute(ctx, printProgress)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}
	if outcome == core.OutcomeAborted {
		_, _ = fmt.Fprintln(os.Stderr, "⚠️  Stat weights request aborted, no result recorded.")
		return nil
	}

	session := ctrl.Session()
	unsubscribe := session.WeightsChanged.Subscribe(func() {
		_, _ = fmt.Fprintln(os.Stderr, "✅ Active weights updated.")
	})
	defer unsubscribe()
	if err := applyActiveWeights(session, viper.GetString("copy"), viper.GetString("apply")); err != nil {
		return err
	}
	table := core.BuildWeightsTable(session, cfg.ShowAllStats, cfg.StatsType)
	return outwriter.NewOutWriter().WriteWeightsTable(table, cfg)
}

// computeCmd runs the engine once and prints the EP table.
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Run a stat weights simulation and print the EP table.",
	Long: `Run one stat weights request against the simulator and print the result.

Each metric column is normalized so the reference stat is worth 1 EP, then
the columns are blended with --ep-ratios into the Total column.

Only one request runs at a time. Pressing Ctrl-C aborts the request rather
than killing the process.

Examples:
  # Simulate with a local binary
  statweights compute --engine-path ./wowsimcli --sim-config character.json

  # Replay a recorded result and weight DPS and HPS equally
  statweights compute --result-file result.json --ep-ratios 1,1,0,0,0,0

  # Use the DPS EP column as the new active weights
  statweights compute --result-file result.json --copy dps:ep

  # Export the table to Excel
  statweights compute --result-file result.json --output xlsx --output-file weights.xlsx`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runCompute(rootCtx); err != nil {
			contract.LogFatal("Cannot compute stat weights", err)
		}
	},
}
