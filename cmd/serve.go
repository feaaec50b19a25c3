package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/statweights/internal/httpapi"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd exposes one session over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stat weights session over an HTTP API",
	Long: `Start an HTTP server that drives one stat weights session.

Routes:
  GET  /weights               current EP table
  GET  /status                controller state and last progress
  POST /compute               start a request (asynchronous)
  POST /abort                 abort the in-flight request
  PUT  /ratios                update EP ratios
  PUT  /reference/{group}     set or clear a reference stat
  POST /active/copy           copy one metric column into active weights
  POST /active/aggregate      install the aggregated column
  POST /active/restore        restore default weights

Examples:
  statweights serve --engine-path ./wowsimcli --addr 127.0.0.1:8080`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctrl, err := newController()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		unsubscribe := ctrl.Changed.Subscribe(func() {
			_, _ = fmt.Fprintf(os.Stderr, "🔄 Controller state: %s\n", ctrl.State())
		})
		defer unsubscribe()

		addr := viper.GetString("addr")
		_, _ = fmt.Fprintf(os.Stderr, "🌐 Serving stat weights API on http://%s\n", addr)
		return httpapi.NewServer(cfg, ctrl).ListenAndServe(ctx, addr)
	},
}
