package outwriter

import (
	"os"

	"github.com/huangsam/statweights/internal/contract"
	"golang.org/x/term"
)

// Approximate rendered widths of the text table columns, borders included.
const (
	statColumnWidth    = 24
	summaryColumnWidth = 30 // Total + Current + Δ
	valueColumnWidth   = 10
	conf90ColumnWidth  = 8 // the " ± x.xx" suffix
)

// getTerminalWidth returns the width override from config, the detected
// terminal width, or a conservative 80 columns.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detected
}

// showConfidence reports whether metricCount value columns still fit when
// each carries its 90% confidence suffix.
func showConfidence(cfg *contract.Config, metricCount int) bool {
	need := statColumnWidth + summaryColumnWidth + metricCount*(valueColumnWidth+conf90ColumnWidth)
	return getTerminalWidth(cfg) >= need
}
