// Package outwriter renders weights tables and stat lists in every output mode.
package outwriter

import (
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteWeightsTable prints the EP table using the configured output format.
func (ow *OutWriter) WriteWeightsTable(table schema.WeightsTable, cfg *contract.Config) error {
	return WriteWeightsTable(table, cfg)
}

// WriteStatList prints the unit stat catalog using the configured output format.
func (ow *OutWriter) WriteStatList(stats []schema.UnitStat, cfg *contract.Config) error {
	return WriteStatList(stats, cfg)
}
