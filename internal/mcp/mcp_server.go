// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/statweights/core"
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the stat weights MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, ctrl *core.Controller) *server.MCPServer {
	s := server.NewMCPServer(
		"Stat Weights Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		ctrl:    ctrl,
	}

	metricNames := make([]string, 0, schema.NumMetricKinds)
	for _, kind := range schema.AllMetricKinds {
		metricNames = append(metricNames, string(kind))
	}
	groupNames := make([]string, 0, len(schema.AllReferenceGroups))
	for _, g := range schema.AllReferenceGroups {
		groupNames = append(groupNames, string(g))
	}

	// --- 1. Tool: compute_stat_weights ---
	s.AddTool(mcp.NewTool("compute_stat_weights",
		mcp.WithDescription("Run the simulator for stat weights and return the resulting EP table. Does nothing if a run is already in flight."),
		mcp.WithNumber("iterations", mcp.Description("Iterations for this and later runs. Defaults to the configured count.")),
	), h.handleComputeStatWeights)

	// --- 2. Tool: abort_stat_weights ---
	s.AddTool(mcp.NewTool("abort_stat_weights",
		mcp.WithDescription("Abort the in-flight stat weights run, if any."),
	), h.handleAbortStatWeights)

	// --- 3. Tool: get_weights_table ---
	s.AddTool(mcp.NewTool("get_weights_table",
		mcp.WithDescription("Return the current EP table: per-stat weights and EP values per metric, ratio-weighted totals, active weights and highlights."),
		mcp.WithBoolean("show_all", mcp.Description("Include primary stats that were not measured.")),
		mcp.WithString("stats_type", mcp.Description("Which column writers favor (ep or weight)."), mcp.Enum("ep", "weight")),
	), h.handleGetWeightsTable)

	// --- 4. Tool: set_ep_ratios ---
	ratioOpts := []mcp.ToolOption{
		mcp.WithDescription("Set the EP ratio of one or more metrics. Metrics left out keep their ratio."),
	}
	for _, name := range metricNames {
		ratioOpts = append(ratioOpts, mcp.WithNumber(name, mcp.Description("Ratio for the "+name+" metric.")))
	}
	s.AddTool(mcp.NewTool("set_ep_ratios", ratioOpts...), h.handleSetEPRatios)

	// --- 5. Tool: set_reference_stat ---
	s.AddTool(mcp.NewTool("set_reference_stat",
		mcp.WithDescription("Choose the reference stat of a metric group and re-normalize the last result. An empty stat restores the default."),
		mcp.WithString("group", mcp.Description("Reference group."), mcp.Required(), mcp.Enum(groupNames...)),
		mcp.WithString("stat", mcp.Description("Stat key such as 'attack_power'.")),
	), h.handleSetReferenceStat)

	// --- 6. Tool: copy_column ---
	s.AddTool(mcp.NewTool("copy_column",
		mcp.WithDescription("Copy one metric's weight or EP column into the active weights."),
		mcp.WithString("column", mcp.Description("Column as metric:type, e.g. 'dps:ep' or 'p_death:weight'."), mcp.Required()),
	), h.handleCopyColumn)

	// --- 7. Tool: apply_aggregate ---
	s.AddTool(mcp.NewTool("apply_aggregate",
		mcp.WithDescription("Write the ratio-weighted aggregate of the last result into the active weights."),
		mcp.WithString("stats_type", mcp.Description("Aggregate EP values or raw weights."), mcp.Enum("ep", "weight")),
	), h.handleApplyAggregate)

	// --- 8. Tool: restore_default_weights ---
	s.AddTool(mcp.NewTool("restore_default_weights",
		mcp.WithDescription("Reset the active weights to the configured defaults."),
	), h.handleRestoreDefaultWeights)

	return s
}

// StartMCPServer starts the stat weights MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, ctrl *core.Controller) error {
	s := NewMCPServer(baseCfg, ctrl)
	return server.ServeStdio(s)
}
