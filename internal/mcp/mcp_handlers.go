package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/statweights/core"
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	ctrl    *core.Controller
}

// computeResponse is returned by compute_stat_weights.
type computeResponse struct {
	Outcome string              `json:"outcome"`
	Table   schema.WeightsTable `json:"table"`
}

func (h *toolHandler) table(request mcp.CallToolRequest) (schema.WeightsTable, error) {
	showAll := request.GetBool("show_all", h.baseCfg.ShowAllStats)
	statsType := schema.StatsType(request.GetString("stats_type", string(h.baseCfg.StatsType)))
	if _, ok := schema.ValidStatsTypes[statsType]; !ok {
		return schema.WeightsTable{}, fmt.Errorf("invalid stats_type '%s', must be ep or weight", statsType)
	}
	return core.BuildWeightsTable(h.ctrl.Session(), showAll, statsType), nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleComputeStatWeights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := request.GetInt("iterations", 0)
	if n != 0 {
		if err := contract.ValidateIterations(n); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid iterations: %v", err)), nil
		}
	}

	outcome, err := h.ctrl.ComputePrepared(ctx, func() {
		if n != 0 {
			_ = h.ctrl.Session().SetIterations(n)
		}
	}, nil)
	if outcome == core.OutcomeFailed {
		return mcp.NewToolResultError(fmt.Sprintf("stat weights run failed: %v", err)), nil
	}
	return jsonResult(computeResponse{
		Outcome: outcome.String(),
		Table:   core.BuildWeightsTable(h.ctrl.Session(), h.baseCfg.ShowAllStats, h.baseCfg.StatsType),
	}), nil
}

func (h *toolHandler) handleAbortStatWeights(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !h.ctrl.Busy() {
		return mcp.NewToolResultText("no stat weights run in flight"), nil
	}
	if err := h.ctrl.Abort(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("abort failed: %v", err)), nil
	}
	return mcp.NewToolResultText("abort requested"), nil
}

func (h *toolHandler) handleGetWeightsTable(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, err := h.table(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(table), nil
}

func (h *toolHandler) handleSetEPRatios(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	ratios := h.ctrl.Session().EPRatios()
	changed := false
	for i, kind := range schema.AllMetricKinds {
		if _, ok := args[string(kind)]; !ok {
			continue
		}
		ratios[i] = request.GetFloat(string(kind), ratios[i])
		changed = true
	}
	if !changed {
		return mcp.NewToolResultError("at least one metric ratio is required"), nil
	}
	if err := h.ctrl.Session().SetEPRatios(ratios); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid ratios: %v", err)), nil
	}
	return jsonResult(ratios), nil
}

func (h *toolHandler) handleSetReferenceStat(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	group := schema.ReferenceGroup(request.GetString("group", ""))

	var stat *schema.UnitStat
	if key := request.GetString("stat", ""); key != "" {
		parsed, err := schema.ParseUnitStat(key)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid stat: %v", err)), nil
		}
		stat = &parsed
	}
	if err := h.ctrl.Session().SetReferenceStat(group, stat); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid reference: %v", err)), nil
	}
	return jsonResult(schema.ReferenceSelection{
		Group:    group,
		Stat:     h.ctrl.Session().EffectiveReference(group),
		Explicit: stat != nil,
	}), nil
}

func (h *toolHandler) handleCopyColumn(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	column, err := request.RequireString("column")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, statsType, err := contract.ParseMetricColumn(column)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.ctrl.Session().CopyColumn(kind, statsType); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("copy failed: %v", err)), nil
	}
	return jsonResult(h.ctrl.Session().ActiveWeights()), nil
}

func (h *toolHandler) handleApplyAggregate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	statsType := schema.StatsType(request.GetString("stats_type", string(schema.EPStatsType)))
	if _, ok := schema.ValidStatsTypes[statsType]; !ok {
		return mcp.NewToolResultError(fmt.Sprintf("invalid stats_type '%s', must be ep or weight", statsType)), nil
	}
	if err := h.ctrl.Session().ApplyAggregate(statsType); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("apply failed: %v", err)), nil
	}
	return jsonResult(h.ctrl.Session().ActiveWeights()), nil
}

func (h *toolHandler) handleRestoreDefaultWeights(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.ctrl.Session().RestoreDefaults()
	return jsonResult(h.ctrl.Session().ActiveWeights()), nil
}
