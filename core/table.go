package core

import (
	"slices"

	"github.com/huangsam/statweights/core/algo"
	"github.com/huangsam/statweights/schema"
)

// BuildWeightsTable assembles the render model for the EP table from one
// consistent read of the session. Primary stats appear when showAll is set
// or they are measured; pseudo stats appear only when measured. statsType
// records which column the writers favor when space is short.
func BuildWeightsTable(s *Session, showAll bool, statsType schema.StatsType) schema.WeightsTable {
	v := s.view()
	if statsType == "" {
		statsType = schema.EPStatsType
	}

	table := schema.WeightsTable{
		StatsType:  statsType,
		HasResult:  v.result != nil,
		Iterations: v.prevIterations,
		Ratios:     v.ratios,
		Metrics:    schema.AllMetricKinds[:],
	}
	for _, group := range schema.AllReferenceGroups {
		table.References = append(table.References, schema.ReferenceSelection{
			Group:    group,
			Stat:     v.effective[group],
			Explicit: v.refs.Get(group) != nil,
		})
	}
	if table.HasResult {
		table.AggregatedEP = algo.Aggregate(v.result, v.ratios, schema.EPStatsType)
		table.AggregatedWeights = algo.Aggregate(v.result, v.ratios, schema.WeightStatsType)
	}

	for _, stat := range schema.EPUnitStats() {
		measured := slices.Contains(v.epStats, stat)
		if stat.IsStat() && !showAll && !measured {
			continue
		}
		if stat.IsPseudoStat() && !measured {
			continue
		}
		table.Rows = append(table.Rows, buildRow(stat, v))
	}
	return table
}

func buildRow(stat schema.UnitStat, v sessionView) schema.WeightsRow {
	total := algo.ScaledValue(stat, v.ratios, v.result)
	current := v.active.Get(stat)
	row := schema.WeightsRow{
		Stat:    stat,
		Name:    stat.Name(),
		Total:   total,
		Current: current,
		Delta:   schema.DeltaNeutral,
	}
	if v.result != nil {
		row.Delta = algo.CompareDelta(total, current)
	}

	for i, kind := range schema.AllMetricKinds {
		cells := schema.MetricCells{Metric: kind, Delta: schema.DeltaNeutral}
		metric, ok := v.result.Get(kind)
		if !ok {
			cells.NotApplicable = true
			row.Metrics = append(row.Metrics, cells)
			continue
		}
		unused := v.ratios[i] == 0
		cells.Weight = v.cell(metric, schema.WeightStatsType, stat, unused)
		cells.EP = v.cell(metric, schema.EPStatsType, stat, unused)
		if !unused {
			cells.Delta = row.Delta
		}
		row.Metrics = append(row.Metrics, cells)
	}
	return row
}

// cell reads one stat's value and its 90% confidence for statsType.
func (v sessionView) cell(metric schema.MetricResult, statsType schema.StatsType, stat schema.UnitStat, unused bool) schema.WeightCell {
	return schema.WeightCell{
		Value:  metric.Values(statsType).Get(stat),
		Conf90: algo.StDevToConf90(metric.Stdevs(statsType).Get(stat), v.prevIterations),
		Unused: unused,
	}
}
