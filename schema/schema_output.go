package schema

// WeightCell is one displayed value with its 90% confidence half-width.
type WeightCell struct {
	Value  float64 `json:"value"`
	Conf90 float64 `json:"conf90"`
	Unused bool    `json:"unused,omitempty"` // the metric's ratio is zero
}

// MetricCells holds the weight and EP cells of one metric for one stat.
type MetricCells struct {
	Metric        MetricKind     `json:"metric"`
	NotApplicable bool           `json:"not_applicable,omitempty"`
	Weight        WeightCell     `json:"weight"`
	EP            WeightCell     `json:"ep"`
	Delta         DeltaDirection `json:"delta,omitempty"` // highlight for the EP cell
}

// WeightsRow is the render model for one stat.
type WeightsRow struct {
	Stat    UnitStat       `json:"stat"`
	Name    string         `json:"name"`
	Metrics []MetricCells  `json:"metrics"`
	Total   float64        `json:"total"`   // ratio-weighted EP sum
	Current float64        `json:"current"` // active weight
	Delta   DeltaDirection `json:"delta"`
}

// ReferenceSelection describes the reference stat in effect for a group.
type ReferenceSelection struct {
	Group    ReferenceGroup `json:"group"`
	Stat     UnitStat       `json:"stat"`
	Explicit bool           `json:"explicit"` // false when falling back to a default
}

// WeightsTable is the complete render model handed to writers.
type WeightsTable struct {
	StatsType         StatsType            `json:"stats_type"`
	HasResult         bool                 `json:"has_result"`
	Iterations        int                  `json:"iterations"`
	Ratios            EPRatios             `json:"ratios"`
	References        []ReferenceSelection `json:"references"`
	Metrics           []MetricKind         `json:"metrics"`
	Rows              []WeightsRow         `json:"rows"`
	AggregatedEP      StatVector           `json:"aggregated_ep"`
	AggregatedWeights StatVector           `json:"aggregated_weights"`
}

// Cell returns the cells of kind in row, and whether the row has that column.
func (r WeightsRow) Cell(kind MetricKind) (MetricCells, bool) {
	for _, c := range r.Metrics {
		if c.Metric == kind {
			return c, true
		}
	}
	return MetricCells{}, false
}
