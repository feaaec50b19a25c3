package schema

// Custom string types for type safety.
type (
	// MetricKind identifies one simulated performance axis.
	MetricKind string

	// StatsType selects between EP values and raw per-point weights.
	StatsType string

	// ReferenceGroup names a group of metrics that share one reference stat.
	ReferenceGroup string

	// RequestType is the scope key used when aborting engine requests.
	RequestType string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// DeltaDirection tells whether a computed total is above or below the active weight.
	DeltaDirection string
)

// All metric kinds supported.
const (
	DPSMetric    MetricKind = "dps"     // damage per second
	HPSMetric    MetricKind = "hps"     // healing per second
	TPSMetric    MetricKind = "tps"     // threat per second
	DTPSMetric   MetricKind = "dtps"    // damage taken per second
	TMIMetric    MetricKind = "tmi"     // mitigation index
	PDeathMetric MetricKind = "p_death" // death probability
)

// NumMetricKinds is the size of the closed metric set.
const NumMetricKinds = 6

// AllMetricKinds lists every metric in ratio order.
var AllMetricKinds = [NumMetricKinds]MetricKind{DPSMetric, HPSMetric, TPSMetric, DTPSMetric, TMIMetric, PDeathMetric}

// All stats types supported.
const (
	EPStatsType     StatsType = "ep" // default
	WeightStatsType StatsType = "weight"
)

// All reference groups supported.
const (
	DamageGroup  ReferenceGroup = "damage"  // dps and tps
	HealingGroup ReferenceGroup = "healing" // hps
	TankGroup    ReferenceGroup = "tank"    // dtps, tmi and p_death
)

// AllReferenceGroups lists the reference groups in display order.
var AllReferenceGroups = []ReferenceGroup{DamageGroup, HealingGroup, TankGroup}

// All request types supported.
const (
	AllRequests         RequestType = "all"
	RaidSimRequests     RequestType = "raid_sim"
	StatWeightsRequests RequestType = "stat_weights"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	YAMLOut    OutputMode = "yaml"
	XLSXOut    OutputMode = "xlsx"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All delta directions.
const (
	DeltaNeutral  DeltaDirection = "neutral"
	DeltaIncrease DeltaDirection = "increase"
	DeltaDecrease DeltaDirection = "decrease"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	YAMLOut:    {},
	XLSXOut:    {},
	ParquetOut: {},
}

// ValidStatsTypes lists all valid stats types.
var ValidStatsTypes = map[StatsType]struct{}{
	EPStatsType:     {},
	WeightStatsType: {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Index returns the position of the metric in ratio order, or -1 if unknown.
func (k MetricKind) Index() int {
	for i, kind := range AllMetricKinds {
		if kind == k {
			return i
		}
	}
	return -1
}

// Group returns the reference group whose reference stat normalizes this metric.
func (k MetricKind) Group() ReferenceGroup {
	switch k {
	case HPSMetric:
		return HealingGroup
	case DTPSMetric, TMIMetric, PDeathMetric:
		return TankGroup
	default:
		return DamageGroup
	}
}

// Label returns the short column label for the metric.
func (k MetricKind) Label() string {
	switch k {
	case DPSMetric:
		return "DPS"
	case HPSMetric:
		return "HPS"
	case TPSMetric:
		return "TPS"
	case DTPSMetric:
		return "DTPS"
	case TMIMetric:
		return "TMI"
	case PDeathMetric:
		return "Death"
	default:
		return string(k)
	}
}

// ParseMetricKind resolves a metric key such as "dps" or "p_death".
func ParseMetricKind(s string) (MetricKind, bool) {
	k := MetricKind(s)
	return k, k.Index() >= 0
}

// Covers reports whether an abort of this type reaches requests of type other.
func (t RequestType) Covers(other RequestType) bool {
	return t == AllRequests || t == other
}
