package core

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/huangsam/statweights/core/algo"
	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
)

// ReferenceStats holds the optional per-group reference stat choices.
// A nil entry falls back to the group default.
type ReferenceStats struct {
	Damage  *schema.UnitStat `json:"damage,omitempty"`
	Healing *schema.UnitStat `json:"healing,omitempty"`
	Tank    *schema.UnitStat `json:"tank,omitempty"`
}

// Get returns the explicit choice for group, or nil.
func (r ReferenceStats) Get(group schema.ReferenceGroup) *schema.UnitStat {
	switch group {
	case schema.HealingGroup:
		return r.Healing
	case schema.TankGroup:
		return r.Tank
	default:
		return r.Damage
	}
}

func (r *ReferenceStats) set(group schema.ReferenceGroup, stat *schema.UnitStat) {
	switch group {
	case schema.HealingGroup:
		r.Healing = stat
	case schema.TankGroup:
		r.Tank = stat
	default:
		r.Damage = stat
	}
}

func (r ReferenceStats) clone() ReferenceStats {
	return ReferenceStats{Damage: copyStat(r.Damage), Healing: copyStat(r.Healing), Tank: copyStat(r.Tank)}
}

func copyStat(s *schema.UnitStat) *schema.UnitStat {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Session is the configuration layer the engine works against: ratios,
// reference stats, active and default weights, and the last known result.
// Readers always observe whole vectors.
type Session struct {
	mu sync.RWMutex

	epStats       []schema.UnitStat
	referenceStat schema.UnitStat
	refs          ReferenceStats
	ratios        schema.EPRatios

	active   schema.StatVector
	defaults schema.StatVector

	raw            schema.StatWeightsResult
	normalized     schema.StatWeightsResult
	iterations     int
	prevIterations int
	simConfig      json.RawMessage

	RatiosChanged    Notifier
	ReferenceChanged Notifier
	WeightsChanged   Notifier
	ResultChanged    Notifier
}

// NewSession creates a session from a validated config.
func NewSession(cfg *contract.Config) *Session {
	s := &Session{
		epStats:       slices.Clone(cfg.EPStats),
		referenceStat: cfg.ReferenceStat,
		ratios:        cfg.EPRatios,
		active:        cfg.CurrentWeights,
		defaults:      cfg.DefaultWeights,
		iterations:    cfg.Iterations,
		simConfig:     slices.Clone(cfg.SimConfig),
	}
	for _, group := range schema.AllReferenceGroups {
		s.refs.set(group, copyStat(cfg.RefStat(group)))
	}
	return s
}

// EPStats returns the stats a run measures.
func (s *Session) EPStats() []schema.UnitStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.epStats)
}

// EPRatios returns the current metric ratios.
func (s *Session) EPRatios() schema.EPRatios {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ratios
}

// SetEPRatios replaces all ratios. NaN or infinite ratios are rejected.
func (s *Session) SetEPRatios(ratios schema.EPRatios) error {
	if err := ratios.Validate(); err != nil {
		return fmt.Errorf("%w: %w", contract.ErrConfiguration, err)
	}
	s.mu.Lock()
	s.ratios = ratios
	s.mu.Unlock()
	s.RatiosChanged.Emit()
	return nil
}

// SetEPRatio replaces the ratio of one metric.
func (s *Session) SetEPRatio(kind schema.MetricKind, value float64) error {
	i := kind.Index()
	if i < 0 {
		return fmt.Errorf("%w: unknown metric '%s'", contract.ErrConfiguration, kind)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: ratio for %s must be finite (received %v)", contract.ErrConfiguration, kind, value)
	}
	s.mu.Lock()
	s.ratios[i] = value
	s.mu.Unlock()
	s.RatiosChanged.Emit()
	return nil
}

// ReferenceStats returns a copy of the explicit reference choices.
func (s *Session) ReferenceStats() ReferenceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refs.clone()
}

// ReferenceStat returns the global reference stat.
func (s *Session) ReferenceStat() schema.UnitStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.referenceStat
}

// EffectiveReference returns the stat that normalizes metrics of group.
func (s *Session) EffectiveReference(group schema.ReferenceGroup) schema.UnitStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.effectiveReferenceLocked(group)
}

func (s *Session) effectiveReferenceLocked(group schema.ReferenceGroup) schema.UnitStat {
	if ref := s.refs.Get(group); ref != nil {
		return *ref
	}
	if group == schema.TankGroup {
		return schema.StatArmor
	}
	return s.referenceStat
}

// SetReferenceStat sets or clears (nil) the reference stat of group and
// re-normalizes the last raw result without running the engine again.
func (s *Session) SetReferenceStat(group schema.ReferenceGroup, stat *schema.UnitStat) error {
	if !slices.Contains(schema.AllReferenceGroups, group) {
		return fmt.Errorf("%w: unknown reference group '%s'", contract.ErrConfiguration, group)
	}
	if stat != nil && (int(*stat) < 0 || int(*stat) >= schema.NumUnitStats) {
		return fmt.Errorf("%w: reference stat out of range (%d)", contract.ErrConfiguration, *stat)
	}
	s.mu.Lock()
	s.refs.set(group, copyStat(stat))
	hasResult := s.raw != nil
	if hasResult {
		s.normalized = algo.NormalizeAll(s.raw, s.effectiveReferenceLocked)
	}
	s.mu.Unlock()

	s.ReferenceChanged.Emit()
	if hasResult {
		s.ResultChanged.Emit()
	}
	return nil
}

// ActiveWeights returns the active weight vector.
func (s *Session) ActiveWeights() schema.StatVector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// DefaultWeights returns the configured default weight vector.
func (s *Session) DefaultWeights() schema.StatVector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// SetActiveWeights overwrites the active weights wholesale.
func (s *Session) SetActiveWeights(weights schema.StatVector) {
	s.mu.Lock()
	s.active = weights
	s.mu.Unlock()
	s.WeightsChanged.Emit()
}

// SetActiveWeight edits one stat by installing a new vector.
func (s *Session) SetActiveWeight(stat schema.UnitStat, value float64) {
	s.mu.Lock()
	s.active = s.active.With(stat, value)
	s.mu.Unlock()
	s.WeightsChanged.Emit()
}

// RestoreDefaults resets the active weights to the defaults.
func (s *Session) RestoreDefaults() {
	s.mu.Lock()
	s.active = s.defaults
	s.mu.Unlock()
	s.WeightsChanged.Emit()
}

// CopyColumn installs one metric's weight or EP column as the active weights.
// Without any result every metric is not applicable.
func (s *Session) CopyColumn(kind schema.MetricKind, statsType schema.StatsType) error {
	s.mu.Lock()
	if s.normalized == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", contract.ErrMetricNotApplicable, contract.ErrNoResult)
	}
	metric, ok := s.normalized.Get(kind)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", contract.ErrMetricNotApplicable, kind)
	}
	s.active = metric.Values(statsType)
	s.mu.Unlock()
	s.WeightsChanged.Emit()
	return nil
}

// ApplyAggregate installs the ratio-weighted aggregate of the last result.
func (s *Session) ApplyAggregate(statsType schema.StatsType) error {
	s.mu.Lock()
	if s.normalized == nil {
		s.mu.Unlock()
		return contract.ErrNoResult
	}
	s.active = algo.Aggregate(s.normalized, s.ratios, statsType)
	s.mu.Unlock()
	s.WeightsChanged.Emit()
	return nil
}

// LastResult returns a copy of the normalized last result.
func (s *Session) LastResult() (schema.StatWeightsResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.normalized.Clone(), s.normalized != nil
}

// RawResult returns a copy of the last result as the engine produced it.
func (s *Session) RawResult() (schema.StatWeightsResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.raw.Clone(), s.raw != nil
}

// Iterations returns the iteration count the next run will use.
func (s *Session) Iterations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.iterations
}

// SetIterations changes the iteration count of future runs.
func (s *Session) SetIterations(n int) error {
	if err := contract.ValidateIterations(n); err != nil {
		return fmt.Errorf("%w: %w", contract.ErrConfiguration, err)
	}
	s.mu.Lock()
	s.iterations = n
	s.mu.Unlock()
	return nil
}

// PrevIterations returns the iteration count of the run behind LastResult.
func (s *Session) PrevIterations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prevIterations
}

// Request snapshots what the next engine run needs. The caller assigns RequestID.
func (s *Session) Request() schema.StatWeightsRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schema.StatWeightsRequest{
		EPStats:       slices.Clone(s.epStats),
		ReferenceStat: s.referenceStat,
		Iterations:    s.iterations,
		SimConfig:     slices.Clone(s.simConfig),
	}
}

// StoreResult records a completed run and normalizes it with the current references.
func (s *Session) StoreResult(raw schema.StatWeightsResult, iterations int) {
	s.mu.Lock()
	s.raw = raw.Clone()
	if s.raw == nil {
		s.raw = schema.StatWeightsResult{}
	}
	s.normalized = algo.NormalizeAll(s.raw, s.effectiveReferenceLocked)
	s.prevIterations = iterations
	s.mu.Unlock()
	s.ResultChanged.Emit()
}

// sessionView is a consistent read of everything the weights table needs.
type sessionView struct {
	epStats        []schema.UnitStat
	ratios         schema.EPRatios
	refs           ReferenceStats
	effective      map[schema.ReferenceGroup]schema.UnitStat
	active         schema.StatVector
	result         schema.StatWeightsResult
	prevIterations int
}

func (s *Session) view() sessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v := sessionView{
		epStats:        slices.Clone(s.epStats),
		ratios:         s.ratios,
		refs:           s.refs.clone(),
		effective:      make(map[schema.ReferenceGroup]schema.UnitStat, len(schema.AllReferenceGroups)),
		active:         s.active,
		result:         s.normalized.Clone(),
		prevIterations: s.prevIterations,
	}
	for _, group := range schema.AllReferenceGroups {
		v.effective[group] = s.effectiveReferenceLocked(group)
	}
	return v
}
