package schema

import (
	"fmt"
	"strings"
)

// UnitStat indexes one slot of a StatVector. Values below NumStats are
// primary stats; the rest are pseudo stats derived from weapons and speed.
type UnitStat int

// Primary stats.
const (
	StatStrength UnitStat = iota
	StatAgility
	StatStamina
	StatIntellect
	StatSpirit
	StatHealingPower
	StatSpellPower
	StatSpellDamage
	StatArcanePower
	StatFirePower
	StatFrostPower
	StatHolyPower
	StatNaturePower
	StatShadowPower
	StatMP5
	StatSpellHit
	StatSpellCrit
	StatSpellHaste
	StatSpellPenetration
	StatAttackPower
	StatRangedAttackPower
	StatFeralAttackPower
	StatMeleeHit
	StatMeleeCrit
	StatMeleeHaste
	StatArmorPenetration
	StatExpertise
	StatMana
	StatEnergy
	StatRage
	StatArmor
	StatBonusArmor
	StatHealth
	StatDefense
	StatBlock
	StatBlockValue
	StatDodge
	StatParry
	StatArcaneResistance
	StatFireResistance
	StatFrostResistance
	StatNatureResistance
	StatShadowResistance

	// NumStats is the number of primary stats.
	NumStats int = iota
)

// Pseudo stats.
const (
	PseudoStatMainHandDps UnitStat = UnitStat(NumStats) + iota
	PseudoStatOffHandDps
	PseudoStatRangedDps
	PseudoStatBonusPhysicalDamage
	PseudoStatMeleeSpeedMultiplier
	PseudoStatRangedSpeedMultiplier
	PseudoStatCastSpeedMultiplier
	PseudoStatSchoolHitArcane
	PseudoStatSchoolHitFire
	PseudoStatSchoolHitFrost

	// NumUnitStats is the total number of slots in a StatVector.
	NumUnitStats int = NumStats + iota
)

type unitStatInfo struct {
	key  string
	name string
}

var unitStatInfos = [NumUnitStats]unitStatInfo{
	StatStrength:          {"strength", "Strength"},
	StatAgility:           {"agility", "Agility"},
	StatStamina:           {"stamina", "Stamina"},
	StatIntellect:         {"intellect", "Intellect"},
	StatSpirit:            {"spirit", "Spirit"},
	StatHealingPower:      {"healing_power", "Healing Power"},
	StatSpellPower:        {"spell_power", "Spell Power"},
	StatSpellDamage:       {"spell_damage", "Spell Damage"},
	StatArcanePower:       {"arcane_power", "Arcane Power"},
	StatFirePower:         {"fire_power", "Fire Power"},
	StatFrostPower:        {"frost_power", "Frost Power"},
	StatHolyPower:         {"holy_power", "Holy Power"},
	StatNaturePower:       {"nature_power", "Nature Power"},
	StatShadowPower:       {"shadow_power", "Shadow Power"},
	StatMP5:               {"mp5", "MP5"},
	StatSpellHit:          {"spell_hit", "Spell Hit"},
	StatSpellCrit:         {"spell_crit", "Spell Crit"},
	StatSpellHaste:        {"spell_haste", "Spell Haste"},
	StatSpellPenetration:  {"spell_penetration", "Spell Penetration"},
	StatAttackPower:       {"attack_power", "Attack Power"},
	StatRangedAttackPower: {"ranged_attack_power", "Ranged Attack Power"},
	StatFeralAttackPower:  {"feral_attack_power", "Feral Attack Power"},
	StatMeleeHit:          {"melee_hit", "Melee Hit"},
	StatMeleeCrit:         {"melee_crit", "Melee Crit"},
	StatMeleeHaste:        {"melee_haste", "Melee Haste"},
	StatArmorPenetration:  {"armor_penetration", "Armor Penetration"},
	StatExpertise:         {"expertise", "Expertise"},
	StatMana:              {"mana", "Mana"},
	StatEnergy:            {"energy", "Energy"},
	StatRage:              {"rage", "Rage"},
	StatArmor:             {"armor", "Armor"},
	StatBonusArmor:        {"bonus_armor", "Bonus Armor"},
	StatHealth:            {"health", "Health"},
	StatDefense:           {"defense", "Defense"},
	StatBlock:             {"block", "Block"},
	StatBlockValue:        {"block_value", "Block Value"},
	StatDodge:             {"dodge", "Dodge"},
	StatParry:             {"parry", "Parry"},
	StatArcaneResistance:  {"arcane_resistance", "Arcane Resistance"},
	StatFireResistance:    {"fire_resistance", "Fire Resistance"},
	StatFrostResistance:   {"frost_resistance", "Frost Resistance"},
	StatNatureResistance:  {"nature_resistance", "Nature Resistance"},
	StatShadowResistance:  {"shadow_resistance", "Shadow Resistance"},

	PseudoStatMainHandDps:           {"main_hand_dps", "Main Hand DPS"},
	PseudoStatOffHandDps:            {"off_hand_dps", "Off Hand DPS"},
	PseudoStatRangedDps:             {"ranged_dps", "Ranged DPS"},
	PseudoStatBonusPhysicalDamage:   {"bonus_physical_damage", "Bonus Physical Damage"},
	PseudoStatMeleeSpeedMultiplier:  {"melee_speed_multiplier", "Melee Speed Multiplier"},
	PseudoStatRangedSpeedMultiplier: {"ranged_speed_multiplier", "Ranged Speed Multiplier"},
	PseudoStatCastSpeedMultiplier:   {"cast_speed_multiplier", "Cast Speed Multiplier"},
	PseudoStatSchoolHitArcane:       {"school_hit_arcane", "Arcane Hit"},
	PseudoStatSchoolHitFire:         {"school_hit_fire", "Fire Hit"},
	PseudoStatSchoolHitFrost:        {"school_hit_frost", "Frost Hit"},
}

// epPseudoStats are the only pseudo stats that take part in EP tables.
var epPseudoStats = map[UnitStat]struct{}{
	PseudoStatMainHandDps:           {},
	PseudoStatOffHandDps:            {},
	PseudoStatRangedDps:             {},
	PseudoStatBonusPhysicalDamage:   {},
	PseudoStatMeleeSpeedMultiplier:  {},
	PseudoStatRangedSpeedMultiplier: {},
	PseudoStatCastSpeedMultiplier:   {},
}

var unitStatsByKey = func() map[string]UnitStat {
	m := make(map[string]UnitStat, NumUnitStats)
	for i, info := range unitStatInfos {
		m[info.key] = UnitStat(i)
	}
	return m
}()

// IsStat reports whether u is a primary stat.
func (u UnitStat) IsStat() bool {
	return u >= 0 && int(u) < NumStats
}

// IsPseudoStat reports whether u is a pseudo stat.
func (u UnitStat) IsPseudoStat() bool {
	return int(u) >= NumStats && int(u) < NumUnitStats
}

// IsEP reports whether u can appear in an EP table.
func (u UnitStat) IsEP() bool {
	if u.IsStat() {
		return true
	}
	_, ok := epPseudoStats[u]
	return ok
}

// Key returns the stable snake_case identifier used in config files and JSON.
func (u UnitStat) Key() string {
	if !u.IsStat() && !u.IsPseudoStat() {
		return fmt.Sprintf("unit_stat_%d", int(u))
	}
	return unitStatInfos[u].key
}

// Name returns the display name.
func (u UnitStat) Name() string {
	if !u.IsStat() && !u.IsPseudoStat() {
		return fmt.Sprintf("UnitStat(%d)", int(u))
	}
	return unitStatInfos[u].name
}

// String implements fmt.Stringer.
func (u UnitStat) String() string {
	return u.Key()
}

// MarshalText encodes the stat by key.
func (u UnitStat) MarshalText() ([]byte, error) {
	return []byte(u.Key()), nil
}

// UnmarshalText decodes a stat key.
func (u *UnitStat) UnmarshalText(text []byte) error {
	parsed, err := ParseUnitStat(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// ParseUnitStat resolves a stat key. Matching ignores case, surrounding
// whitespace, and accepts '-' or ' ' in place of '_'.
func ParseUnitStat(s string) (UnitStat, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if u, ok := unitStatsByKey[key]; ok {
		return u, nil
	}
	return 0, fmt.Errorf("unknown stat %q", s)
}

// AllUnitStats returns every unit stat in index order.
func AllUnitStats() []UnitStat {
	out := make([]UnitStat, NumUnitStats)
	for i := range out {
		out[i] = UnitStat(i)
	}
	return out
}

// EPUnitStats returns the unit stats eligible for EP tables: every primary
// stat and the weapon and speed pseudo stats.
func EPUnitStats() []UnitStat {
	out := make([]UnitStat, 0, NumUnitStats)
	for _, u := range AllUnitStats() {
		if u.IsEP() {
			out = append(out, u)
		}
	}
	return out
}
