package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// StatVector maps every UnitStat to a float. It is an array, so assignment
// copies it and no two vectors ever share storage.
type StatVector [NumUnitStats]float64

// Get returns the value stored for stat.
func (v StatVector) Get(stat UnitStat) float64 {
	return v[stat]
}

// With returns a copy of v with stat set to value.
func (v StatVector) With(stat UnitStat, value float64) StatVector {
	v[stat] = value
	return v
}

// Scale returns v multiplied by factor.
func (v StatVector) Scale(factor float64) StatVector {
	var out StatVector
	floats.ScaleTo(out[:], factor, v[:])
	return out
}

// Add returns the element-wise sum of v and other.
func (v StatVector) Add(other StatVector) StatVector {
	var out StatVector
	floats.AddTo(out[:], v[:], other[:])
	return out
}

// Equal reports whether v and other hold exactly the same values.
func (v StatVector) Equal(other StatVector) bool {
	return floats.Equal(v[:], other[:])
}

// EqualApprox reports whether v and other agree within tol on every slot.
func (v StatVector) EqualApprox(other StatVector, tol float64) bool {
	return floats.EqualApprox(v[:], other[:], tol)
}

// IsZero reports whether every slot is zero.
func (v StatVector) IsZero() bool {
	return v == StatVector{}
}

// ToMap returns the non-zero slots keyed by stat key.
func (v StatVector) ToMap() map[string]float64 {
	out := make(map[string]float64)
	for i, value := range v {
		if value != 0 {
			out[UnitStat(i).Key()] = value
		}
	}
	return out
}

// StatVectorFromMap builds a vector from stat keys. Unknown keys are an error.
func StatVectorFromMap(values map[string]float64) (StatVector, error) {
	var v StatVector
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		stat, err := ParseUnitStat(k)
		if err != nil {
			return StatVector{}, err
		}
		v[stat] = values[k]
	}
	return v, nil
}

// MarshalJSON encodes the vector as an object of non-zero slots.
func (v StatVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.ToMap())
}

// UnmarshalJSON decodes an object keyed by stat key.
func (v *StatVector) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("stat vector: %w", err)
	}
	parsed, err := StatVectorFromMap(raw)
	if err != nil {
		return fmt.Errorf("stat vector: %w", err)
	}
	*v = parsed
	return nil
}
