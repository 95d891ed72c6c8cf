package models

import (
	"encoding/json"
	"math"
	"strconv"
)

// --- Time series (FRED graph CSV) ---

// Value is a numeric observation that may be missing. Missing is distinct
// from zero: FRED publishes "." for days without an observation.
type Value struct {
	Float float64
	Valid bool
}

// Float64 returns a present value.
func Float64(f float64) Value { return Value{Float: f, Valid: true} }

// Missing returns an absent value.
func Missing() Value { return Value{} }

func (v Value) IsMissing() bool { return !v.Valid }

func (v Value) String() string {
	if !v.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

// MarshalJSON encodes a missing or non-finite value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid || math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Missing()
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*v = Float64(f)
	return nil
}

// Observation is one (date, value) pair of a series.
type Observation struct {
	Date  Date  `json:"date"`
	Value Value `json:"value"`
}

// Series is an ordered sequence of observations for one series identifier.
// Order is whatever the source delivered (ascending by date for FRED) unless
// a filter states otherwise.
type Series struct {
	ID           string        `json:"series_id"`
	Observations []Observation `json:"observations"`
}

func (s Series) Len() int { return len(s.Observations) }

// MinDate returns the earliest date present in the series, regardless of
// whether the value on that date is missing. ok is false for an empty series.
func (s Series) MinDate() (earliest Date, ok bool) {
	for i, o := range s.Observations {
		if i == 0 || o.Date.Before(earliest) {
			earliest = o.Date
		}
	}
	return earliest, len(s.Observations) > 0
}

// AllMissing reports whether no observation carries a value. An empty
// series has no values and therefore counts as all missing.
func (s Series) AllMissing() bool {
	for _, o := range s.Observations {
		if o.Value.Valid {
			return false
		}
	}
	return true
}

// MissingCount returns how many observations lack a value.
func (s Series) MissingCount() int {
	n := 0
	for _, o := range s.Observations {
		if !o.Value.Valid {
			n++
		}
	}
	return n
}

// Dates returns the observation dates in series order.
func (s Series) Dates() []Date {
	out := make([]Date, len(s.Observations))
	for i, o := range s.Observations {
		out[i] = o.Date
	}
	return out
}
