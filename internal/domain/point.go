package domain

import (
	"encoding/json"
	"time"
)

// IndicatorValue is the heterogeneous value carried by a CalculatedIndicatorPoint.
// Scalar kernels set Scalar and leave Record nil; multi-output kernels
// (MACD, BBANDS, STOCH) and pattern kernels set Record and leave Scalar at
// its zero value. The persisted column stays a tagged JSON document either
// way — the storage layer is the authority on shape, not the Go type.
type IndicatorValue struct {
	Scalar  float64        `json:"scalar,omitempty"`
	Record  map[string]any `json:"record,omitempty"`
	IsRecord bool          `json:"-"`
}

// ScalarValue wraps a plain real-valued result.
func ScalarValue(v float64) IndicatorValue {
	return IndicatorValue{Scalar: v}
}

// RecordValue wraps a named-field result (MACD, BBANDS, STOCH, pattern verdicts).
func RecordValue(fields map[string]any) IndicatorValue {
	return IndicatorValue{Record: fields, IsRecord: true}
}

// MarshalJSON emits the scalar directly, or the record object, never both.
func (v IndicatorValue) MarshalJSON() ([]byte, error) {
	if v.IsRecord {
		return json.Marshal(v.Record)
	}
	return json.Marshal(v.Scalar)
}

// CalculatedIndicatorPoint is one row the consumer streams to the gateway.
// Uniqueness: (Symbol, Interval, Name, Params, Time). Upserted: on
// conflict, Value replaces the existing value.
type CalculatedIndicatorPoint struct {
	Symbol   string
	Interval string
	Kind     IndicatorKind
	Name     string
	Params   map[string]any
	Time     time.Time
	Value    IndicatorValue
}

// Fingerprint derives the point's job fingerprint.
func (p CalculatedIndicatorPoint) Fingerprint() Fingerprint {
	return Fingerprint{Symbol: p.Symbol, Interval: p.Interval, Name: p.Name, Params: p.Params}
}

// Job is the runtime unit of work: fingerprint + kind. Carries no results;
// the consumer derives them.
type Job struct {
	Fingerprint Fingerprint
	Kind        IndicatorKind
}
