package domain

import "time"

// IndicatorKind groups an indicator name under one of the five families.
type IndicatorKind string

const (
	KindOscillator IndicatorKind = "oscillator"
	KindOverlap    IndicatorKind = "overlap"
	KindVolume     IndicatorKind = "volume"
	KindVolatility IndicatorKind = "volatility"
	KindPattern    IndicatorKind = "pattern"
)

// IndicatorConfig is a row of the declarative work list. Mutable by
// operators; read-only to the core. Uniqueness: (Symbol, Interval, Name,
// Parameters).
type IndicatorConfig struct {
	ID        uint64
	Symbol    string
	Interval  string
	Kind      IndicatorKind
	Name      string
	Params    map[string]any
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fingerprint derives this config's job fingerprint.
func (c IndicatorConfig) Fingerprint() Fingerprint {
	return Fingerprint{
		Symbol:   c.Symbol,
		Interval: c.Interval,
		Name:     c.Name,
		Params:   c.Params,
	}
}
