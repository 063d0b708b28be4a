package domain

import "time"

// CompletenessRecord is the in-memory-only freshness summary for one
// fingerprint. Rebuilt from the store on startup and on periodic refresh.
type CompletenessRecord struct {
	Fingerprint       Fingerprint
	FirstCandleTime   time.Time
	LastCandleTime    time.Time
	LastCalculatedAt  time.Time
	DataCount         int64
	CoveragePercent   int
	Complete          bool
	UpdatedAt         time.Time
}
