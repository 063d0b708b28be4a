package gateway

import (
	"indicatorworker/pkg/log"
	"indicatorworker/pkg/workerrors"

	"gorm.io/gorm"
)

// EnsureSchema guarantees the two tables the gateway owns exist
// (indicator_config, calculated_indicators), per spec.md §4.2's schema
// invariants. binance_candles is not touched here — it is owned by the
// ingestion pipeline, not this worker.
//
// AutoMigrate is sufficient for a two-table worker (there is no migration
// history to preserve beyond "these tables exist with this shape"); the
// golang-migrate-backed versioned flow the teacher's pkg/database/migration.go
// implements is kept for cmd/worker's optional "migrate" subcommand, which
// creates the empty binance_candles fixture table used in local/dev
// environments from migrations/*.sql rather than this package's own schema.
func EnsureSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&indicatorConfigRow{}, &calculatedIndicatorRow{}); err != nil {
		return workerrors.New(workerrors.InitFatal, "", err).WithMessage("schema migration failed")
	}
	log.Stage("gateway", "schema ready", log.Fields{"tables": "indicator_config,calculated_indicators"})
	return nil
}
