// Package gateway implements the Persistence Gateway (spec.md §4.2): typed
// access to indicator_config (the work list) and calculated_indicators (the
// sink), plus read-only access to the externally-owned candle table. No
// ingestion lives here — spec.md §1 Non-goals — the gateway only reads
// candles another pipeline already wrote.
//
// Grounded on internal/repository/postgres/candle_repository.go's GORM +
// clause.OnConflict pattern, switched from the teacher's MySQL driver to
// gorm.io/driver/postgres because spec.md §6 names Postgres-shaped schema
// (timestamptz, jsonb, hypertable-compatible uniqueness) explicitly.
package gateway

import (
	"context"
	"time"

	"indicatorworker/internal/domain"
	"indicatorworker/pkg/workerrors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gateway is the core's sole persistence dependency.
type Gateway struct {
	db *gorm.DB
}

// New wraps an already-connected *gorm.DB.
func New(db *gorm.DB) *Gateway {
	return &Gateway{db: db}
}

// EnumerateEnabledConfigs returns every enabled indicator_config row,
// ordered stably (by id) but with no other ordering guarantee, per
// spec.md §4.2.
func (g *Gateway) EnumerateEnabledConfigs(ctx context.Context) ([]domain.IndicatorConfig, error) {
	var rows []indicatorConfigRow
	if err := g.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, workerrors.New(workerrors.ConfigLoad, "", err).WithMessage("enumerate enabled configs failed")
	}
	out := make([]domain.IndicatorConfig, 0, len(rows))
	for _, r := range rows {
		cfg, err := r.toDomain()
		if err != nil {
			return nil, workerrors.New(workerrors.ConfigLoad, "", err).WithMessage("decode indicator_config.parameters failed")
		}
		out = append(out, cfg)
	}
	return out, nil
}

// ReadCandleSeries returns every available candle for (symbol, interval),
// ordered by open-time ascending. An empty series (not an error) is
// returned when none exist, per spec.md §4.2.
func (g *Gateway) ReadCandleSeries(ctx context.Context, symbol, interval string) (*domain.CandleSeries, error) {
	var rows []externalCandleRow
	if err := g.db.WithContext(ctx).
		Where("symbol = ? AND interval = ?", symbol, interval).
		Order("open_time").
		Find(&rows).Error; err != nil {
		return nil, workerrors.New(workerrors.CandleRead, "", err).WithMessage("read candle series failed")
	}
	candles := make([]domain.Candle, len(rows))
	for i, r := range rows {
		candles[i] = r.toDomain()
	}
	return domain.NewCandleSeries(symbol, interval, candles), nil
}

// ReadCandleRange returns the (first, last) open-time bound for (symbol,
// interval), failing with CandleRead if the pair has no rows (spec.md
// §4.2's "NoData").
func (g *Gateway) ReadCandleRange(ctx context.Context, symbol, interval string) (domain.CandleRange, error) {
	var row struct {
		First time.Time
		Last  time.Time
	}
	err := g.db.WithContext(ctx).
		Model(&externalCandleRow{}).
		Select("MIN(open_time) AS first, MAX(open_time) AS last").
		Where("symbol = ? AND interval = ?", symbol, interval).
		Scan(&row).Error
	if err != nil {
		return domain.CandleRange{}, workerrors.New(workerrors.CandleRead, "", err).WithMessage("read candle range failed")
	}
	if row.First.IsZero() || row.Last.IsZero() {
		return domain.CandleRange{}, workerrors.New(workerrors.CandleRead, "", nil).WithMessage("no candles for symbol/interval")
	}
	return domain.CandleRange{First: row.First, Last: row.Last}, nil
}

// ReadCompleteness returns the last-calculated time and row count for a
// fingerprint, both derived from calculated_indicators (spec.md §4.2).
// A zero lastCalculated and zero count mean nothing has been computed yet.
func (g *Gateway) ReadCompleteness(ctx context.Context, fp domain.Fingerprint) (lastCalculated time.Time, count int64, err error) {
	params, encErr := encodeParams(fp.Params)
	if encErr != nil {
		return time.Time{}, 0, workerrors.New(workerrors.CandleRead, fp.Key(), encErr).WithMessage("encode fingerprint parameters failed")
	}
	var agg struct {
		LastCalculated time.Time
		Count          int64
	}
	dbErr := g.db.WithContext(ctx).
		Model(&calculatedIndicatorRow{}).
		Select("MAX(time) AS last_calculated, COUNT(*) AS count").
		Where("symbol = ? AND interval = ? AND indicator_name = ? AND parameters = ?", fp.Symbol, fp.Interval, fp.Name, params).
		Scan(&agg).Error
	if dbErr != nil {
		return time.Time{}, 0, workerrors.New(workerrors.CandleRead, fp.Key(), dbErr).WithMessage("read completeness failed")
	}
	return agg.LastCalculated, agg.Count, nil
}

// ReadCalculatedSeries returns every calculated_indicators row for a
// fingerprint, ordered by time ascending. Used by the backtesting
// collaborator (SPEC_FULL.md "Supplemented features"), which only ever
// reads this table — it never writes to it.
func (g *Gateway) ReadCalculatedSeries(ctx context.Context, fp domain.Fingerprint) ([]domain.CalculatedIndicatorPoint, error) {
	params, err := encodeParams(fp.Params)
	if err != nil {
		return nil, workerrors.New(workerrors.CandleRead, fp.Key(), err).WithMessage("encode fingerprint parameters failed")
	}
	var rows []calculatedIndicatorRow
	dbErr := g.db.WithContext(ctx).
		Where("symbol = ? AND interval = ? AND indicator_name = ? AND parameters = ?", fp.Symbol, fp.Interval, fp.Name, params).
		Order("time").
		Find(&rows).Error
	if dbErr != nil {
		return nil, workerrors.New(workerrors.CandleRead, fp.Key(), dbErr).WithMessage("read calculated series failed")
	}
	out := make([]domain.CalculatedIndicatorPoint, 0, len(rows))
	for _, r := range rows {
		p, err := r.toPoint()
		if err != nil {
			return nil, workerrors.New(workerrors.CandleRead, fp.Key(), err).WithMessage("decode calculated point failed")
		}
		out = append(out, p)
	}
	return out, nil
}

// UpsertCalculatedBatch applies a batch of points inside a single
// transaction with "on (symbol, interval, name, parameters, time)
// conflict, replace value" (spec.md §4.2). A failure inside the batch
// rolls back only this batch; previously committed batches are untouched.
func (g *Gateway) UpsertCalculatedBatch(ctx context.Context, points []domain.CalculatedIndicatorPoint) error {
	if len(points) == 0 {
		return nil
	}
	rows := make([]calculatedIndicatorRow, 0, len(points))
	for _, p := range points {
		row, err := newCalculatedIndicatorRow(p)
		if err != nil {
			return workerrors.New(workerrors.UpsertIO, p.Fingerprint().Key(), err).WithMessage("encode calculated point failed")
		}
		rows = append(rows, row)
	}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}, {Name: "interval"}, {Name: "indicator_name"}, {Name: "parameters"}, {Name: "time"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		CreateInBatches(rows, 1000).Error
	if err != nil {
		return workerrors.New(workerrors.UpsertIO, "", err).WithMessage("upsert calculated batch failed")
	}
	return nil
}
