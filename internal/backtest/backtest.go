package backtest

import (
	"context"
	"fmt"
	"time"

	"indicatorworker/internal/domain"
)

// seriesReader is the read-only slice of the gateway this collaborator
// needs. Declared locally (rather than importing *gateway.Gateway's full
// surface) so the dependency stays pointed at exactly the two read
// operations a backtest performs.
type seriesReader interface {
	ReadCalculatedSeries(ctx context.Context, fp domain.Fingerprint) ([]domain.CalculatedIndicatorPoint, error)
	ReadCandleSeries(ctx context.Context, symbol, interval string) (*domain.CandleSeries, error)
}

// Config names the one indicator series and the threshold rule to replay.
type Config struct {
	Symbol    string
	Interval  string
	Indicator string
	Params    map[string]any
	Strategy  ThresholdStrategy
}

// Runner replays a stored indicator series against its candle closes. It
// never writes to calculated_indicators or indicator_config — a pure
// reader over state the core worker already produced.
type Runner struct {
	reader seriesReader
}

// New wraps a gateway (or any seriesReader) for replay.
func New(reader seriesReader) *Runner {
	return &Runner{reader: reader}
}

// Run fetches the indicator and candle series for cfg and replays
// cfg.Strategy over them, returning a hypothetical P&L summary.
func (r *Runner) Run(ctx context.Context, cfg Config) (Summary, error) {
	fp := domain.Fingerprint{Symbol: cfg.Symbol, Interval: cfg.Interval, Name: cfg.Indicator, Params: cfg.Params}
	points, err := r.reader.ReadCalculatedSeries(ctx, fp)
	if err != nil {
		return Summary{}, fmt.Errorf("read calculated series: %w", err)
	}
	if len(points) == 0 {
		return Summary{}, fmt.Errorf("no calculated_indicators rows for %s", fp.Key())
	}
	candles, err := r.reader.ReadCandleSeries(ctx, cfg.Symbol, cfg.Interval)
	if err != nil {
		return Summary{}, fmt.Errorf("read candle series: %w", err)
	}
	closeIndex := buildCloseIndex(candles)

	frame := newSeriesFrame(points)
	summary := Replay(frame, cfg.Strategy, func(t time.Time) (float64, bool) {
		price, ok := closeIndex[t.Unix()]
		return price, ok
	})
	return summary, nil
}

func buildCloseIndex(series *domain.CandleSeries) map[int64]float64 {
	idx := make(map[int64]float64, series.Len())
	for i, t := range series.OpenTime {
		idx[t.Unix()] = series.Close[i]
	}
	return idx
}
