// Package backtest is the optional strategy-backtesting collaborator
// spec.md §1 names as an external consumer of calculated_indicators:
// "the core does not depend on it, and it does not depend on the core's
// producer/consumer pipeline." It only ever reads through the gateway —
// it never writes a row.
//
// Grounded on internal/analytics/dataframe/adapter.go's gota DataFrame
// wrapper, adapted from a candle-column frame into a two-column
// (time, value) series frame over a scalar indicator's calculated output.
package backtest

import (
	"strconv"
	"time"

	"indicatorworker/internal/domain"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// seriesFrame wraps a gota DataFrame of (time, value) pairs built from a
// scalar-valued calculated_indicators series.
type seriesFrame struct {
	df dataframe.DataFrame
}

// newSeriesFrame builds a frame from points, skipping any record-shaped
// (non-scalar) values — a crossover/threshold strategy only makes sense
// over a single real-valued series (RSI, SMA, EMA, ...), not a multi-field
// record like MACD or BBANDS.
func newSeriesFrame(points []domain.CalculatedIndicatorPoint) *seriesFrame {
	times := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Value.IsRecord {
			continue
		}
		times = append(times, p.Time.Format(time.RFC3339Nano))
		values = append(values, p.Value.Scalar)
	}
	df := dataframe.New(
		series.New(times, series.String, "Time"),
		series.New(values, series.Float, "Value"),
	)
	return &seriesFrame{df: df}
}

func (f *seriesFrame) Len() int { return f.df.Nrow() }

func (f *seriesFrame) At(i int) (time.Time, float64) {
	timeCol := f.df.Col("Time")
	valueCol := f.df.Col("Value")
	t, _ := time.Parse(time.RFC3339Nano, timeCol.Elem(i).String())
	v, _ := strconv.ParseFloat(valueCol.Elem(i).String(), 64)
	return t, v
}
