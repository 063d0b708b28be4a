package backtest

import (
	"testing"
	"time"

	"indicatorworker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func point(minute int, scalar float64) domain.CalculatedIndicatorPoint {
	return domain.CalculatedIndicatorPoint{
		Symbol:   "BTCUSDT",
		Interval: "1h",
		Name:     "rsi",
		Time:     time.Date(2026, 1, 1, 0, minute, 0, 0, time.UTC),
		Value:    domain.ScalarValue(scalar),
	}
}

func TestReplayEntersOnUpwardCrossingAndExitsOnThreshold(t *testing.T) {
	points := []domain.CalculatedIndicatorPoint{
		point(0, 15), // below enter
		point(1, 35), // crosses above 30: enter
		point(2, 25), // above exit(20): stays open
		point(3, 40), // still above exit: stays open
		point(4, 18), // <=20: exit
	}
	closes := map[int64]float64{
		points[1].Time.Unix(): 100,
		points[4].Time.Unix(): 110,
	}
	frame := newSeriesFrame(points)
	summary := Replay(frame, ThresholdStrategy{Enter: 30, Exit: 20}, func(t time.Time) (float64, bool) {
		p, ok := closes[t.Unix()]
		return p, ok
	})

	require.Len(t, summary.Trades, 1)
	trade := summary.Trades[0]
	assert.Equal(t, 100.0, trade.EntryPrice)
	assert.Equal(t, 110.0, trade.ExitPrice)
	assert.Equal(t, 10.0, trade.PnL())
	assert.Equal(t, 1, summary.WinCount)
	assert.Equal(t, 0, summary.LossCount)
	assert.False(t, summary.OpenAtEnd, "expected position closed by end of series")
}

func TestReplayFlagsOpenAtEndWithoutCountingItAsATrade(t *testing.T) {
	points := []domain.CalculatedIndicatorPoint{
		point(0, 20),
		point(1, 35), // enter
	}
	closes := map[int64]float64{points[1].Time.Unix(): 100}
	frame := newSeriesFrame(points)
	summary := Replay(frame, ThresholdStrategy{Enter: 30, Exit: 50}, func(t time.Time) (float64, bool) {
		p, ok := closes[t.Unix()]
		return p, ok
	})

	assert.Empty(t, summary.Trades)
	assert.True(t, summary.OpenAtEnd)
	assert.Equal(t, 0.0, summary.TotalPnL)
}

func TestReplaySkipsEntryWhenNoCloseAvailable(t *testing.T) {
	points := []domain.CalculatedIndicatorPoint{
		point(0, 20),
		point(1, 35), // would enter, but no close price available
	}
	frame := newSeriesFrame(points)
	summary := Replay(frame, ThresholdStrategy{Enter: 30, Exit: 50}, func(t time.Time) (float64, bool) {
		return 0, false
	})

	assert.False(t, summary.OpenAtEnd, "expected no position opened when closeAt never resolves")
	assert.Empty(t, summary.Trades)
}

func TestReplaySkipsRecordValuedPoints(t *testing.T) {
	points := []domain.CalculatedIndicatorPoint{
		{Symbol: "BTCUSDT", Interval: "1h", Name: "macd", Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Value: domain.RecordValue(map[string]any{"macd": 1.0})},
	}
	frame := newSeriesFrame(points)
	assert.Equal(t, 0, frame.Len(), "expected record-valued points to be excluded from the frame")
}
