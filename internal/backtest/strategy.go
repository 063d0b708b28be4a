package backtest

import "time"

// ThresholdStrategy goes long when the indicator crosses from below Enter to
// at or above it, and exits at the first later point whose value is at or
// below Exit. Enter > Exit is the typical configuration (e.g. Enter=30
// Exit=20, an "enter high, exit low" long-only replay). The runner does not
// check the relation: with Enter <= Exit, a position exits at the first
// point after entry whose value is still at or below Exit.
type ThresholdStrategy struct {
	Enter float64
	Exit  float64
}

// Trade is one completed long position.
type Trade struct {
	EntryTime  time.Time
	ExitTime   time.Time
	EntryPrice float64
	ExitPrice  float64
}

// PnL is the trade's signed hypothetical profit on one unit of the
// underlying, long-only.
func (t Trade) PnL() float64 {
	return t.ExitPrice - t.EntryPrice
}

// Summary is the backtest's hypothetical P&L report.
type Summary struct {
	Trades      []Trade
	TotalPnL    float64
	WinCount    int
	LossCount   int
	OpenAtEnd   bool
}

// Replay walks frame's indicator values in time order, crossing prices in
// from closeAt, and returns every completed trade plus an aggregate
// summary. A position still open when the series ends is reported via
// OpenAtEnd but not included in Trades or TotalPnL — its outcome is
// unknown until a future candle closes it.
func Replay(frame *seriesFrame, strat ThresholdStrategy, closeAt func(t time.Time) (float64, bool)) Summary {
	var summary Summary
	inPosition := false
	var entryTime time.Time
	var entryPrice float64
	prevAboveEnter := false

	for i := 0; i < frame.Len(); i++ {
		t, v := frame.At(i)
		aboveEnter := v >= strat.Enter
		belowExit := v <= strat.Exit

		if !inPosition && aboveEnter && !prevAboveEnter {
			if price, ok := closeAt(t); ok {
				inPosition = true
				entryTime = t
				entryPrice = price
			}
		} else if inPosition && belowExit {
			if price, ok := closeAt(t); ok {
				trade := Trade{EntryTime: entryTime, ExitTime: t, EntryPrice: entryPrice, ExitPrice: price}
				summary.Trades = append(summary.Trades, trade)
				summary.TotalPnL += trade.PnL()
				if trade.PnL() >= 0 {
					summary.WinCount++
				} else {
					summary.LossCount++
				}
				inPosition = false
			}
		}
		prevAboveEnter = aboveEnter
	}
	summary.OpenAtEnd = inPosition
	return summary
}
