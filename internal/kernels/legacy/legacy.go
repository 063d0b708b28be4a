// Package legacy preserves the hand-written indicator math this worker
// evolved from. None of it is on the production kernel path — every
// production kernel in internal/kernels wraps go-talib instead, per the
// reference-library contract. This package exists solely so a
// characterization test can pin the numeric divergence between the
// hand-written flavour and TA-Lib's, the way the source's own overlapping
// implementations disagreed (see Open Questions in DESIGN.md).
package legacy

import (
	"math"

	"github.com/cinar/indicator"
	"gonum.org/v1/gonum/stat"
)

// SMA is the hand-written simple moving average: NaN for i < period-1,
// window mean thereafter.
func SMA(closes []float64, period int) []float64 {
	if len(closes) == 0 || period <= 0 {
		return nil
	}
	out := make([]float64, len(closes))
	for i := 0; i < len(closes); i++ {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.Mean(closes[i-period+1:i+1], nil)
	}
	return out
}

// EMA is the hand-written exponential moving average, seeded with an SMA
// at index period-1.
func EMA(closes []float64, period int) []float64 {
	if len(closes) == 0 || period <= 0 {
		return nil
	}
	if period > len(closes) {
		period = len(closes)
	}
	out := make([]float64, len(closes))
	mult := 2.0 / float64(period+1)
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += closes[i]
	}
	out[period-1] = sum / float64(period)
	for i := period; i < len(closes); i++ {
		out[i] = closes[i]*mult + out[i-1]*(1-mult)
	}
	for i := 0; i < period-1; i++ {
		out[i] = math.NaN()
	}
	return out
}

// RSI is the hand-written relative strength index: Wilder smoothing seeded
// by a simple mean over the first `period` changes, first valid value at
// index `period`. This matches TA-Lib's RSI warm-up, unlike the
// StochasticRSI below.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	if n == 0 || period <= 0 || n < period+1 {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < period; i++ {
		out[i] = math.NaN()
	}
	gains := make([]float64, n-1)
	losses := make([]float64, n-1)
	for i := 1; i < n; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i-1] = d
		} else {
			losses[i-1] = -d
		}
	}
	avgGain := stat.Mean(gains[:period], nil)
	avgLoss := stat.Mean(losses[:period], nil)
	out[period] = rsiFromAvg(avgGain, avgLoss)
	alpha := 1.0 / float64(period)
	for i := period + 1; i < n; i++ {
		avgGain = alpha*gains[i-1] + (1-alpha)*avgGain
		avgLoss = alpha*losses[i-1] + (1-alpha)*avgLoss
		out[i] = rsiFromAvg(avgGain, avgLoss)
	}
	return out
}

func rsiFromAvg(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// StochasticRSI is the hand-written Stochastic RSI. It shares a single
// denominator (the RSI high/low range over the lookback window) between %K
// and %D, rather than smoothing %K into %D with its own window the way
// TA-Lib does. This is the bug named in spec.md §9 — production STOCHRSI
// in internal/kernels does not reuse this function.
func StochasticRSI(closes []float64, rsiPeriod, stochPeriod int) (k, d []float64) {
	rsi := RSI(closes, rsiPeriod)
	n := len(rsi)
	k = make([]float64, n)
	d = make([]float64, n)
	for i := range k {
		k[i] = math.NaN()
		d[i] = math.NaN()
	}
	warmup := rsiPeriod + stochPeriod - 1
	for i := warmup; i < n; i++ {
		window := rsi[i-stochPeriod+1 : i+1]
		lo, hi := window[0], window[0]
		for _, v := range window {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		denom := hi - lo
		if denom == 0 {
			k[i] = 0
		} else {
			k[i] = (rsi[i] - lo) / denom * 100
		}
		// Bug: %D reuses the same single-window denominator instead of
		// smoothing %K over its own window.
		d[i] = k[i]
	}
	return k, d
}

// CinarRSI calls through to github.com/cinar/indicator's high-level Rsi,
// the library the teacher's own TechnicalIndicatorService called before
// deprecating it in favour of a hand-written, TradingView-compatible
// implementation over precision disagreements — the same kind of
// cross-implementation divergence this package exists to characterize.
// The library ignores period and always computes a 14-period RSI.
func CinarRSI(closes []float64) []float64 {
	_, values := indicator.Rsi(closes)
	return values
}

// BollingerBands is the hand-written Bollinger Bands calculator.
func BollingerBands(closes []float64, period int, devMultiplier float64) (upper, middle, lower []float64) {
	n := len(closes)
	if n == 0 || period <= 0 {
		return nil, nil, nil
	}
	upper = make([]float64, n)
	middle = make([]float64, n)
	lower = make([]float64, n)
	for i := 0; i < period-1 && i < n; i++ {
		upper[i], middle[i], lower[i] = math.NaN(), math.NaN(), math.NaN()
	}
	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]
		mean := stat.Mean(window, nil)
		sd := stat.StdDev(window, nil)
		middle[i] = mean
		upper[i] = mean + devMultiplier*sd
		lower[i] = mean - devMultiplier*sd
	}
	return upper, middle, lower
}
