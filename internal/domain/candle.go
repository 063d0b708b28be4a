package domain

import "time"

// Candle is one immutable OHLCV bar for a (symbol, interval) pair.
// Open-times for a given (symbol, interval) are assumed strictly increasing
// and uniformly spaced by the interval; the core does not enforce this, it
// is the loader's contract.
type Candle struct {
	Symbol    string
	Interval  string
	OpenTime  time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	CloseTime time.Time
}

// CandleSeries is a column-oriented view over a contiguous run of candles
// for one (symbol, interval). All columns share the same length. Kernels
// consume this shape exclusively.
type CandleSeries struct {
	Symbol    string
	Interval  string
	OpenTime  []time.Time
	Open      []float64
	High      []float64
	Low       []float64
	Close     []float64
	Volume    []float64
	CloseTime []time.Time
}

// Len returns the number of candles in the series.
func (s *CandleSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Close)
}

// Empty reports whether the series carries no candles.
func (s *CandleSeries) Empty() bool {
	return s.Len() == 0
}

// NewCandleSeries builds a CandleSeries from an ordered slice of candles.
// Candles must already be ordered by OpenTime ascending; NewCandleSeries
// does not sort.
func NewCandleSeries(symbol, interval string, candles []Candle) *CandleSeries {
	s := &CandleSeries{
		Symbol:    symbol,
		Interval:  interval,
		OpenTime:  make([]time.Time, len(candles)),
		Open:      make([]float64, len(candles)),
		High:      make([]float64, len(candles)),
		Low:       make([]float64, len(candles)),
		Close:     make([]float64, len(candles)),
		Volume:    make([]float64, len(candles)),
		CloseTime: make([]time.Time, len(candles)),
	}
	for i, c := range candles {
		s.OpenTime[i] = c.OpenTime
		s.Open[i] = c.Open
		s.High[i] = c.High
		s.Low[i] = c.Low
		s.Close[i] = c.Close
		s.Volume[i] = c.Volume
		s.CloseTime[i] = c.CloseTime
	}
	return s
}

// CandleRange is the (first, last) open-time bound for a (symbol, interval)
// pair, as reported by the gateway's read-candle-range operation.
type CandleRange struct {
	First time.Time
	Last  time.Time
}
