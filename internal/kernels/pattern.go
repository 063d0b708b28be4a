package kernels

import (
	"math"

	"indicatorworker/internal/domain"
	"indicatorworker/pkg/workerrors"

	"github.com/markcheno/go-talib"
)

// patternKernel wraps a talib CDL* function returning signed magnitudes in
// [-100,100]. A record is emitted only where the talib output is nonzero
// ("absence of a record at an index means no pattern at that candle" —
// spec.md §4.1); talib itself zero-fills both the true warm-up region and
// candles where no pattern was detected, so skipping zeros covers both
// without a separate lookback table for the pattern family.
type patternKernel struct {
	name string
	fn   func(open, high, low, close []float64) []int
}

func (k patternKernel) Name() string             { return k.name }
func (k patternKernel) InputShape() InputShape   { return FullOHLCV }
func (k patternKernel) OutputShape() OutputShape { return Pattern }
func (k patternKernel) Defaults() map[string]any { return map[string]any{} }

func (k patternKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	if err := requireLength(series.Len(), 0); err != nil {
		return nil, err
	}
	out := k.fn(series.Open, series.High, series.Low, series.Close)
	return patternPoints(k.name, out), nil
}

// penetrationPatternKernel wraps a talib CDL* function that additionally
// takes a penetration parameter (the morning-star / evening-star family).
type penetrationPatternKernel struct {
	name string
	fn   func(open, high, low, close []float64, penetration float64) []int
}

func (k penetrationPatternKernel) Name() string             { return k.name }
func (k penetrationPatternKernel) InputShape() InputShape   { return FullOHLCV }
func (k penetrationPatternKernel) OutputShape() OutputShape { return Pattern }
func (k penetrationPatternKernel) Defaults() map[string]any {
	return map[string]any{"penetration": 0.3}
}

func (k penetrationPatternKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	penetration, err := FloatParam(params, "penetration")
	if err != nil {
		return nil, err
	}
	if penetration < 0 {
		return nil, workerrors.New(workerrors.InvalidParameter, "", nil).WithMessage("penetration must be non-negative")
	}
	if err := requireLength(series.Len(), 0); err != nil {
		return nil, err
	}
	out := k.fn(series.Open, series.High, series.Low, series.Close, penetration)
	return patternPoints(k.name, out), nil
}

func patternPoints(name string, out []int) []Point {
	var pts []Point
	for i, v := range out {
		if v == 0 {
			continue
		}
		typ := "bullish"
		if v < 0 {
			typ = "bearish"
		}
		strength := math.Abs(float64(v)) / 100.0
		pts = append(pts, Point{Index: i, Value: domain.RecordValue(map[string]any{
			"pattern":  name,
			"type":     typ,
			"strength": strength,
		})})
	}
	return pts
}

func patternKernels() []Kernel {
	return []Kernel{
		patternKernel{name: "CDLENGULFING", fn: talib.CdlEngulfing},
		patternKernel{name: "CDLDOJI", fn: talib.CdlDoji},
		patternKernel{name: "CDLHAMMER", fn: talib.CdlHammer},
		patternKernel{name: "CDLHANGINGMAN", fn: talib.CdlHangingMan},
		patternKernel{name: "CDLSHOOTINGSTAR", fn: talib.CdlShootingStar},
		patternKernel{name: "CDLHARAMI", fn: talib.CdlHarami},
		patternKernel{name: "CDLPIERCING", fn: talib.CdlPiercing},
		patternKernel{name: "CDL3WHITESOLDIERS", fn: talib.Cdl3WhiteSoldiers},
		patternKernel{name: "CDL3BLACKCROWS", fn: talib.Cdl3BlackCrows},
		penetrationPatternKernel{name: "CDLMORNINGSTAR", fn: talib.CdlMorningStar},
		penetrationPatternKernel{name: "CDLEVENINGSTAR", fn: talib.CdlEveningStar},
		penetrationPatternKernel{name: "CDLDARKCLOUDCOVER", fn: talib.CdlDarkCloudCover},
	}
}
