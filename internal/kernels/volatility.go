package kernels

import (
	"indicatorworker/internal/domain"

	"github.com/markcheno/go-talib"
)

// atrKernel wraps talib.Atr / talib.Natr.
type atrKernel struct {
	name string
	fn   func(high, low, close []float64, period int) []float64
}

func (k atrKernel) Name() string             { return k.name }
func (k atrKernel) InputShape() InputShape   { return HighLowClose }
func (k atrKernel) OutputShape() OutputShape { return Scalar }
func (k atrKernel) Defaults() map[string]any { return map[string]any{"period": 14.0} }

func (k atrKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	period, err := PositiveIntParam(params, "period")
	if err != nil {
		return nil, err
	}
	warm := lookback(k.name, params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := k.fn(series.High, series.Low, series.Close, period)
	return scalarPoints(out, warm), nil
}

// trangeKernel wraps talib.TRange (no parameters).
type trangeKernel struct{}

func (trangeKernel) Name() string             { return "TRANGE" }
func (trangeKernel) InputShape() InputShape   { return HighLowClose }
func (trangeKernel) OutputShape() OutputShape { return Scalar }
func (trangeKernel) Defaults() map[string]any { return map[string]any{} }

func (k trangeKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	warm := lookback("TRANGE", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.TRange(series.High, series.Low, series.Close)
	return scalarPoints(out, warm), nil
}

// stdDevKernel wraps talib.StdDev.
type stdDevKernel struct{}

func (stdDevKernel) Name() string             { return "STDDEV" }
func (stdDevKernel) InputShape() InputShape   { return CloseOnly }
func (stdDevKernel) OutputShape() OutputShape { return Scalar }
func (stdDevKernel) Defaults() map[string]any { return map[string]any{"period": 5.0} }

func (k stdDevKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	period, err := PositiveIntParam(params, "period")
	if err != nil {
		return nil, err
	}
	warm := lookback("STDDEV", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.StdDev(series.Close, period, 1.0)
	return scalarPoints(out, warm), nil
}

func volatilityKernels() []Kernel {
	return []Kernel{
		atrKernel{name: "ATR", fn: talib.Atr},
		atrKernel{name: "NATR", fn: talib.Natr},
		trangeKernel{},
		stdDevKernel{},
	}
}
