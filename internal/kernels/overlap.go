package kernels

import (
	"indicatorworker/internal/domain"

	"github.com/markcheno/go-talib"
)

// maKernel wraps a single-output moving-average style talib function of
// the shape func([]float64, int) []float64.
type maKernel struct {
	name string
	fn   func(inReal []float64, period int) []float64
}

func (k maKernel) Name() string           { return k.name }
func (k maKernel) InputShape() InputShape { return CloseOnly }
func (k maKernel) OutputShape() OutputShape { return Scalar }
func (k maKernel) Defaults() map[string]any {
	return map[string]any{"period": defaultPeriod(k.name)}
}

func (k maKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	period, err := PositiveIntParam(params, "period")
	if err != nil {
		return nil, err
	}
	warm := lookback(k.name, params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := k.fn(series.Close, period)
	return scalarPoints(out, warm), nil
}

func defaultPeriod(name string) float64 {
	switch name {
	case "RSI", "ATR", "NATR", "ADX", "CCI", "MFI", "WILLR":
		return 14
	case "SMA", "BBANDS":
		return 20
	case "EMA":
		return 9
	case "MOM", "ROC":
		return 10
	case "STDDEV":
		return 5
	case "WMA", "DEMA", "TEMA", "TRIMA":
		return 14
	default:
		return 14
	}
}

// bbandsKernel wraps talib.BBands (multi-output: upper/middle/lower/width).
type bbandsKernel struct{}

func (bbandsKernel) Name() string             { return "BBANDS" }
func (bbandsKernel) InputShape() InputShape   { return CloseOnly }
func (bbandsKernel) OutputShape() OutputShape { return Record }
func (bbandsKernel) Defaults() map[string]any {
	return map[string]any{"period": 20.0, "deviation_up": 2.0, "deviation_down": 2.0, "ma_type": "SMA"}
}

func (k bbandsKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	period, err := PositiveIntParam(params, "period")
	if err != nil {
		return nil, err
	}
	devUp, err := FloatParam(params, "deviation_up")
	if err != nil {
		return nil, err
	}
	devDown, err := FloatParam(params, "deviation_down")
	if err != nil {
		return nil, err
	}
	warm := lookback("BBANDS", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	upper, middle, lower := talib.BBands(series.Close, period, devUp, devDown, talib.SMA)
	var pts []Point
	for i := warm; i < len(middle); i++ {
		pts = append(pts, Point{Index: i, Value: domain.RecordValue(map[string]any{
			"upper":  upper[i],
			"middle": middle[i],
			"lower":  lower[i],
			"width":  upper[i] - lower[i],
		})})
	}
	return pts, nil
}

// sarKernel wraps talib.Sar (high/low input, scalar output).
type sarKernel struct{}

func (sarKernel) Name() string             { return "SAR" }
func (sarKernel) InputShape() InputShape   { return HighLowClose }
func (sarKernel) OutputShape() OutputShape { return Scalar }
func (sarKernel) Defaults() map[string]any {
	return map[string]any{"acceleration": 0.02, "maximum": 0.2}
}

func (k sarKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	accel, err := FloatParam(params, "acceleration")
	if err != nil {
		return nil, err
	}
	maxAccel, err := FloatParam(params, "maximum")
	if err != nil {
		return nil, err
	}
	warm := lookback("SAR", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.Sar(series.High, series.Low, accel, maxAccel)
	return scalarPoints(out, warm), nil
}

func overlapKernels() []Kernel {
	return []Kernel{
		maKernel{name: "SMA", fn: talib.Sma},
		maKernel{name: "EMA", fn: talib.Ema},
		maKernel{name: "WMA", fn: talib.Wma},
		maKernel{name: "DEMA", fn: talib.Dema},
		maKernel{name: "TEMA", fn: talib.Tema},
		maKernel{name: "TRIMA", fn: talib.Trima},
		kamaKernel{},
		bbandsKernel{},
		sarKernel{},
	}
}

// kamaKernel wraps talib.Kama; spec.md also names fast_ema/slow_ema
// parameters which go-talib's Kama does not take (it uses the fixed
// 2/30 EMA constants internally, same as TA-Lib's reference KAMA) — they
// are accepted and validated but not forwarded, consistent with spec.md
// §9's "treat unknown keys as warnings, not errors" forward-compatibility
// stance applied here to recognised-but-unused keys.
type kamaKernel struct{}

func (kamaKernel) Name() string             { return "KAMA" }
func (kamaKernel) InputShape() InputShape   { return CloseOnly }
func (kamaKernel) OutputShape() OutputShape { return Scalar }
func (kamaKernel) Defaults() map[string]any {
	return map[string]any{"period": 20.0, "fast_ema": 2.0, "slow_ema": 30.0}
}

func (k kamaKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	period, err := PositiveIntParam(params, "period")
	if err != nil {
		return nil, err
	}
	if _, err := PositiveIntParam(params, "fast_ema"); err != nil {
		return nil, err
	}
	if _, err := PositiveIntParam(params, "slow_ema"); err != nil {
		return nil, err
	}
	warm := lookback("KAMA", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.Kama(series.Close, period)
	return scalarPoints(out, warm), nil
}
