package kernels

import (
	"indicatorworker/internal/domain"
	"indicatorworker/pkg/workerrors"

	"github.com/markcheno/go-talib"
)

// rsiKernel wraps talib.Rsi.
type rsiKernel struct{}

func (rsiKernel) Name() string             { return "RSI" }
func (rsiKernel) InputShape() InputShape   { return CloseOnly }
func (rsiKernel) OutputShape() OutputShape { return Scalar }
func (rsiKernel) Defaults() map[string]any { return map[string]any{"period": 14.0} }

func (k rsiKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	period, err := PositiveIntParam(params, "period")
	if err != nil {
		return nil, err
	}
	warm := lookback("RSI", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.Rsi(series.Close, period)
	return scalarPoints(out, warm), nil
}

// macdKernel wraps talib.Macd (record output: macd/signal/histogram).
type macdKernel struct{}

func (macdKernel) Name() string             { return "MACD" }
func (macdKernel) InputShape() InputShape   { return CloseOnly }
func (macdKernel) OutputShape() OutputShape { return Record }
func (macdKernel) Defaults() map[string]any {
	return map[string]any{"fast_period": 12.0, "slow_period": 26.0, "signal_period": 9.0}
}

func (k macdKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	fast, err := PositiveIntParam(params, "fast_period")
	if err != nil {
		return nil, err
	}
	slow, err := PositiveIntParam(params, "slow_period")
	if err != nil {
		return nil, err
	}
	signal, err := PositiveIntParam(params, "signal_period")
	if err != nil {
		return nil, err
	}
	if slow <= fast {
		return nil, workerrors.New(workerrors.InvalidParameter, "", nil).WithMessage("slow_period must exceed fast_period for MACD")
	}
	warm := lookback("MACD", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	macd, sig, hist := talib.Macd(series.Close, fast, slow, signal)
	var pts []Point
	for i := warm; i < len(macd); i++ {
		pts = append(pts, Point{Index: i, Value: domain.RecordValue(map[string]any{
			"macd": macd[i], "signal": sig[i], "histogram": hist[i],
		})})
	}
	return pts, nil
}

// ppoKernel wraps talib.Ppo.
type ppoKernel struct{}

func (ppoKernel) Name() string             { return "PPO" }
func (ppoKernel) InputShape() InputShape   { return CloseOnly }
func (ppoKernel) OutputShape() OutputShape { return Scalar }
func (ppoKernel) Defaults() map[string]any {
	return map[string]any{"fast_period": 12.0, "slow_period": 26.0, "signal_period": 9.0}
}

func (k ppoKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	fast, err := PositiveIntParam(params, "fast_period")
	if err != nil {
		return nil, err
	}
	slow, err := PositiveIntParam(params, "slow_period")
	if err != nil {
		return nil, err
	}
	if slow <= fast {
		return nil, workerrors.New(workerrors.InvalidParameter, "", nil).WithMessage("slow_period must exceed fast_period for PPO")
	}
	warm := lookback("PPO", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.Ppo(series.Close, fast, slow, talib.SMA)
	return scalarPoints(out, warm), nil
}

// stochKernel wraps talib.Stoch (record output: k/d).
type stochKernel struct{}

func (stochKernel) Name() string             { return "STOCH" }
func (stochKernel) InputShape() InputShape   { return HighLowClose }
func (stochKernel) OutputShape() OutputShape { return Record }
func (stochKernel) Defaults() map[string]any {
	return map[string]any{"k_period": 14.0, "slowing": 3.0, "d_period": 3.0, "ma_type": "SMA"}
}

func (k stochKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	kPeriod, err := PositiveIntParam(params, "k_period")
	if err != nil {
		return nil, err
	}
	slowing, err := PositiveIntParam(params, "slowing")
	if err != nil {
		return nil, err
	}
	dPeriod, err := PositiveIntParam(params, "d_period")
	if err != nil {
		return nil, err
	}
	warm := lookback("STOCH", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	kOut, dOut := talib.Stoch(series.High, series.Low, series.Close, kPeriod, slowing, talib.SMA, dPeriod, talib.SMA)
	var pts []Point
	for i := warm; i < len(kOut); i++ {
		pts = append(pts, Point{Index: i, Value: domain.RecordValue(map[string]any{"k": kOut[i], "d": dOut[i]})})
	}
	return pts, nil
}

// stochRSIKernel wraps talib.StochRsi, which performs independent %K/%D
// smoothing — the TA-Lib-correct definition pinned by spec.md §9 Open
// Questions, as opposed to the teacher's hand-written single-denominator
// StochasticRSI in internal/kernels/legacy.
type stochRSIKernel struct{}

func (stochRSIKernel) Name() string             { return "STOCHRSI" }
func (stochRSIKernel) InputShape() InputShape   { return CloseOnly }
func (stochRSIKernel) OutputShape() OutputShape { return Record }
func (stochRSIKernel) Defaults() map[string]any {
	return map[string]any{"period": 14.0, "k_period": 5.0, "d_period": 3.0, "ma_type": "SMA"}
}

func (k stochRSIKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	period, err := PositiveIntParam(params, "period")
	if err != nil {
		return nil, err
	}
	kPeriod, err := PositiveIntParam(params, "k_period")
	if err != nil {
		return nil, err
	}
	dPeriod, err := PositiveIntParam(params, "d_period")
	if err != nil {
		return nil, err
	}
	warm := lookback("STOCHRSI", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	kOut, dOut := talib.StochRsi(series.Close, period, kPeriod, dPeriod, talib.SMA)
	var pts []Point
	for i := warm; i < len(kOut); i++ {
		pts = append(pts, Point{Index: i, Value: domain.RecordValue(map[string]any{"k": kOut[i], "d": dOut[i]})})
	}
	return pts, nil
}

// hlcKernel wraps a single-output talib function taking (high, low, close, period).
type hlcKernel struct {
	name string
	fn   func(inHigh, inLow, inClose []float64, period int) []float64
}

func (k hlcKernel) Name() string             { return k.name }
func (k hlcKernel) InputShape() InputShape   { return HighLowClose }
func (k hlcKernel) OutputShape() OutputShape { return Scalar }
func (k hlcKernel) Defaults() map[string]any {
	return map[string]any{"period": defaultPeriod(k.name)}
}

func (k hlcKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
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

// mfiKernel wraps talib.Mfi (adds volume input).
type mfiKernel struct{}

func (mfiKernel) Name() string             { return "MFI" }
func (mfiKernel) InputShape() InputShape   { return FullOHLCV }
func (mfiKernel) OutputShape() OutputShape { return Scalar }
func (mfiKernel) Defaults() map[string]any { return map[string]any{"period": 14.0} }

func (k mfiKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	period, err := PositiveIntParam(params, "period")
	if err != nil {
		return nil, err
	}
	warm := lookback("MFI", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.Mfi(series.High, series.Low, series.Close, series.Volume, period)
	return scalarPoints(out, warm), nil
}

// closeOnlyKernel wraps a single-output talib function of (close, period).
type closeOnlyKernel struct {
	name string
	fn   func(inReal []float64, period int) []float64
}

func (k closeOnlyKernel) Name() string             { return k.name }
func (k closeOnlyKernel) InputShape() InputShape   { return CloseOnly }
func (k closeOnlyKernel) OutputShape() OutputShape { return Scalar }
func (k closeOnlyKernel) Defaults() map[string]any {
	return map[string]any{"period": defaultPeriod(k.name)}
}

func (k closeOnlyKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
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

func oscillatorKernels() []Kernel {
	return []Kernel{
		rsiKernel{},
		macdKernel{},
		ppoKernel{},
		stochKernel{},
		stochRSIKernel{},
		hlcKernel{name: "CCI", fn: talib.Cci},
		hlcKernel{name: "WILLR", fn: talib.WillR},
		hlcKernel{name: "ADX", fn: talib.Adx},
		mfiKernel{},
		closeOnlyKernel{name: "MOM", fn: talib.Mom},
		closeOnlyKernel{name: "ROC", fn: talib.Roc},
	}
}
