package kernels

import (
	"indicatorworker/internal/domain"
	"indicatorworker/pkg/workerrors"

	"github.com/markcheno/go-talib"
)

// obvKernel wraps talib.Obv (no parameters).
type obvKernel struct{}

func (obvKernel) Name() string             { return "OBV" }
func (obvKernel) InputShape() InputShape   { return FullOHLCV }
func (obvKernel) OutputShape() OutputShape { return Scalar }
func (obvKernel) Defaults() map[string]any { return map[string]any{} }

func (k obvKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	warm := lookback("OBV", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.Obv(series.Close, series.Volume)
	return scalarPoints(out, warm), nil
}

// adKernel wraps talib.Ad (no parameters).
type adKernel struct{}

func (adKernel) Name() string             { return "AD" }
func (adKernel) InputShape() InputShape   { return FullOHLCV }
func (adKernel) OutputShape() OutputShape { return Scalar }
func (adKernel) Defaults() map[string]any { return map[string]any{} }

func (k adKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	warm := lookback("AD", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.Ad(series.High, series.Low, series.Close, series.Volume)
	return scalarPoints(out, warm), nil
}

// adoscKernel wraps talib.AdOsc.
type adoscKernel struct{}

func (adoscKernel) Name() string             { return "ADOSC" }
func (adoscKernel) InputShape() InputShape   { return FullOHLCV }
func (adoscKernel) OutputShape() OutputShape { return Scalar }
func (adoscKernel) Defaults() map[string]any {
	return map[string]any{"fast_period": 3.0, "slow_period": 10.0}
}

func (k adoscKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	fast, err := PositiveIntParam(params, "fast_period")
	if err != nil {
		return nil, err
	}
	slow, err := PositiveIntParam(params, "slow_period")
	if err != nil {
		return nil, err
	}
	if slow <= fast {
		return nil, workerrors.New(workerrors.InvalidParameter, "", nil).WithMessage("slow_period must exceed fast_period for ADOSC")
	}
	warm := lookback("ADOSC", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	out := talib.AdOsc(series.High, series.Low, series.Close, series.Volume, fast, slow)
	return scalarPoints(out, warm), nil
}

// pvtKernel computes Price-Volume Trend, a cumulative indicator TA-Lib
// itself does not define (go-talib has no Pvt function); implemented
// directly per its standard definition since it is listed in spec.md's
// parameter table alongside OBV/AD/TRANGE with no parameters.
type pvtKernel struct{}

func (pvtKernel) Name() string             { return "PVT" }
func (pvtKernel) InputShape() InputShape   { return FullOHLCV }
func (pvtKernel) OutputShape() OutputShape { return Scalar }
func (pvtKernel) Defaults() map[string]any { return map[string]any{} }

func (k pvtKernel) Compute(series *domain.CandleSeries, params map[string]any) ([]Point, error) {
	warm := lookback("PVT", params)
	if err := requireLength(series.Len(), warm); err != nil {
		return nil, err
	}
	n := series.Len()
	out := make([]float64, n)
	cumulative := 0.0
	for i := 1; i < n; i++ {
		prev := series.Close[i-1]
		if prev != 0 {
			cumulative += (series.Close[i] - prev) / prev * series.Volume[i]
		}
		out[i] = cumulative
	}
	return scalarPoints(out, warm), nil
}

func volumeKernels() []Kernel {
	return []Kernel{
		obvKernel{},
		adKernel{},
		adoscKernel{},
		pvtKernel{},
	}
}
