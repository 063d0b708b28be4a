package kernels

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// risingCloses returns a monotonically increasing close series, useful for
// pinning warm-up boundaries and sign/ordering invariants without needing
// to reproduce talib's exact floating point output by hand.
func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

func constantVolumes(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// TestComputeRSIProductionKernelRespectsWarmupAndBounds pins S2 (spec.md §8)
// against the production talib-backed kernel, not internal/kernels/legacy.
func TestComputeRSIProductionKernelRespectsWarmupAndBounds(t *testing.T) {
	r := NewRegistry()
	closes := risingCloses(30)
	pts, err := r.Compute("RSI", closeSeries(closes), map[string]any{"period": 14.0})
	require.NoError(t, err)

	// RSI's lookback is the plain period, so the first defined index is 14.
	require.NotEmpty(t, pts)
	assert.Equal(t, 14, pts[0].Index)
	assert.Equal(t, len(closes)-1, pts[len(pts)-1].Index)

	for _, p := range pts {
		assert.GreaterOrEqual(t, p.Value.Scalar, 0.0)
		assert.LessOrEqual(t, p.Value.Scalar, 100.0)
		assert.False(t, math.IsNaN(p.Value.Scalar))
	}
	// A strictly rising close series pushes RSI toward its ceiling.
	assert.Greater(t, pts[len(pts)-1].Value.Scalar, 50.0)
}

// TestComputeBBANDSProductionKernelOrdersBandsAndWarmup pins S3.
func TestComputeBBANDSProductionKernelOrdersBandsAndWarmup(t *testing.T) {
	r := NewRegistry()
	closes := risingCloses(30)
	pts, err := r.Compute("BBANDS", closeSeries(closes), map[string]any{
		"period": 20.0, "deviation_up": 2.0, "deviation_down": 2.0,
	})
	require.NoError(t, err)

	// warmup for BBANDS is period-1 = 19.
	require.NotEmpty(t, pts)
	assert.Equal(t, 19, pts[0].Index)

	for _, p := range pts {
		require.True(t, p.Value.IsRecord)
		upper := p.Value.Record["upper"].(float64)
		middle := p.Value.Record["middle"].(float64)
		lower := p.Value.Record["lower"].(float64)
		assert.GreaterOrEqual(t, upper, middle)
		assert.GreaterOrEqual(t, middle, lower)
		width := p.Value.Record["width"].(float64)
		assert.InDelta(t, upper-lower, width, 1e-9)
	}
}

// TestComputeOBVProductionKernelIsMonotonicOnARisingSeries pins S4: OBV has
// no warmup (lookback 0) and accumulates volume on every up-close.
func TestComputeOBVProductionKernelIsMonotonicOnARisingSeries(t *testing.T) {
	closes := risingCloses(20)
	series := closeSeries(closes)
	for i := range series.Volume {
		series.Volume[i] = 10
	}

	r := NewRegistry()
	pts, err := r.Compute("OBV", series, nil)
	require.NoError(t, err)

	require.Len(t, pts, len(closes))
	assert.Equal(t, 0, pts[0].Index, "OBV has no warmup")
	for i := 1; i < len(pts); i++ {
		assert.GreaterOrEqual(t, pts[i].Value.Scalar, pts[i-1].Value.Scalar,
			"OBV should never decrease on a strictly rising close series")
	}
}

// TestStochRSIProductionKernelSmoothsKAndDIndependently pins the Open
// Questions resolution for STOCHRSI directly against the production
// stochRSIKernel (internal/kernels/oscillator.go), not the legacy package's
// deliberately buggy single-denominator implementation
// (internal/kernels/legacy/legacy_test.go pins that one instead).
func TestStochRSIProductionKernelSmoothsKAndDIndependently(t *testing.T) {
	k := stochRSIKernel{}
	closes := make([]float64, 60)
	for i := range closes {
		// A non-monotonic wave gives %K enough movement that a
		// 3-period SMA of %K (proper %D) diverges from %K itself.
		closes[i] = 100 + 10*math.Sin(float64(i)/3.0)
	}
	series := closeSeries(closes)

	pts, err := k.Compute(series, map[string]any{
		"period": 14.0, "k_period": 5.0, "d_period": 3.0,
	})
	require.NoError(t, err)
	require.NotEmpty(t, pts)

	diverged := false
	for _, p := range pts {
		kVal := p.Value.Record["k"].(float64)
		dVal := p.Value.Record["d"].(float64)
		if math.Abs(kVal-dVal) > 1e-9 {
			diverged = true
			break
		}
	}
	assert.True(t, diverged, "expected independently-smoothed %%K/%%D to differ somewhere, unlike legacy's single-denominator bug")
}
