package kernels

import (
	"testing"

	"indicatorworker/internal/domain"
	"indicatorworker/pkg/workerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closeSeries(closes []float64) *domain.CandleSeries {
	return domain.NewCandleSeries("BTCUSDT", "1h", candlesFromCloses(closes))
}

func candlesFromCloses(closes []float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{Symbol: "BTCUSDT", Interval: "1h", Close: c, High: c, Low: c, Open: c}
	}
	return out
}

func TestRegistryLookupKnownAndUnknown(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Lookup("SMA")
	assert.True(t, ok, "expected SMA to be registered")
	_, ok = r.Lookup("NOT_A_REAL_INDICATOR")
	assert.False(t, ok, "expected an unregistered name to miss")
}

func TestComputeSMAEmitsOnePointPerIndexPastWarmup(t *testing.T) {
	r := NewRegistry()
	series := closeSeries([]float64{1, 2, 3, 4, 5})
	pts, err := r.Compute("SMA", series, map[string]any{"period": 3.0})
	require.NoError(t, err)

	// warmup for SMA is period-1 = 2, so defined indices are 2,3,4.
	require.Len(t, pts, 3)
	assert.Equal(t, 2, pts[0].Index)
	assert.Equal(t, 4, pts[len(pts)-1].Index)
}

func TestComputeUnknownKernelIsKernelInternal(t *testing.T) {
	r := NewRegistry()
	_, err := r.Compute("NOT_A_REAL_INDICATOR", closeSeries([]float64{1, 2, 3}), nil)
	require.Error(t, err)
	assert.True(t, workerrors.Is(err, workerrors.KernelInternal))
}

func TestComputeTooShortSeriesIsInsufficientData(t *testing.T) {
	r := NewRegistry()
	_, err := r.Compute("SMA", closeSeries([]float64{1, 2}), map[string]any{"period": 5.0})
	require.Error(t, err)
	assert.True(t, workerrors.Is(err, workerrors.InsufficientData))
}

func TestComputeNonPositivePeriodIsInvalidParameter(t *testing.T) {
	r := NewRegistry()
	_, err := r.Compute("SMA", closeSeries([]float64{1, 2, 3, 4, 5}), map[string]any{"period": 0.0})
	require.Error(t, err)
	assert.True(t, workerrors.Is(err, workerrors.InvalidParameter))
}

func TestComputeUsesDefaultsWhenParamsOmitted(t *testing.T) {
	r := NewRegistry()
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	pts, err := r.Compute("SMA", closeSeries(closes), nil)
	require.NoError(t, err)
	// default SMA period is 20, warmup 19, so indices 19..29 (11 points).
	assert.Len(t, pts, 11)
}
