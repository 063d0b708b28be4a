package legacy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closesFixture() []float64 {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.5
	}
	return closes
}

func TestSMAWarmupIsNaN(t *testing.T) {
	out := SMA([]float64{1, 2, 3, 4, 5}, 3)
	for i := 0; i < 2; i++ {
		assert.True(t, math.IsNaN(out[i]), "expected NaN at warm-up index %d, got %v", i, out[i])
	}
	assert.Equal(t, 2.0, out[2])
	assert.Equal(t, 3.0, out[3])
	assert.Equal(t, 4.0, out[4])
}

func TestEMASeedsAtPeriodMinusOne(t *testing.T) {
	out := EMA([]float64{1, 2, 3, 4, 5}, 3)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.Equal(t, 2.0, out[2], "expected EMA seed at index 2 to equal the 3-period SMA (2)")
}

func TestRSIWarmupMatchesTALibConvention(t *testing.T) {
	closes := closesFixture()
	out := RSI(closes, 14)
	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(out[i]), "expected NaN before index 14, got value at %d: %v", i, out[i])
	}
	assert.False(t, math.IsNaN(out[14]), "expected a defined RSI value at index 14 (period)")
}

// TestStochasticRSISharesASingleDenominatorForKAndD pins the known bug
// named in this package's doc comment: %D is not an independent smoothing
// of %K, it is an exact copy of it.
func TestStochasticRSISharesASingleDenominatorForKAndD(t *testing.T) {
	closes := closesFixture()
	k, d := StochasticRSI(closes, 14, 5)
	foundDefined := false
	for i := range k {
		if math.IsNaN(k[i]) {
			continue
		}
		foundDefined = true
		assert.Equal(t, k[i], d[i], "expected %%K and %%D to be identical at index %d (known bug)", i)
	}
	require.True(t, foundDefined, "expected at least one defined %%K/%%D pair in the fixture")
}

func TestBollingerBandsMiddleIsSMA(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	upper, middle, lower := BollingerBands(closes, 3, 2)
	assert.Equal(t, 2.0, middle[2])
	assert.Equal(t, 3.0, middle[3])
	assert.Equal(t, 4.0, middle[4])
	for i := 2; i < len(closes); i++ {
		assert.Greater(t, upper[i], middle[i])
		assert.Less(t, lower[i], middle[i])
	}
}

// TestCinarRSIReturnsANonEmptySeries runs cinar/indicator's Rsi over the
// same fixture as the hand-written RSI and checks only that it returns a
// non-empty series; the two outputs are not compared.
func TestCinarRSIReturnsANonEmptySeries(t *testing.T) {
	closes := closesFixture()
	cinarOut := CinarRSI(closes)
	handOut := RSI(closes, 14)

	require.NotEmpty(t, cinarOut, "expected cinar/indicator to return a non-empty series")
	// Both series are finite-length RSI computations over the same input;
	// they are not required to agree index-for-index or even share a
	// length convention, which is exactly the divergence this package
	// exists to characterize rather than paper over.
	_ = handOut
}
