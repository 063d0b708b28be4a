package workerrors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWrapsCauseAndPreservesKind(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := New(CandleRead, "BTCUSDT:1h:rsi:{}", cause).WithMessage("read failed")

	assert.Equal(t, CandleRead, err.Kind)
	assert.True(t, stderrors.Is(err, cause), "expected the original cause to be reachable via errors.Is")
}

func TestIsMatchesOnlyTheGivenKind(t *testing.T) {
	err := New(InsufficientData, "", nil)
	assert.True(t, Is(err, InsufficientData))
	assert.False(t, Is(err, CandleRead))
	assert.False(t, Is(stderrors.New("plain"), InsufficientData))
}

func TestKindOfDefaultsToKernelInternal(t *testing.T) {
	assert.Equal(t, KernelInternal, KindOf(stderrors.New("plain")))
	err := New(UpsertIO, "", nil)
	assert.Equal(t, UpsertIO, KindOf(err))
}

func TestFatalOnlyForInitFatal(t *testing.T) {
	assert.True(t, New(InitFatal, "", nil).Fatal())
	assert.False(t, New(CandleRead, "", nil).Fatal())
}

func TestRetryableIsFalseOnlyForInitFatal(t *testing.T) {
	assert.False(t, New(InitFatal, "", nil).Retryable())
	for _, k := range []Kind{ConfigLoad, CandleRead, InsufficientData, InvalidParameter, KernelInternal, UpsertConflict, UpsertIO, LeaseIO, CacheIO} {
		assert.True(t, New(k, "", nil).Retryable(), "expected kind %v to be retryable", k)
	}
}

func TestCommitsEmptyOnlyForInsufficientDataAndInvalidParameter(t *testing.T) {
	assert.True(t, New(InsufficientData, "", nil).CommitsEmpty())
	assert.True(t, New(InvalidParameter, "", nil).CommitsEmpty())
	assert.False(t, New(CandleRead, "", nil).CommitsEmpty())
}

func TestErrorStringIncludesKindAndMessage(t *testing.T) {
	err := New(CandleRead, "", stderrors.New("timeout")).WithMessage("could not read candles")
	require.NotEmpty(t, err.Error())
	assert.Contains(t, err.Error(), string(CandleRead))
	assert.Contains(t, err.Error(), "could not read candles")
}
