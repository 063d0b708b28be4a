package completeness

import (
	"errors"
	"testing"
	"time"

	"indicatorworker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsAbsentForStaleRecord(t *testing.T) {
	c := New(1).WithTTL(time.Minute)
	rec := domain.CompletenessRecord{Complete: true}
	c.mu.Lock()
	rec.UpdatedAt = time.Now().Add(-2 * time.Minute)
	c.records["k"] = rec
	c.mu.Unlock()

	_, ok := c.Get("k")
	assert.False(t, ok, "expected a record older than the TTL to be reported absent")
}

func TestGetReturnsFreshRecord(t *testing.T) {
	c := New(1).WithTTL(time.Minute)
	c.Upsert("k", domain.CompletenessRecord{Complete: true, CoveragePercent: 100})

	rec, ok := c.Get("k")
	require.True(t, ok, "expected a just-upserted record to be present")
	assert.True(t, rec.Complete)
	assert.Equal(t, 100, rec.CoveragePercent)
}

func TestStatsTotalEqualsCompletePlusIncomplete(t *testing.T) {
	c := New(1)
	c.Upsert("a", domain.CompletenessRecord{Complete: true})
	c.Upsert("b", domain.CompletenessRecord{Complete: false})
	c.Upsert("c", domain.CompletenessRecord{Complete: false})

	s := c.Stats()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, s.Total, s.Complete+s.Incomplete)
	assert.Equal(t, 1, s.Complete)
	assert.Equal(t, 2, s.Incomplete)
}

func TestRemoveAndClear(t *testing.T) {
	c := New(1)
	c.Upsert("a", domain.CompletenessRecord{})
	c.Upsert("b", domain.CompletenessRecord{})
	c.Remove("a")
	_, ok := c.Get("a")
	assert.False(t, ok, "expected removed key to be absent")
	_, ok = c.Get("b")
	assert.True(t, ok, "expected untouched key to remain present")
	c.Clear()
	assert.Equal(t, 0, c.Stats().Total, "expected empty cache after Clear")
}

func TestDeriveCompleteRequiresCoverageAndFreshness(t *testing.T) {
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	last := first.Add(100 * time.Hour)
	// lastCalculated covers ~99% of the range and is within the window of `last`.
	lastCalc := first.Add(99 * time.Hour)
	rec := Derive(domain.Fingerprint{Symbol: "BTCUSDT"}, domain.CandleRange{First: first, Last: last}, lastCalc, 100, FixedWindow)

	assert.GreaterOrEqual(t, rec.CoveragePercent, 95)
	assert.True(t, rec.Complete)
}

func TestDeriveIncompleteWhenStale(t *testing.T) {
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	last := first.Add(100 * time.Hour)
	// lastCalculated only covers the first half of the range: coverage too low.
	lastCalc := first.Add(50 * time.Hour)
	rec := Derive(domain.Fingerprint{Symbol: "BTCUSDT"}, domain.CandleRange{First: first, Last: last}, lastCalc, 50, FixedWindow)

	assert.False(t, rec.Complete, "expected record with ~50%% coverage to be incomplete")
}

func TestDeriveZeroTimesYieldIncomplete(t *testing.T) {
	rec := Derive(domain.Fingerprint{}, domain.CandleRange{}, time.Time{}, 0, 0)
	assert.False(t, rec.Complete, "expected zero-valued range to never be complete")
	assert.Equal(t, 0, rec.CoveragePercent)
}

func TestWindowForScalesWithInterval(t *testing.T) {
	assert.Equal(t, FixedWindow, WindowFor("1h", time.Hour), "expected the fixed 24h window for a 1h interval (3x1h < 24h)")
	weekly := 7 * 24 * time.Hour
	assert.Equal(t, 3*weekly, WindowFor("1w", weekly), "expected 3x the interval for a weekly candle")
}

func TestRebuildSkipsFailingKeysAndReplacesContents(t *testing.T) {
	c := New(1)
	c.Upsert("stale", domain.CompletenessRecord{})

	keys := []string{"ok", "broken"}
	c.Rebuild(keys, func(key string) (domain.CompletenessRecord, error) {
		if key == "broken" {
			return domain.CompletenessRecord{}, errors.New("boom")
		}
		return domain.CompletenessRecord{Complete: true}, nil
	})

	_, ok := c.Get("stale")
	assert.False(t, ok, "expected Rebuild to discard keys absent from the new key list")
	_, ok = c.Get("broken")
	assert.False(t, ok, "expected a failing build to leave its key absent")
	rec, ok := c.Get("ok")
	require.True(t, ok)
	assert.True(t, rec.Complete)
}
