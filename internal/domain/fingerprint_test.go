package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalJSONSortsKeysAtEveryDepth(t *testing.T) {
	a := CanonicalJSON(map[string]any{"b": 1.0, "a": map[string]any{"z": 1.0, "y": 2.0}})
	b := CanonicalJSON(map[string]any{"a": map[string]any{"y": 2.0, "z": 1.0}, "b": 1.0})
	assert.Equal(t, a, b, "canonical forms should match regardless of map iteration order")
}

func TestCanonicalJSONEmptyMap(t *testing.T) {
	assert.Equal(t, "{}", CanonicalJSON(nil))
	assert.Equal(t, "{}", CanonicalJSON(map[string]any{}))
}

func TestFingerprintKeyIsStableAcrossEqualParams(t *testing.T) {
	f1 := Fingerprint{Symbol: "BTCUSDT", Interval: "1h", Name: "rsi", Params: map[string]any{"period": 14.0}}
	f2 := Fingerprint{Symbol: "BTCUSDT", Interval: "1h", Name: "rsi", Params: map[string]any{"period": 14.0}}
	assert.Equal(t, f1.Key(), f2.Key(), "equal fingerprints should produce the same key")
}

func TestFingerprintKeyDiffersOnParams(t *testing.T) {
	f1 := Fingerprint{Symbol: "BTCUSDT", Interval: "1h", Name: "rsi", Params: map[string]any{"period": 14.0}}
	f2 := Fingerprint{Symbol: "BTCUSDT", Interval: "1h", Name: "rsi", Params: map[string]any{"period": 21.0}}
	assert.NotEqual(t, f1.Key(), f2.Key(), "different parameters should produce different keys")
}

func TestLeaseKeyIncludesKind(t *testing.T) {
	f := Fingerprint{Symbol: "BTCUSDT", Interval: "1h", Name: "rsi", Params: map[string]any{}}
	oscKey := f.LeaseKey(KindOscillator)
	overlapKey := f.LeaseKey(KindOverlap)
	assert.NotEqual(t, oscKey, overlapKey, "lease keys should differ across kinds")
}
