// Package completeness implements the in-process Completeness Cache:
// a mapping from job fingerprint to a freshness record (coverage percent,
// last-calculated timestamp, complete flag), rebuilt from the persistence
// gateway on startup and on periodic refresh, and consulted by the
// producer as a fast-path skip.
//
// Grounded on internal/analytics/cache/indicator_cache.go's
// sync.RWMutex + fastcache pairing: the RWMutex-guarded map stays the hot
// path here (reads concurrent, writes exclusive) because the TTL/coverage
// derivation below depends on exact record contents, not a byte-serialized
// approximation; fastcache instead backs a size-metric mirror exercised by
// Stats(), keeping that teacher dependency wired to its original purpose
// (estimating resident cache bytes) without sitting on the correctness path.
package completeness

import (
	"sync"
	"time"

	"indicatorworker/internal/domain"
	"indicatorworker/pkg/log"

	"github.com/VictoriaMetrics/fastcache"
)

// DefaultTTL is the freshness window for a cached record (spec.md §4.3):
// a record older than this is treated as absent by Get.
const DefaultTTL = 30 * time.Minute

// FixedWindow is the literal 24h freshness window spec.md §4.3 step 5
// names directly. WindowFor resolves the interval-aware variant spec.md
// §9's Open Questions flags as a valid implementer choice; tests pin
// FixedWindow explicitly where the spec's own worked examples assume it.
const FixedWindow = 24 * time.Hour

// Stats summarises cache occupancy for the worker's /status surface.
type Stats struct {
	Total      int
	Complete   int
	Incomplete int
	BytesUsed  uint64
}

// Cache maps fingerprint key to CompletenessRecord. The zero value is not
// usable; construct with New.
type Cache struct {
	mu      sync.RWMutex
	records map[string]domain.CompletenessRecord
	mirror  *fastcache.Cache
	ttl     time.Duration
}

// New builds an empty cache. sizeMB bounds the fastcache mirror used only
// for Stats()'s byte estimate.
func New(sizeMB int) *Cache {
	if sizeMB <= 0 {
		sizeMB = 32
	}
	return &Cache{
		records: make(map[string]domain.CompletenessRecord),
		mirror:  fastcache.New(sizeMB * 1024 * 1024),
		ttl:     DefaultTTL,
	}
}

// WithTTL overrides the default freshness TTL. Returns the receiver for
// chaining at construction time.
func (c *Cache) WithTTL(ttl time.Duration) *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
	return c
}

// Get returns the record for key and whether it is present AND fresh
// (updated-at within the TTL). A stale record is treated as absent.
func (c *Cache) Get(key string) (domain.CompletenessRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[key]
	if !ok {
		return domain.CompletenessRecord{}, false
	}
	if time.Since(rec.UpdatedAt) > c.ttl {
		return domain.CompletenessRecord{}, false
	}
	return rec, true
}

// Upsert stores rec under key, stamping UpdatedAt to now, and mirrors a
// tiny marker into the fastcache instance so Stats() can report resident
// bytes.
func (c *Cache) Upsert(key string, rec domain.CompletenessRecord) {
	rec.UpdatedAt = time.Now()
	c.mu.Lock()
	c.records[key] = rec
	c.mu.Unlock()
	c.mirror.Set([]byte(key), marshalMirror(rec))
}

// Remove deletes the record for key, if present.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	delete(c.records, key)
	c.mu.Unlock()
	c.mirror.Del([]byte(key))
}

// Clear empties the cache, used before a full rebuild.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.records = make(map[string]domain.CompletenessRecord)
	c.mu.Unlock()
	c.mirror.Reset()
}

// Stats reports total/complete/incomplete counts (spec.md §9 invariant:
// stats(total) = complete + incomplete always holds) plus the fastcache
// mirror's resident byte estimate.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Stats{Total: len(c.records)}
	for _, rec := range c.records {
		if rec.Complete {
			s.Complete++
		} else {
			s.Incomplete++
		}
	}
	var fstats fastcache.Stats
	c.mirror.UpdateStats(&fstats)
	s.BytesUsed = fstats.BytesSize
	return s
}

// Derive computes a CompletenessRecord from fresh store state per spec.md
// §4.3 steps 4-5: coverage_percent clamped to [0,100] from the fraction of
// the candle range covered by calculated output, and complete iff the
// latest candle is within the freshness window of the last calculation AND
// coverage is at least 95%.
func Derive(fp domain.Fingerprint, candleRange domain.CandleRange, lastCalculated time.Time, count int64, window time.Duration) domain.CompletenessRecord {
	rec := domain.CompletenessRecord{
		Fingerprint:      fp,
		FirstCandleTime:  candleRange.First,
		LastCandleTime:   candleRange.Last,
		LastCalculatedAt: lastCalculated,
		DataCount:        count,
	}
	if window <= 0 {
		window = FixedWindow
	}
	rec.CoveragePercent = coveragePercent(candleRange.First, candleRange.Last, lastCalculated)
	rec.Complete = isComplete(candleRange.Last, lastCalculated, rec.CoveragePercent, window)
	return rec
}

func coveragePercent(first, last, lastCalc time.Time) int {
	if first.IsZero() || last.IsZero() || lastCalc.IsZero() {
		return 0
	}
	total := last.Sub(first)
	if total <= 0 {
		return 0
	}
	covered := lastCalc.Sub(first)
	pct := float64(covered) / float64(total) * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return int(pct)
}

func isComplete(lastCandle, lastCalc time.Time, coveragePct int, window time.Duration) bool {
	if lastCandle.IsZero() || lastCalc.IsZero() {
		return false
	}
	return lastCandle.Sub(lastCalc) <= window && coveragePct >= 95
}

// WindowFor resolves the freshness window used by Derive/isComplete for a
// given candle interval, per spec.md §9's interval-aware variant of the
// fixed 24h check: max(24h, 3x the interval), so a weekly or monthly
// interval is not permanently marked stale the moment 24h elapses since its
// own natural candle spacing already exceeds that window.
func WindowFor(interval string, intervalDuration time.Duration) time.Duration {
	if intervalDuration <= 0 {
		return FixedWindow
	}
	w := 3 * intervalDuration
	if w < FixedWindow {
		return FixedWindow
	}
	return w
}

// Rebuild replaces the cache contents from a supplier function, grounded
// on the teacher's GetOrCalculate pattern of computing under lock only
// when the read misses. Rebuild receives the fingerprint key list already
// resolved by the caller (the worker) and calls build once per key for that
// key's record; a build error for one key is logged and that key is skipped rather than
// aborting the whole rebuild, since a partial rebuild is strictly safer
// than serving a stale cache forever (the cache is advisory, spec.md §4.3).
func (c *Cache) Rebuild(keys []string, build func(key string) (domain.CompletenessRecord, error)) {
	fresh := make(map[string]domain.CompletenessRecord, len(keys))
	for _, key := range keys {
		rec, err := build(key)
		if err != nil {
			log.StageWarn("completeness", "rebuild: skipping fingerprint", log.Fields{"key": key, "error": err.Error()})
			continue
		}
		rec.UpdatedAt = time.Now()
		fresh[key] = rec
	}
	c.mu.Lock()
	c.records = fresh
	c.mu.Unlock()
	c.mirror.Reset()
	for key, rec := range fresh {
		c.mirror.Set([]byte(key), marshalMirror(rec))
	}
}

// marshalMirror produces a tiny fixed-shape byte encoding of rec for the
// fastcache size mirror; it is never read back, only sized.
func marshalMirror(rec domain.CompletenessRecord) []byte {
	b := make([]byte, 0, 32)
	b = append(b, byte(rec.CoveragePercent))
	if rec.Complete {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	ts, _ := rec.UpdatedAt.MarshalBinary()
	b = append(b, ts...)
	return b
}
