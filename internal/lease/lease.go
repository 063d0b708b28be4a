// Package lease implements the In-Flight Lease (spec.md §4.4): a
// best-effort suppressor, backed by Redis, that prevents two overlapping
// producer sweeps from enqueuing the same fingerprint twice. It is never a
// lock — correctness of the worker relies on the gateway's idempotent
// upsert, not on this package.
//
// Grounded on pkg/cache/redis.go (RedisConfig, NewRedisStore) and
// pkg/cache/cache.go's Manager, generalised from its inmem+redis
// string-value dual-write into a lease-shaped dual-read/write keyed on
// fingerprint with a payload and independent TTLs.
package lease

import (
	"context"
	"encoding/json"
	"time"

	"indicatorworker/internal/domain"
	"indicatorworker/pkg/cache"
	"indicatorworker/pkg/log"
	"indicatorworker/pkg/workerrors"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is the Redis lease TTL (spec.md §4.4 step 3).
const DefaultTTL = 10 * time.Minute

// localShadowTTL is kept strictly below DefaultTTL so a stale local
// "absent" can only cause a redundant, idempotent recheck against Redis —
// never a false double-enqueue — if Redis's own TTL reclaim lags the
// local shadow clearing first.
const localShadowTTL = 8 * time.Minute

// Payload is the value stored at a lease key (spec.md §4.4 step 3).
type Payload struct {
	Status   string    `json:"status"`
	QueuedAt time.Time `json:"queued_at"`
}

// Lease wraps a Redis client plus a short-TTL local shadow so a hot sweep
// loop does not round-trip Redis for every enabled config on every tick.
// Redis remains authoritative: Exists only trusts a local "present" hit,
// never a local "absent" beyond what the shadow TTL allows before falling
// back to Redis.
type Lease struct {
	redis *redis.Client
	local *gocache.Cache
}

// New builds a Lease over an already-connected Redis client.
func New(client *redis.Client) *Lease {
	return &Lease{
		redis: client,
		local: cache.NewInMemoryCache(cache.InMemConfig{TTL: localShadowTTL, CleanUpTTL: localShadowTTL / 2}),
	}
}

// Exists reports whether a lease is currently held for fingerprint fp under
// kind (spec.md §4.4 step 1). A local shadow hit short-circuits Redis; a
// local miss always confirms against Redis before returning false.
func (l *Lease) Exists(ctx context.Context, fp domain.Fingerprint, kind domain.IndicatorKind) (bool, error) {
	key := fp.LeaseKey(kind)
	if _, found := l.local.Get(key); found {
		return true, nil
	}
	n, err := l.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, workerrors.New(workerrors.LeaseIO, fp.Key(), err).WithMessage("lease exists check failed")
	}
	present := n > 0
	if present {
		l.local.Set(key, struct{}{}, localShadowTTL)
	}
	return present, nil
}

// Acquire sets the lease for fp (spec.md §4.4 step 3): status "processing",
// queued_at now, TTL DefaultTTL.
func (l *Lease) Acquire(ctx context.Context, fp domain.Fingerprint, kind domain.IndicatorKind) error {
	key := fp.LeaseKey(kind)
	payload := Payload{Status: "processing", QueuedAt: time.Now()}
	b, err := json.Marshal(payload)
	if err != nil {
		return workerrors.New(workerrors.LeaseIO, fp.Key(), err).WithMessage("lease payload encode failed")
	}
	if err := l.redis.Set(ctx, key, b, DefaultTTL).Err(); err != nil {
		return workerrors.New(workerrors.LeaseIO, fp.Key(), err).WithMessage("lease acquire failed")
	}
	l.local.Set(key, struct{}{}, localShadowTTL)
	return nil
}

// Release deletes the lease for fp, called by the consumer on both success
// and error (spec.md §4.4: "Consumer deletes the key on success or on
// error"). A missing key is not an error — the TTL may already have
// reclaimed it.
func (l *Lease) Release(ctx context.Context, fp domain.Fingerprint, kind domain.IndicatorKind) {
	key := fp.LeaseKey(kind)
	l.local.Delete(key)
	if err := l.redis.Del(ctx, key).Err(); err != nil {
		log.StageWarn("lease", "release failed, relying on TTL reclaim", log.Fields{"fingerprint": fp.Key(), "error": err.Error()})
	}
}
