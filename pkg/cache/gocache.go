package cache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// InMemConfig configures internal/lease's local shadow cache: a short-TTL
// mirror of the Redis lease store consulted first so a hot fingerprint
// doesn't round-trip to Redis on every producer sweep tick.
type InMemConfig struct {
	TTL        time.Duration `json:"ttl,omitempty"`
	CleanUpTTL time.Duration `json:"cleanupttl,omitempty"`
}

// NewInMemoryCache builds the local lease shadow. It is advisory only —
// Redis remains authoritative, so a stale or evicted local entry just
// costs an extra Redis round trip, never a correctness violation.
func NewInMemoryCache(cfg InMemConfig) *cache.Cache {
	return cache.New(cfg.TTL, cfg.CleanUpTTL)
}
