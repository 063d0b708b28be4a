// Package cache wires the two cache backends internal/lease layers on top
// of each other: go-redis as the authoritative, shared lease store, and
// go-cache as a process-local shadow that avoids a round trip on every
// lease probe (spec.md §5 In-Flight Lease).
package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the authoritative lease store's Redis client,
// mirrored 1:1 from internal/config.RedisConfig so pkg/cache stays free of
// viper/yaml tags.
type RedisConfig struct {
	Host                  string        `yaml:"host"`
	Port                  string        `yaml:"port"`
	Database              int           `yaml:"database" json:"database,omitempty"`
	IdleConnectionTimeout time.Duration `yaml:"idleConnectionTimeout" json:"idle_connection_timeout,omitempty"`
	ConnectTimeout        time.Duration `yaml:"connectTimeout" json:"connect_timeout,omitempty"`
	ReadTimeout           time.Duration `yaml:"readTimeout" json:"read_timeout,omitempty"`
	WriteTimeout          time.Duration `yaml:"writeTimeout"  json:"write_timeout,omitempty"`
	PoolSize              int           `yaml:"poolSize"  json:"pool_size,omitempty"`
	MaxRetry              int           `yaml:"maxRetry"  json:"max_retry,omitempty"`
	MinIdleConns          int           `yaml:"minIdle"  json:"min_idle_conns,omitempty"`
	TTL                   time.Duration `yaml:"ttl"  json:"ttl,omitempty"`
	TCPNoDelay            bool          `yaml:"tcpNoDelay"  json:"tcp_no_delay,omitempty"`
	Disable               bool          `yaml:"disable"  json:"disable,omitempty"`
}

// NewRedisStore builds the *redis.Client internal/lease.Lease uses as its
// authoritative backend — the single source of truth for whether a lease
// key exists (spec.md §5: leases survive consumer crashes because Redis,
// not an in-process map, owns expiry).
func NewRedisStore(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + cfg.Port,
		MaxRetries:   cfg.MaxRetry,
		DialTimeout:  cfg.ConnectTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DB:           cfg.Database,
	})
}
