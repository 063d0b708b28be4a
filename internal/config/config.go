// Package config loads the worker's configuration from a YAML file via
// viper, then layers spec.md §6's environment variables on top.
//
// Grounded on internal/trading/config/config.go's LoadConfig shape
// (viper.SetConfigName/SetConfigType/ReadInConfig/Unmarshal, wrapped with
// github.com/pkg/errors), pruned from the teacher's broker/strategy/
// dashboard sections down to what the core needs: database, redis,
// concurrency, and the completeness/lease TTLs.
package config

import (
	"os"
	"strconv"
	"time"

	"indicatorworker/pkg/cache"
	"indicatorworker/pkg/database"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var validate = validator.New()

// ServerConfig configures cmd/worker's minimal health/status HTTP surface
// (spec.md §6 CLI surface wraps this, not the other way round).
type ServerConfig struct {
	Port         string `mapstructure:"port" yaml:"port" validate:"required"`
	ReadTimeout  int    `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout" yaml:"write_timeout"`
}

// DatabaseConfig mirrors pkg/database.Config's YAML shape before
// ToDatabaseConfig copies it field by field (kept, like the teacher, as a distinct yaml-tagged
// struct so the store's internal Config type stays free of viper tags).
type DatabaseConfig struct {
	DataSource struct {
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Host     string `yaml:"host" validate:"required"`
		Port     string `yaml:"port"`
		Name     string `yaml:"name" validate:"required"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"dataSource"`
	MaxIdleConnections    int           `yaml:"maxIdleConnections"`
	MaxOpenConnections    int           `yaml:"maxOpenConnections"`
	MaxConnectionLifeTime time.Duration `yaml:"maxConnectionLifetime"`
	MaxConnectionIdleTime time.Duration `yaml:"maxConnectionIdletime"`
	Debug                 bool          `yaml:"debug"`
}

// RedisConfig mirrors pkg/cache.RedisConfig's YAML shape.
type RedisConfig struct {
	Host                  string        `yaml:"host"`
	Port                  string        `yaml:"port"`
	Database              int           `yaml:"database"`
	IdleConnectionTimeout time.Duration `yaml:"idleConnectionTimeout"`
	ConnectTimeout        time.Duration `yaml:"connectTimeout"`
	ReadTimeout           time.Duration `yaml:"readTimeout"`
	WriteTimeout          time.Duration `yaml:"writeTimeout"`
	PoolSize              int           `yaml:"poolSize"`
	MaxRetry              int           `yaml:"maxRetry"`
	MinIdleConns          int           `yaml:"minIdle"`
}

// WorkerConfig holds the core's own tunables (spec.md §6 env vars).
type WorkerConfig struct {
	Concurrency                int    `mapstructure:"concurrency" yaml:"concurrency"`
	CacheTTLSeconds            int    `mapstructure:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
	CompletenessCacheMinutes   int    `mapstructure:"completeness_cache_minutes" yaml:"completeness_cache_minutes"`
	LogLevel                   string `mapstructure:"log_level" yaml:"log_level"`
	LogDir                     string `mapstructure:"log_dir" yaml:"log_dir"`
}

// Config is the worker's complete configuration surface.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Redis    RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Worker   WorkerConfig   `mapstructure:"worker" yaml:"worker"`
}

// LoadConfig reads application.yaml (or application.dev.yaml under
// APP_ENV=dev) via viper, applies defaults, then layers spec.md §6's
// environment variables on top — env vars always win, matching a
// production worker's twelve-factor deployment expectation even though the
// teacher's own LoadConfig was file-only.
func LoadConfig() (*Config, error) {
	name := "application"
	if env := os.Getenv("APP_ENV"); env != "" {
		name = "application." + env
	}
	viper.SetConfigName(name)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	var cfg Config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "error reading config file")
		}
		// No config file: defaults + environment only, valid for a
		// container deployment driven entirely by env vars.
	} else if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "error unmarshalling config")
	}

	setDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Validate checks the struct tags set on Config's required fields (database
// host/name, server port) via go-playground/validator, grounded on
// internal/domain/indicator.go's StockScreeningCriteria validator tags. A
// worker with no database host or name configured cannot do anything
// useful, so LoadConfig refuses to hand back a Config that fails this.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Worker.Concurrency <= 0 {
		cfg.Worker.Concurrency = 0 // 0 resolved to NumCPU by cmd/worker
	}
	if cfg.Worker.CacheTTLSeconds <= 0 {
		cfg.Worker.CacheTTLSeconds = 3600
	}
	if cfg.Worker.CompletenessCacheMinutes <= 0 {
		cfg.Worker.CompletenessCacheMinutes = 30
	}
	if cfg.Worker.LogLevel == "" {
		cfg.Worker.LogLevel = "info"
	}
	if cfg.Worker.LogDir == "" {
		cfg.Worker.LogDir = "logs"
	}
}

// applyEnvOverrides layers spec.md §6's named environment variables on top
// of the file-loaded config: DB_HOST, DB_PORT, DB_USER, DB_PASSWORD,
// DB_NAME, REDIS_URL, CONCURRENCY, CACHE_TTL_SECONDS,
// COMPLETENESS_CACHE_MINUTES, and a log-level filter.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.DataSource.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		cfg.Database.DataSource.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.DataSource.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.DataSource.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.DataSource.Name = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.Concurrency = n
		}
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.CacheTTLSeconds = n
		}
	}
	if v := os.Getenv("COMPLETENESS_CACHE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Worker.CompletenessCacheMinutes = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Worker.LogLevel = v
	}
}

// ToDatabaseConfig converts the yaml-shaped DatabaseConfig into
// pkg/database.Config.
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		DataSource: database.DataSource{
			User:     c.Database.DataSource.User,
			Password: c.Database.DataSource.Password,
			Host:     c.Database.DataSource.Host,
			Port:     c.Database.DataSource.Port,
			DBName:   c.Database.DataSource.Name,
			SSLMode:  c.Database.DataSource.SSLMode,
		},
		MaxIdleConnections:    c.Database.MaxIdleConnections,
		MaxOpenConnections:    c.Database.MaxOpenConnections,
		MaxConnectionLifeTime: c.Database.MaxConnectionLifeTime,
		MaxConnectionIdleTime: c.Database.MaxConnectionIdleTime,
		Debug:                 c.Database.Debug,
	}
}

// ToRedisConfig converts the yaml-shaped RedisConfig into pkg/cache.RedisConfig.
func (c *Config) ToRedisConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Host:                  c.Redis.Host,
		Port:                  c.Redis.Port,
		Database:              c.Redis.Database,
		IdleConnectionTimeout: c.Redis.IdleConnectionTimeout,
		ConnectTimeout:        c.Redis.ConnectTimeout,
		ReadTimeout:           c.Redis.ReadTimeout,
		WriteTimeout:          c.Redis.WriteTimeout,
		PoolSize:              c.Redis.PoolSize,
		MaxRetry:              c.Redis.MaxRetry,
		MinIdleConns:          c.Redis.MinIdleConns,
		TTL:                   time.Duration(c.Worker.CacheTTLSeconds) * time.Second,
	}
}
