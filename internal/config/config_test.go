package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaultsFillsZeroValuesOnly(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 3600, cfg.Worker.CacheTTLSeconds)
	assert.Equal(t, 30, cfg.Worker.CompletenessCacheMinutes)
	assert.Equal(t, "info", cfg.Worker.LogLevel)

	cfg.Server.Port = "9090"
	setDefaults(cfg)
	assert.Equal(t, "9090", cfg.Server.Port, "setDefaults should leave an already-set port alone")
}

func TestApplyEnvOverridesTakesPrecedenceOverFileValues(t *testing.T) {
	cfg := &Config{}
	cfg.Database.DataSource.Host = "file-host"
	cfg.Worker.Concurrency = 2

	t.Setenv("DB_HOST", "env-host")
	t.Setenv("CONCURRENCY", "8")
	t.Setenv("CACHE_TTL_SECONDS", "120")
	t.Setenv("LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	assert.Equal(t, "env-host", cfg.Database.DataSource.Host)
	assert.Equal(t, 8, cfg.Worker.Concurrency)
	assert.Equal(t, 120, cfg.Worker.CacheTTLSeconds)
	assert.Equal(t, "debug", cfg.Worker.LogLevel)
}

func TestApplyEnvOverridesIgnoresUnsetVars(t *testing.T) {
	cfg := &Config{}
	cfg.Database.DataSource.Host = "unchanged"
	applyEnvOverrides(cfg)
	assert.Equal(t, "unchanged", cfg.Database.DataSource.Host)
}

func TestApplyEnvOverridesIgnoresNonNumericConcurrency(t *testing.T) {
	cfg := &Config{}
	cfg.Worker.Concurrency = 4
	t.Setenv("CONCURRENCY", "not-a-number")
	applyEnvOverrides(cfg)
	assert.Equal(t, 4, cfg.Worker.Concurrency, "a non-numeric CONCURRENCY value should be ignored")
}

func TestToDatabaseConfigAndToRedisConfigMapFields(t *testing.T) {
	cfg := &Config{}
	cfg.Database.DataSource.Host = "db-host"
	cfg.Database.DataSource.Name = "indicators"
	cfg.Redis.Host = "redis-host"
	cfg.Worker.CacheTTLSeconds = 60

	dbCfg := cfg.ToDatabaseConfig()
	assert.Equal(t, "db-host", dbCfg.DataSource.Host)
	assert.Equal(t, "indicators", dbCfg.DataSource.DBName)

	redisCfg := cfg.ToRedisConfig()
	assert.Equal(t, "redis-host", redisCfg.Host)
	assert.Equal(t, float64(60), redisCfg.TTL.Seconds(), "redis TTL should derive from CacheTTLSeconds")
}

func TestValidateRejectsMissingDatabaseHostAndName(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	require.Error(t, cfg.Validate(), "expected Validate to reject a config with no database host or name")
}

func TestValidatePassesWithRequiredFieldsSet(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.Database.DataSource.Host = "db-host"
	cfg.Database.DataSource.Name = "indicators"
	assert.NoError(t, cfg.Validate())
}
