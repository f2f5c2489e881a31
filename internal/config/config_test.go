package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"powermatcher/internal/logx"
)

func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"INFLUXDB_HOST", "INFLUXDB_DATABASE", "INFLUXDB_ENABLED",
		"INFLUXDB_EMPTY", "INFLUXDB_WRITE_ASYNC", "LOG_LEVEL", "WSMONITOR_ADDR",
	}
	for _, k := range keys {
		old, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, old)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "influxdb", cfg.InfluxDBHost)
	assert.Equal(t, "powermatcher", cfg.InfluxDBDatabase)
	assert.True(t, cfg.InfluxDBEnabled)
	assert.False(t, cfg.InfluxDBDropOnInit)
	assert.False(t, cfg.InfluxDBWriteAsync)
	assert.Equal(t, logx.LevelInfo, cfg.LogLevel)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("INFLUXDB_HOST", "influx.example.com")
	os.Setenv("INFLUXDB_ENABLED", "false")
	os.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "influx.example.com", cfg.InfluxDBHost)
	assert.False(t, cfg.InfluxDBEnabled)
	assert.Equal(t, logx.LevelDebug, cfg.LogLevel)
}

func TestLoad_InvalidBoolFallsBackToDefault(t *testing.T) {
	clearEnv(t)
	os.Setenv("INFLUXDB_ENABLED", "not-a-bool")

	cfg := Load()

	assert.True(t, cfg.InfluxDBEnabled)
}
