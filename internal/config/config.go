// Package config loads process configuration from the environment,
// mirroring pythonmatcher's settings.py: a .env file loaded if present,
// then overridden by real environment variables, each with a default.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"powermatcher/internal/logx"
)

// Config holds every environment-tunable setting for the simulation
// process. Field names track settings.py's module-level constants.
type Config struct {
	InfluxDBHost       string
	InfluxDBDatabase   string
	InfluxDBEnabled    bool
	InfluxDBDropOnInit bool
	InfluxDBWriteAsync bool

	LogLevel logx.Level

	WSMonitorAddr string
}

// Load reads a .env file from the working directory if one exists (a
// missing file is not an error, matching godotenv's use in the example
// suite's test setup) and then builds a Config from the process
// environment, applying defaults for anything unset.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logx.Warnf("config: loading .env: %v", err)
	}

	return Config{
		InfluxDBHost:       getenv("INFLUXDB_HOST", "influxdb"),
		InfluxDBDatabase:   getenv("INFLUXDB_DATABASE", "powermatcher"),
		InfluxDBEnabled:    getBool("INFLUXDB_ENABLED", true),
		InfluxDBDropOnInit: getBool("INFLUXDB_EMPTY", false),
		InfluxDBWriteAsync: getBool("INFLUXDB_WRITE_ASYNC", false),
		LogLevel:           logx.ParseLevel(getenv("LOG_LEVEL", "INFO")),
		WSMonitorAddr:      getenv("WSMONITOR_ADDR", ":8765"),
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logx.Warnf("config: %s=%q is not a bool, using default %v", key, v, fallback)
		return fallback
	}
	return b
}
