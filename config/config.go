// api/config/config.go
package config

import (
	"fmt"
	"os"
)

const (
	StrategyCached = "cached"
	StrategyQuery  = "query"
	StrategyScan   = "scan"
)

// Config holds everything the service reads from the environment.
// It is built once in main and passed by reference into constructors;
// no package reads os.Getenv after startup.
type Config struct {
	Port          string
	AllowedOrigin string

	CosmosEndpoint  string
	CosmosKey       string // base64-encoded master key
	CosmosDatabase  string
	CosmosContainer string

	TotalStrategy string

	// ClickHouse settings are optional; when ClickHouseHost is empty the
	// visit-event trail is disabled and only the counters are maintained.
	ClickHouseHost       string
	ClickHouseNativePort string
	ClickHouseDBName     string
	ClickHouseUsername   string
	ClickHousePassword   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigin:   os.Getenv("FE_ORIGIN"),
		CosmosEndpoint:  os.Getenv("COSMOS_ENDPOINT"),
		CosmosKey:       os.Getenv("COSMOS_KEY"),
		CosmosDatabase:  getEnv("COSMOS_DATABASE", "VisitCounterDB"),
		CosmosContainer: getEnv("COSMOS_CONTAINER", "VisitorCount"),
		TotalStrategy:   getEnv("TOTAL_STRATEGY", StrategyCached),

		ClickHouseHost:       os.Getenv("CLICKHOUSE_HOST"),
		ClickHouseNativePort: os.Getenv("CLICKHOUSE_NATIVE_PORT"),
		ClickHouseDBName:     os.Getenv("CLICKHOUSE_DB_NAME"),
		ClickHouseUsername:   os.Getenv("CLICKHOUSE_USERNAME"),
		ClickHousePassword:   os.Getenv("CLICKHOUSE_PASSWORD"),
	}

	if cfg.CosmosEndpoint == "" || cfg.CosmosKey == "" {
		return nil, fmt.Errorf("COSMOS_ENDPOINT and COSMOS_KEY environment variables must be set")
	}

	switch cfg.TotalStrategy {
	case StrategyCached, StrategyQuery, StrategyScan:
	default:
		return nil, fmt.Errorf("invalid TOTAL_STRATEGY %q (want cached, query or scan)", cfg.TotalStrategy)
	}

	return cfg, nil
}

// TrackingEnabled reports whether the optional ClickHouse visit trail is
// configured.
func (c *Config) TrackingEnabled() bool {
	return c.ClickHouseHost != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
