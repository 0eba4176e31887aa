package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything main needs to wire the process.
type Config struct {
	ServiceName string
	Env         string
	HTTPAddr    string

	// DBDriver selects the gorm driver: "sqlite" (default, pure Go) or "mysql".
	DBDriver string
	// DBDSN is driver-specific; for sqlite a file path or ":memory:".
	DBDSN string

	// ShipmentAutoAdvance enables the simulated carrier that steps shipments
	// through the lifecycle on a timer.
	ShipmentAutoAdvance bool
	// AutoAdvanceInterval is the delay between simulated carrier steps.
	AutoAdvanceInterval time.Duration
}

// Load reads .env when present and assembles the config from environment
// variables with sane defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ServiceName:         getenv("SERVICE_NAME", "awemart"),
		Env:                 getenv("ENV", "dev"),
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		DBDriver:            getenv("DB_DRIVER", "sqlite"),
		DBDSN:               getenv("DB_DSN", "awemart.db"),
		ShipmentAutoAdvance: boolFlag("SHIPMENT_AUTO_ADVANCE"),
		AutoAdvanceInterval: durationEnv("SHIPMENT_ADVANCE_INTERVAL", 30*time.Second),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func boolFlag(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
