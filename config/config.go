// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds all application configuration
type Config struct {
	// DataDir is the PocketBase data directory.
	DataDir string
	// SettleDelay debounces quantity-to-material recomputation in
	// editor sessions.
	SettleDelay time.Duration
	// Seed fills empty reference tables and a sample estimation on start.
	Seed bool
	// SessionIdle evicts editor sessions that were not used for this long.
	SessionIdle time.Duration
	// ReportTitle heads exported workbooks and PDFs when the estimation
	// has no title.
	ReportTitle string
}

// Load reads configuration from environment variables, after loading a
// .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	settle, err := getDuration("FLOOR_SETTLE_DELAY", 0)
	if err != nil {
		return nil, err
	}
	idle, err := getDuration("FLOOR_SESSION_IDLE", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	seed, err := cast.ToBoolE(getEnv("FLOOR_SEED", "true"))
	if err != nil {
		return nil, fmt.Errorf("FLOOR_SEED: %w", err)
	}

	return &Config{
		DataDir:     getEnv("FLOOR_DATA_DIR", "pb_data"),
		SettleDelay: settle,
		Seed:        seed,
		SessionIdle: idle,
		ReportTitle: getEnv("FLOOR_REPORT_TITLE", "Floor Estimate"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", key)
	}
	return d, nil
}
