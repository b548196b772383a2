package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Assumptions holds the named financial model constants. The battery benefit
// formula and the portfolio savings estimate depend on these; they are
// deliberately configuration, not literals, so a deployment can tune them.
type Assumptions struct {
	BatteryDailyCycles         float64 // full charge/discharge cycles per day
	BatteryRoundTripEfficiency float64 // fraction of stored energy recovered
	BatteryUtilizationFactor   float64 // fraction of shifted energy that avoids grid purchases
	SelfConsumptionShare       float64 // portfolio estimate: fraction of production consumed on site
}

// Config holds application configuration
type Config struct {
	Port         int
	DevMode      bool
	LogLevel     string
	DatabasePath string

	// Data folders (CSV load curves, project catalog, production profiles, mix files)
	DataDir string

	// Tariff defaults applied when an optimization request omits them (EUR/kWh)
	DefaultElectricityPrice float64
	DefaultFeedInTariff     float64

	// Default per-project share cap for optimization requests
	DefaultMaxSharesPerProject int

	Assumptions Assumptions
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8080),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/sunshare.db"),
		DataDir:      getEnv("DATA_DIR", "./data"),

		DefaultElectricityPrice:    getEnvAsFloat("DEFAULT_ELECTRICITY_PRICE", 0.30),
		DefaultFeedInTariff:        getEnvAsFloat("DEFAULT_FEED_IN_TARIFF", 0.05),
		DefaultMaxSharesPerProject: getEnvAsInt("DEFAULT_MAX_SHARES_PER_PROJECT", 100),

		Assumptions: Assumptions{
			BatteryDailyCycles:         getEnvAsFloat("BATTERY_DAILY_CYCLES", 1.0),
			BatteryRoundTripEfficiency: getEnvAsFloat("BATTERY_ROUND_TRIP_EFFICIENCY", 0.8),
			BatteryUtilizationFactor:   getEnvAsFloat("BATTERY_UTILIZATION_FACTOR", 0.5),
			SelfConsumptionShare:       getEnvAsFloat("PORTFOLIO_SELF_CONSUMPTION_SHARE", 0.5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.DefaultElectricityPrice < 0 || c.DefaultFeedInTariff < 0 {
		return fmt.Errorf("tariff defaults must be non-negative")
	}
	a := c.Assumptions
	if a.BatteryDailyCycles <= 0 {
		return fmt.Errorf("BATTERY_DAILY_CYCLES must be positive")
	}
	if a.BatteryRoundTripEfficiency <= 0 || a.BatteryRoundTripEfficiency > 1 {
		return fmt.Errorf("BATTERY_ROUND_TRIP_EFFICIENCY must be in (0, 1]")
	}
	if a.BatteryUtilizationFactor < 0 || a.BatteryUtilizationFactor > 1 {
		return fmt.Errorf("BATTERY_UTILIZATION_FACTOR must be in [0, 1]")
	}
	if a.SelfConsumptionShare < 0 || a.SelfConsumptionShare > 1 {
		return fmt.Errorf("PORTFOLIO_SELF_CONSUMPTION_SHARE must be in [0, 1]")
	}
	return nil
}

// ProfilesDir returns the folder holding POD load curve CSV files
func (c *Config) ProfilesDir() string {
	return filepath.Join(c.DataDir, "profiles")
}

// ProjectsDir returns the folder holding the project catalog
func (c *Config) ProjectsDir() string {
	return filepath.Join(c.DataDir, "projects")
}

// ProductionDir returns the folder holding per-project production profiles
func (c *Config) ProductionDir() string {
	return filepath.Join(c.DataDir, "projects", "production")
}

// MixDir returns the folder holding energy mix reference files
func (c *Config) MixDir() string {
	return filepath.Join(c.DataDir, "mix")
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
