package config

import (
	"os"
	"strconv"
	"time"

	"rekpi/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Forecast ForecastConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ForecastConfig holds model fitting settings
type ForecastConfig struct {
	SeasonalPeriod  int
	MinObservations int
	DefaultHorizon  int
	FitTimeout      time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Forecast: ForecastConfig{
			SeasonalPeriod:  getEnvIntOrDefault("FORECAST_SEASONAL_PERIOD", 4),
			MinObservations: getEnvIntOrDefault("FORECAST_MIN_OBSERVATIONS", 24),
			DefaultHorizon:  getEnvIntOrDefault("FORECAST_DEFAULT_HORIZON", 8),
			FitTimeout:      getEnvDurationOrDefault("FORECAST_FIT_TIMEOUT", 10*time.Second),
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validate(c *Config) error {
	if c.Forecast.SeasonalPeriod < 1 {
		return errors.ConfigInvalid("FORECAST_SEASONAL_PERIOD must be >= 1")
	}
	if c.Forecast.MinObservations < 2 {
		return errors.ConfigInvalid("FORECAST_MIN_OBSERVATIONS must be >= 2")
	}
	if c.Forecast.DefaultHorizon < 1 {
		return errors.ConfigInvalid("FORECAST_DEFAULT_HORIZON must be >= 1")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
