package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Env         string `envconfig:"GO_ENV" default:"development"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	OpenWeatherAPIKey string  `envconfig:"OPENWEATHER_API_KEY"`
	CityName          string  `envconfig:"CITY_NAME" default:"Bengaluru"`
	CityLat           float64 `envconfig:"CITY_LAT" default:"12.9716"`
	CityLon           float64 `envconfig:"CITY_LON" default:"77.5946"`

	UploadBodyLimitMB int           `envconfig:"UPLOAD_BODY_LIMIT_MB" default:"32"`
	StrictKeyCheck    bool          `envconfig:"INGEST_STRICT_KEYS" default:"false"`
	ShutdownTimeout   time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	CORSAllowOrigins  string        `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load from env: %w", err)
	}

	if cfg.UploadBodyLimitMB <= 0 {
		return nil, errors.New("UPLOAD_BODY_LIMIT_MB must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if !validLogLevels[cfg.LogLevel] {
		return nil, fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", cfg.LogLevel)
	}
	if cfg.CityLat < -90 || cfg.CityLat > 90 {
		return nil, fmt.Errorf("CITY_LAT %v out of range", cfg.CityLat)
	}
	if cfg.CityLon < -180 || cfg.CityLon > 180 {
		return nil, fmt.Errorf("CITY_LON %v out of range", cfg.CityLon)
	}

	return &cfg, nil
}

// IsDevelopment reports whether GO_ENV selects development behavior.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// BodyLimitBytes is the maximum accepted request body size.
func (c *Config) BodyLimitBytes() int {
	return c.UploadBodyLimitMB * 1024 * 1024
}
