package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.OpenWeatherAPIKey)
	assert.Equal(t, "Bengaluru", cfg.CityName)
	assert.Equal(t, 12.9716, cfg.CityLat)
	assert.Equal(t, 77.5946, cfg.CityLon)
	assert.Equal(t, 32, cfg.UploadBodyLimitMB)
	assert.Equal(t, 32*1024*1024, cfg.BodyLimitBytes())
	assert.False(t, cfg.StrictKeyCheck)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "*", cfg.CORSAllowOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GO_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost/smartcity")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OPENWEATHER_API_KEY", "ow-key")
	t.Setenv("CITY_NAME", "Almaty")
	t.Setenv("CITY_LAT", "43.2389")
	t.Setenv("CITY_LON", "76.8897")
	t.Setenv("UPLOAD_BODY_LIMIT_MB", "4")
	t.Setenv("INGEST_STRICT_KEYS", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://dash.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "postgres://localhost/smartcity", cfg.DatabaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "ow-key", cfg.OpenWeatherAPIKey)
	assert.Equal(t, "Almaty", cfg.CityName)
	assert.Equal(t, 43.2389, cfg.CityLat)
	assert.Equal(t, 76.8897, cfg.CityLon)
	assert.Equal(t, 4*1024*1024, cfg.BodyLimitBytes())
	assert.True(t, cfg.StrictKeyCheck)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://dash.example.com", cfg.CORSAllowOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"UPLOAD_BODY_LIMIT_MB", "0"},
		{"UPLOAD_BODY_LIMIT_MB", "lots"},
		{"INGEST_STRICT_KEYS", "maybe"},
		{"LOG_LEVEL", "verbose"},
		{"CITY_LAT", "91"},
		{"CITY_LON", "-181"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
