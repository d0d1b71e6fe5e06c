package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/smartcity/dashboard/internal/domain"
)

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// WeatherService builds the dashboard's weather snapshot
type WeatherService struct {
	apiKey     string
	lat, lon   float64
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWeatherService creates a new weather service
func NewWeatherService(apiKey string, lat, lon float64, logger *zap.Logger) *WeatherService {
	return &WeatherService{
		apiKey:  apiKey,
		lat:     lat,
		lon:     lon,
		baseURL: openWeatherBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// OpenWeatherResponse represents the OpenWeatherMap API response
type OpenWeatherResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Name string `json:"name"`
}

// Snapshot returns the weather shown for the lifetime of the process. It
// never fails: without an API key, or when the request does not succeed, the
// built-in sample is returned.
func (s *WeatherService) Snapshot(ctx context.Context) domain.WeatherSnapshot {
	// Return mock data if no API key
	if s.apiKey == "" {
		return domain.SampleWeather()
	}

	today, err := s.fetchToday(ctx)
	if err != nil {
		s.logger.Warn("weather fetch failed, using sample data", zap.Error(err))
		return domain.SampleWeather()
	}

	snap := domain.SampleWeather()
	snap.Today = today
	snap.IsMock = false
	return snap
}

func (s *WeatherService) fetchToday(ctx context.Context) (domain.WeatherDay, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", s.lat))
	q.Set("lon", fmt.Sprintf("%f", s.lon))
	q.Set("appid", s.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.WeatherDay{}, fmt.Errorf("weather: failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.WeatherDay{}, fmt.Errorf("weather: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.WeatherDay{}, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}

	var owResp OpenWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return domain.WeatherDay{}, fmt.Errorf("weather: failed to decode response: %w", err)
	}

	day := domain.WeatherDay{
		Temp:       fmt.Sprintf("%d°C", int(math.Round(owResp.Main.Temp))),
		RainfallMM: owResp.Rain.OneHour,
		Condition:  "Unknown",
	}
	if len(owResp.Weather) > 0 && owResp.Weather[0].Main != "" {
		day.Condition = owResp.Weather[0].Main
	}

	s.logger.Info("weather snapshot fetched",
		zap.String("city", owResp.Name),
		zap.String("temp", day.Temp),
		zap.String("condition", day.Condition),
	)
	return day, nil
}
