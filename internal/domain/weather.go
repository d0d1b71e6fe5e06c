package domain

// WeatherDay is one entry of the two-day outlook shown on the dashboard.
type WeatherDay struct {
	Temp       string  `json:"temp"`
	RainfallMM float64 `json:"rainfall_mm"`
	Condition  string  `json:"condition"`
}

func (d WeatherDay) Map() map[string]any {
	return map[string]any{
		"temp":        d.Temp,
		"rainfall_mm": d.RainfallMM,
		"condition":   d.Condition,
	}
}

// WeatherSnapshot is built once at startup and never mutated afterwards.
type WeatherSnapshot struct {
	Today    WeatherDay `json:"today"`
	Tomorrow WeatherDay `json:"tomorrow"`
	IsMock   bool       `json:"is_mock"`
}

// Map returns the flat key to value view consumed by the render layer.
func (w WeatherSnapshot) Map() map[string]any {
	return map[string]any{
		"today":    w.Today.Map(),
		"tomorrow": w.Tomorrow.Map(),
	}
}

// KpiSnapshot holds the headline city figures. TrafficIndex is the configured
// input average, which is distinct from the average derived from live traffic data.
type KpiSnapshot struct {
	Population   string  `json:"population"`
	AvgAQI       int     `json:"avgAQI"`
	AvgTemp      string  `json:"avgTemp"`
	TrafficIndex float64 `json:"trafficIndex"`
}

// Map returns the flat key to value view consumed by the render layer.
func (k KpiSnapshot) Map() map[string]any {
	return map[string]any{
		"population":   k.Population,
		"avgAQI":       k.AvgAQI,
		"avgTemp":      k.AvgTemp,
		"trafficIndex": k.TrafficIndex,
	}
}
