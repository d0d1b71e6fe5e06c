package domain

// Built-in sample data every session starts from.

func SampleKPIs() KpiSnapshot {
	return KpiSnapshot{
		Population:   "12.3M",
		AvgAQI:       78,
		AvgTemp:      "28°C",
		TrafficIndex: 6.8,
	}
}

func SampleWeather() WeatherSnapshot {
	return WeatherSnapshot{
		Today:    WeatherDay{Temp: "29°C", RainfallMM: 0.4, Condition: "Partly Cloudy"},
		Tomorrow: WeatherDay{Temp: "30°C", RainfallMM: 0.0, Condition: "Sunny"},
		IsMock:   true,
	}
}

func SampleTraffic() []TrafficRecord {
	return []TrafficRecord{
		{Day: "Mon", CongestIndex: 6.1},
		{Day: "Tue", CongestIndex: 6.5},
		{Day: "Wed", CongestIndex: 7.0},
		{Day: "Thu", CongestIndex: 7.4},
		{Day: "Fri", CongestIndex: 8.2},
		{Day: "Sat", CongestIndex: 5.2},
		{Day: "Sun", CongestIndex: 4.9},
	}
}

func SamplePower() []PowerRecord {
	return []PowerRecord{
		{Hour: "00", Usage: 120},
		{Hour: "03", Usage: 100},
		{Hour: "06", Usage: 130},
		{Hour: "09", Usage: 210},
		{Hour: "12", Usage: 260},
		{Hour: "15", Usage: 240},
		{Hour: "18", Usage: 300},
		{Hour: "21", Usage: 220},
	}
}

func SampleModal() []ModalRecord {
	return []ModalRecord{
		{Mode: "Private", Share: 62},
		{Mode: "Public", Share: 25},
		{Mode: "Two-wheeler", Share: 10},
		{Mode: "Walk/Cycle", Share: 3},
	}
}
