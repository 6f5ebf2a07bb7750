package weather

import "time"

// DailyForecast is one day of the normalized forecast. Index 0 is today.
type DailyForecast struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	HighF      int     `json:"highF"`
	LowF       int     `json:"lowF"`
	WindMph    int     `json:"windMph"`
	PrecipIn   float64 `json:"precipIn"`
	SnowIn     float64 `json:"snowIn"`
	Conditions string  `json:"conditions"`
}

// WeatherData is the normalized forecast and current conditions for one
// resort's coordinates. Units are Fahrenheit, mph and inches; weather codes
// are already decoded to display text. Daily carries at least ForecastDays
// entries ordered from today onward.
type WeatherData struct {
	CurrentTempF int             `json:"currentTempF"`
	TodayHighF   int             `json:"todayHighF"`
	TodayLowF    int             `json:"todayLowF"`
	WindMph      int             `json:"windMph"`
	WindGustMph  int             `json:"windGustMph"`
	Conditions   string          `json:"conditions"`
	Daily        []DailyForecast `json:"daily"`
	Source       string          `json:"source"`
	FetchedAt    time.Time       `json:"fetchedAt"`
}

// ForecastDays is the number of daily entries requested from the upstream API.
const ForecastDays = 10

// Unavailable returns a structurally valid zero-value forecast used when the
// weather fetch fails, so downstream consumers can still render.
func Unavailable(now time.Time) WeatherData {
	daily := make([]DailyForecast, ForecastDays)
	for i := range daily {
		daily[i] = DailyForecast{
			Date:       now.AddDate(0, 0, i).Format("2006-01-02"),
			Conditions: "Data Unavailable",
		}
	}
	return WeatherData{
		Conditions: "Data Unavailable",
		Daily:      daily,
		Source:     "open-meteo",
		FetchedAt:  now,
	}
}
