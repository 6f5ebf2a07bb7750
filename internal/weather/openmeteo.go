package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/valleyviewvt/snowline/internal/fetch"
)

// Client fetches and normalizes forecasts from Open-Meteo. Open-Meteo does
// not require an API key; unit conversion is requested server-side so the
// normalizer only rounds and decodes condition codes.
type Client struct {
	baseURL string
	httpCfg fetch.Config
	circuit *gobreaker.CircuitBreaker
}

func NewClient(client *http.Client) *Client {
	return &Client{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: fetch.Config{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker("openmeteo"),
	}
}

// Fetch returns the normalized forecast for the given coordinates.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (WeatherData, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", lat))
		values.Set("longitude", fmt.Sprintf("%f", lon))
		values.Set("current", "temperature_2m,weather_code,wind_speed_10m,wind_gusts_10m")
		values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,snowfall_sum,wind_speed_10m_max")
		values.Set("forecast_days", fmt.Sprintf("%d", ForecastDays))
		values.Set("temperature_unit", "fahrenheit")
		values.Set("wind_speed_unit", "mph")
		values.Set("precipitation_unit", "inch")
		values.Set("timezone", "America/New_York")

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := fetch.Do(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return WeatherData{}, err
	}
	defer resp.Body.Close()

	var payload openMeteoPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return WeatherData{}, err
	}

	return normalize(payload), nil
}

type openMeteoPayload struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WindGusts   float64 `json:"wind_gusts_10m"`
	} `json:"current"`
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		SnowfallSum      []float64 `json:"snowfall_sum"`
		WindSpeedMax     []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

func normalize(p openMeteoPayload) WeatherData {
	daily := make([]DailyForecast, 0, len(p.Daily.Time))
	for i, date := range p.Daily.Time {
		if i >= ForecastDays {
			break
		}
		daily = append(daily, DailyForecast{
			Date:       date,
			HighF:      roundAt(p.Daily.TemperatureMax, i),
			LowF:       roundAt(p.Daily.TemperatureMin, i),
			WindMph:    roundAt(p.Daily.WindSpeedMax, i),
			PrecipIn:   at(p.Daily.PrecipitationSum, i),
			SnowIn:     at(p.Daily.SnowfallSum, i),
			Conditions: DecodeWeatherCode(intAt(p.Daily.WeatherCode, i)),
		})
	}

	data := WeatherData{
		CurrentTempF: int(math.Round(p.Current.Temperature)),
		WindMph:      int(math.Round(p.Current.WindSpeed)),
		WindGustMph:  int(math.Round(p.Current.WindGusts)),
		Conditions:   DecodeWeatherCode(p.Current.WeatherCode),
		Daily:        daily,
		Source:       "open-meteo",
		FetchedAt:    time.Now().UTC(),
	}
	if len(daily) > 0 {
		data.TodayHighF = daily[0].HighF
		data.TodayLowF = daily[0].LowF
	}
	return data
}

func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func roundAt(vals []float64, i int) int {
	return int(math.Round(at(vals, i)))
}

func intAt(vals []int, i int) int {
	if i < len(vals) {
		return vals[i]
	}
	return -1
}

// DecodeWeatherCode maps WMO weather interpretation codes to display text.
func DecodeWeatherCode(code int) string {
	switch {
	case code < 0:
		return "Unknown"
	case code == 0:
		return "Sunny"
	case code <= 3:
		return "Cloudy"
	case code <= 48:
		return "Fog"
	case code <= 67:
		return "Rain"
	case code <= 77:
		return "Snow"
	case code <= 82:
		return "Rain Showers"
	case code <= 86:
		return "Snow Showers"
	default:
		return "Storm"
	}
}
