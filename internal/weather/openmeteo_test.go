package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const openMeteoBody = `{
  "current": {"temperature_2m": 21.4, "weather_code": 73, "wind_speed_10m": 11.8, "wind_gusts_10m": 24.3},
  "daily": {
    "time": ["2026-01-10", "2026-01-11", "2026-01-12"],
    "weather_code": [73, 2, 0],
    "temperature_2m_max": [24.6, 30.1, 33.4],
    "temperature_2m_min": [12.2, 18.9, 21.0],
    "precipitation_sum": [0.42, 0, 0.1],
    "snowfall_sum": [4.2, 0, 0],
    "wind_speed_10m_max": [15.5, 9.2, 7.7]
  }
}`

func TestClientFetchNormalizes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("temperature_unit") != "fahrenheit" {
			t.Errorf("temperature_unit = %q, want fahrenheit", q.Get("temperature_unit"))
		}
		if q.Get("forecast_days") != "10" {
			t.Errorf("forecast_days = %q, want 10", q.Get("forecast_days"))
		}
		w.Write([]byte(openMeteoBody))
	}))
	defer ts.Close()

	c := NewClient(ts.Client())
	c.baseURL = ts.URL

	data, err := c.Fetch(context.Background(), 42.96, -72.92)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if data.CurrentTempF != 21 {
		t.Errorf("CurrentTempF = %d, want 21", data.CurrentTempF)
	}
	if data.WindMph != 12 {
		t.Errorf("WindMph = %d, want 12", data.WindMph)
	}
	if data.WindGustMph != 24 {
		t.Errorf("WindGustMph = %d, want 24", data.WindGustMph)
	}
	if data.Conditions != "Snow" {
		t.Errorf("Conditions = %q, want Snow", data.Conditions)
	}
	if data.Source != "open-meteo" {
		t.Errorf("Source = %q", data.Source)
	}

	if len(data.Daily) != 3 {
		t.Fatalf("len(Daily) = %d, want 3", len(data.Daily))
	}
	first := data.Daily[0]
	if first.Date != "2026-01-10" {
		t.Errorf("Daily[0].Date = %q", first.Date)
	}
	if first.HighF != 25 || first.LowF != 12 {
		t.Errorf("Daily[0] temps = %d/%d, want 25/12", first.HighF, first.LowF)
	}
	if first.SnowIn != 4.2 {
		t.Errorf("Daily[0].SnowIn = %v, want 4.2", first.SnowIn)
	}
	if data.Daily[2].Conditions != "Sunny" {
		t.Errorf("Daily[2].Conditions = %q, want Sunny", data.Daily[2].Conditions)
	}

	if data.TodayHighF != 25 || data.TodayLowF != 12 {
		t.Errorf("today temps = %d/%d, want 25/12", data.TodayHighF, data.TodayLowF)
	}
}

func TestClientFetchBadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer ts.Close()

	c := NewClient(ts.Client())
	c.baseURL = ts.URL

	if _, err := c.Fetch(context.Background(), 0, 0); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestDecodeWeatherCode(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{-1, "Unknown"},
		{0, "Sunny"},
		{2, "Cloudy"},
		{45, "Fog"},
		{61, "Rain"},
		{73, "Snow"},
		{80, "Rain Showers"},
		{85, "Snow Showers"},
		{95, "Storm"},
	}
	for _, tc := range cases {
		if got := DecodeWeatherCode(tc.code); got != tc.want {
			t.Errorf("DecodeWeatherCode(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestUnavailable(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	data := Unavailable(now)

	if data.Conditions != "Data Unavailable" {
		t.Errorf("Conditions = %q", data.Conditions)
	}
	if len(data.Daily) != ForecastDays {
		t.Fatalf("len(Daily) = %d, want %d", len(data.Daily), ForecastDays)
	}
	if data.Daily[0].Date != "2026-01-10" {
		t.Errorf("Daily[0].Date = %q", data.Daily[0].Date)
	}
	if data.Daily[9].Date != "2026-01-19" {
		t.Errorf("Daily[9].Date = %q", data.Daily[9].Date)
	}
	for i, d := range data.Daily {
		if d.Conditions != "Data Unavailable" {
			t.Errorf("Daily[%d].Conditions = %q", i, d.Conditions)
		}
	}
}
