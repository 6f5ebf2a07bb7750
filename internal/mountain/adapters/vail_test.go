package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valleyviewvt/snowline/internal/mountain"
	"github.com/valleyviewvt/snowline/internal/weather"
)

type stubWeather struct {
	data weather.WeatherData
	err  error
}

func (s *stubWeather) Fetch(ctx context.Context, lat, lon float64) (weather.WeatherData, error) {
	return s.data, s.err
}

func testForecast() weather.WeatherData {
	return weather.WeatherData{
		CurrentTempF: 18,
		Conditions:   "Snow",
		Daily: []weather.DailyForecast{
			{Date: "2026-01-05", SnowIn: 3},
			{Date: "2026-01-06", SnowIn: 2},
			{Date: "2026-01-07", SnowIn: 1},
		},
		Source:    "open-meteo",
		FetchedAt: time.Now().UTC(),
	}
}

const vailSnowPage = `<html><body><script>
FR.snowReportData = {"OverallSnowConditions":"Packed Powder","OvernightSnowfall":{"Inches":"1"},"TwentyFourHourSnowfall":{"Inches":"2"},"FortyEightHourSnowfall":{"Inches":4},"SevenDaySnowfall":{"Inches":"11"},"CurrentSeason":{"Inches":"120.5"},"BaseDepth":{"Inches":"30"}};
</script></body></html>`

const vailLiftPage = `<html><body><script>
FR.TerrainStatusFeed = {"Lifts":[{"Name":"Bluebird Express","Status":"open","Type":"six-pack"},{"Name":"Canyon","Status":"open_priority"},{"Name":"Sundance","Status":"1"},{"Name":"Outpost","Status":"closed"},{"Name":"Heavy Metal","Status":"hold"}],"GroomingAreas":[{"Trails":[{"Name":"Long John","IsOpen":true,"Difficulty":"green","IsGroomed":true},{"Name":"Ridge","Status":"open"},{"Name":"Ledge","Status":"closed"}]},{"Trails":[{"Name":"Roller Coaster","Status":"1"}]}]};
</script></body></html>`

func newVailTestAdapter(t *testing.T, snowPage, liftPage string) *VailAdapter {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/snow":
			w.Write([]byte(snowPage))
		case "/lifts":
			w.Write([]byte(liftPage))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	cfg := VailConfig{
		Slug:          "mount-snow",
		Name:          "Mount Snow",
		Location:      "West Dover, VT",
		SnowReportURL: ts.URL + "/snow",
		LiftStatusURL: ts.URL + "/lifts",
		Lat:           42.9602,
		Lon:           -72.8958,
		UserAgent:     browserUserAgent,
	}
	return NewVailAdapter(ts.Client(), &stubWeather{data: testForecast()}, cfg)
}

func TestVailAdapterFetch(t *testing.T) {
	a := newVailTestAdapter(t, vailSnowPage, vailLiftPage)

	data, err := a.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "mount-snow", data.Mountain.Slug)

	snow := data.SnowReport
	assert.Equal(t, 2.0, snow.Snow24hIn)
	assert.Equal(t, 4.0, snow.Snow48hIn)
	assert.Equal(t, 11.0, snow.Snow7dIn)
	assert.Equal(t, 120.5, snow.SeasonSnowIn)
	assert.Equal(t, mountain.BaseDepth{Min: 30, Max: 30}, snow.BaseDepthIn)
	assert.Equal(t, "Packed Powder", snow.Conditions)

	lt := data.LiftsTerrain
	// Multi-token equivalence class: open, open_priority and "1" are open;
	// closed and hold are not.
	assert.Equal(t, 3, lt.LiftsOpen)
	assert.Equal(t, 5, lt.LiftsTotal)
	assert.Equal(t, len(lt.Lifts), lt.LiftsTotal)

	// Grooming areas are flattened before counting.
	assert.Equal(t, 3, lt.TrailsOpen)
	assert.Equal(t, 4, lt.TrailsTotal)
	assert.Equal(t, len(lt.Trails), lt.TrailsTotal)
	assert.Equal(t, 75, lt.TerrainOpenPct)

	assert.Contains(t, data.Summary, "4 new inches")
	assert.Contains(t, data.Summary, "5 inches predicted")
}

func TestVailAdapterOvernightFallback(t *testing.T) {
	page := `<script>FR.snowReportData = {"OvernightSnowfall":{"Inches":"1.5"},"TwentyFourHourSnowfall":{"Inches":"0"},"SeasonTotal":{"Inches":88}};</script>`
	a := newVailTestAdapter(t, page, vailLiftPage)

	data, err := a.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1.5, data.SnowReport.Snow24hIn)
	assert.Equal(t, 88.0, data.SnowReport.SeasonSnowIn)
	// Without an explicit conditions string the resort is assumed open.
	assert.Equal(t, "Open", data.SnowReport.Conditions)
}

func TestVailAdapterMissingSnowMarkerDegradesOnlySnow(t *testing.T) {
	a := newVailTestAdapter(t, `<html><body>maintenance page</body></html>`, vailLiftPage)

	data, err := a.Fetch(context.Background())
	require.NoError(t, err)

	snow := data.SnowReport
	assert.Equal(t, mountain.DataUnavailable, snow.Conditions)
	assert.Zero(t, snow.Snow24hIn)
	assert.Zero(t, snow.Snow48hIn)
	assert.Zero(t, snow.Snow7dIn)
	assert.Zero(t, snow.SeasonSnowIn)
	assert.Zero(t, snow.BaseDepthIn.Max)

	// Terrain parsing is independently guarded and must still succeed.
	assert.Equal(t, 5, data.LiftsTerrain.LiftsTotal)
	assert.Equal(t, 4, data.LiftsTerrain.TrailsTotal)
}

func TestVailAdapterMalformedTerrainDegradesOnlyTerrain(t *testing.T) {
	page := `<script>FR.TerrainStatusFeed = {"Lifts": broken};</script>`
	a := newVailTestAdapter(t, vailSnowPage, page)

	data, err := a.Fetch(context.Background())
	require.NoError(t, err)

	lt := data.LiftsTerrain
	assert.Zero(t, lt.LiftsTotal)
	assert.Zero(t, lt.TrailsTotal)
	assert.Zero(t, lt.TerrainOpenPct)
	assert.NotNil(t, lt.Lifts)
	assert.NotNil(t, lt.Trails)

	assert.Equal(t, "Packed Powder", data.SnowReport.Conditions)
}

func TestVailAdapterWeatherFailureStillReturnsData(t *testing.T) {
	a := newVailTestAdapter(t, vailSnowPage, vailLiftPage)
	a.wx = &stubWeather{err: context.DeadlineExceeded}

	data, err := a.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Data Unavailable", data.Weather.Conditions)
	require.Len(t, data.Weather.Daily, weather.ForecastDays)
	assert.Equal(t, "Packed Powder", data.SnowReport.Conditions)
}
