package mountain

import (
	"strings"
	"testing"
	"time"

	"github.com/valleyviewvt/snowline/internal/weather"
)

func TestOpenPct(t *testing.T) {
	cases := []struct {
		open, total, want int
	}{
		{0, 0, 0},
		{0, 10, 0},
		{10, 10, 100},
		{1, 3, 33},
		{2, 3, 67},
		{50, 99, 51},
	}
	for _, tc := range cases {
		if got := OpenPct(tc.open, tc.total); got != tc.want {
			t.Errorf("OpenPct(%d, %d) = %d, want %d", tc.open, tc.total, got, tc.want)
		}
		if got := OpenPct(tc.open, tc.total); got < 0 || got > 100 {
			t.Errorf("OpenPct(%d, %d) = %d, out of range", tc.open, tc.total, got)
		}
	}
}

func TestPredictedSnowIn(t *testing.T) {
	w := weather.WeatherData{
		Daily: []weather.DailyForecast{
			{SnowIn: 3.2},
			{SnowIn: 1.4},
			{SnowIn: 9}, // day after tomorrow must not count
		},
	}
	if got := PredictedSnowIn(w); got != 4.6 {
		t.Fatalf("PredictedSnowIn = %v, want 4.6", got)
	}

	if got := PredictedSnowIn(weather.WeatherData{}); got != 0 {
		t.Fatalf("PredictedSnowIn on empty forecast = %v, want 0", got)
	}
}

func TestSummaryContainsRoundedValues(t *testing.T) {
	now := time.Now()
	snow := SnowReport{
		Snow48hIn:   6.4,
		BaseDepthIn: BaseDepth{Min: 20, Max: 24.6},
		FetchedAt:   now,
	}
	lt := LiftsTerrain{
		LiftsOpen:      5,
		LiftsTotal:     9,
		TrailsOpen:     40,
		TrailsTotal:    99,
		TerrainOpenPct: 40,
	}
	w := weather.WeatherData{
		Daily: []weather.DailyForecast{{SnowIn: 2.2}, {SnowIn: 1.1}},
	}

	s := Summary("Mount Snow", snow, lt, w)

	for _, want := range []string{
		"Mount Snow",
		"25 inches",     // rounded base depth max
		"6 new inches",  // rounded 48h
		"3 inches",      // rounded predicted (2.2 + 1.1)
		"40/99 trails",
		"5/9 lifts",
		"40% of the total terrain",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q: %s", want, s)
		}
	}
}
