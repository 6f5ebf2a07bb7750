package mountain

import (
	"fmt"
	"math"

	"github.com/valleyviewvt/snowline/internal/weather"
)

// OpenPct returns round(100*open/total), or 0 when total is 0.
func OpenPct(open, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(open) / float64(total)))
}

// PredictedSnowIn is the forecast snowfall for today plus tomorrow.
func PredictedSnowIn(w weather.WeatherData) float64 {
	var total float64
	for i := 0; i < 2 && i < len(w.Daily); i++ {
		total += w.Daily[i].SnowIn
	}
	return total
}

// Summary produces the one-sentence report shown in the widget and emails.
// It is derived from the structured fields and carries no data of its own;
// consumers may regenerate it at will.
func Summary(name string, snow SnowReport, lt LiftsTerrain, w weather.WeatherData) string {
	return fmt.Sprintf(
		"The current %s base depth is %d inches, with %d new inches of snow over the past 48 hours and %d inches predicted today and tomorrow. %d/%d trails are open, %d/%d lifts are open, and %d%% of the total terrain is open.",
		name,
		int(math.Round(snow.BaseDepthIn.Max)),
		int(math.Round(snow.Snow48hIn)),
		int(math.Round(PredictedSnowIn(w))),
		lt.TrailsOpen, lt.TrailsTotal,
		lt.LiftsOpen, lt.LiftsTotal,
		lt.TerrainOpenPct,
	)
}
