package mountain

import (
	"time"

	"github.com/valleyviewvt/snowline/internal/weather"
)

// MountainInfo identifies one resort. Static per resort except LastUpdated.
type MountainInfo struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Location    string    `json:"location"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// BaseDepth is the reported base depth range in inches. Resorts that publish a
// single figure report Min == Max.
type BaseDepth struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SnowReport holds normalized snowfall statistics for one resort. All numeric
// fields are inches and non-negative; zero means the upstream lacked data, not
// "no snow".
type SnowReport struct {
	Snow24hIn    float64   `json:"snow24hIn"`
	Snow48hIn    float64   `json:"snow48hIn"`
	Snow7dIn     float64   `json:"snow7dIn"`
	SeasonSnowIn float64   `json:"seasonSnowIn"`
	BaseDepthIn  BaseDepth `json:"baseDepthIn"`
	Conditions   string    `json:"conditions"`
	SourceURL    string    `json:"sourceUrl"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// LiftCondition is the status of one lift. Status normalization is
// adapter-specific: some resorts get a clean Open/Closed, others pass the raw
// upstream token through.
type LiftCondition struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Type     string `json:"type,omitempty"`
	WaitTime int    `json:"waitTime,omitempty"`
}

// TrailCondition is the status of one named trail.
type TrailCondition struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Difficulty string `json:"difficulty,omitempty"`
	IsGroomed  bool   `json:"isGroomed,omitempty"`
}

// LiftsTerrain holds lift and trail status with derived counts.
// LiftsTotal always equals len(Lifts) and TrailsTotal always equals
// len(Trails); TerrainOpenPct is round(100*TrailsOpen/TrailsTotal).
type LiftsTerrain struct {
	LiftsOpen      int              `json:"liftsOpen"`
	LiftsTotal     int              `json:"liftsTotal"`
	TrailsOpen     int              `json:"trailsOpen"`
	TrailsTotal    int              `json:"trailsTotal"`
	TerrainOpenPct int              `json:"terrainOpenPct"`
	Lifts          []LiftCondition  `json:"lifts"`
	Trails         []TrailCondition `json:"trails"`
	SourceURL      string           `json:"sourceUrl"`
	FetchedAt      time.Time        `json:"fetchedAt"`
}

// MountainData is the root aggregate for one resort per fetch cycle.
// Immutable once constructed; callers must treat it as read-only.
type MountainData struct {
	Mountain     MountainInfo        `json:"mountain"`
	SnowReport   SnowReport          `json:"snowReport"`
	LiftsTerrain LiftsTerrain        `json:"liftsTerrain"`
	Weather      weather.WeatherData `json:"weather"`
	Summary      string              `json:"summary"`
	GeneratedAt  time.Time           `json:"generatedAt"`
}

// DataUnavailable marks a section whose upstream data could not be obtained.
const DataUnavailable = "Data Unavailable"

// UnavailableSnowReport returns the zeroed default produced when the snow
// section cannot be parsed.
func UnavailableSnowReport(sourceURL string, now time.Time) SnowReport {
	return SnowReport{
		Conditions: DataUnavailable,
		SourceURL:  sourceURL,
		FetchedAt:  now,
	}
}

// EmptyLiftsTerrain returns the zeroed default produced when the terrain
// section cannot be parsed.
func EmptyLiftsTerrain(sourceURL string, now time.Time) LiftsTerrain {
	return LiftsTerrain{
		Lifts:     []LiftCondition{},
		Trails:    []TrailCondition{},
		SourceURL: sourceURL,
		FetchedAt: now,
	}
}

// NewLiftsTerrain assembles a LiftsTerrain from classified lifts and trails,
// deriving the open counts from the already-normalized "Open" status.
func NewLiftsTerrain(lifts []LiftCondition, trails []TrailCondition, liftsOpen, trailsOpen int, sourceURL string, now time.Time) LiftsTerrain {
	return LiftsTerrain{
		LiftsOpen:      liftsOpen,
		LiftsTotal:     len(lifts),
		TrailsOpen:     trailsOpen,
		TrailsTotal:    len(trails),
		TerrainOpenPct: OpenPct(trailsOpen, len(trails)),
		Lifts:          lifts,
		Trails:         trails,
		SourceURL:      sourceURL,
		FetchedAt:      now,
	}
}
