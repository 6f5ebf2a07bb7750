package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/valleyviewvt/snowline/internal/fetch"
	"github.com/valleyviewvt/snowline/internal/mountain"
	"github.com/valleyviewvt/snowline/internal/weather"
)

// WeatherSource is the external forecast collaborator consumed by every
// adapter. It owns unit normalization and weather-code decoding.
type WeatherSource interface {
	Fetch(ctx context.Context, lat, lon float64) (weather.WeatherData, error)
}

// VailConfig describes one resort whose operator site embeds JSON blobs in
// script-tag assignments on two separate pages.
type VailConfig struct {
	Slug          string
	Name          string
	Location      string
	SnowReportURL string
	LiftStatusURL string
	Lat           float64
	Lon           float64
	// UserAgent is sent on page fetches. The operator's WAF rejects Go's
	// default client identification.
	UserAgent string
}

// VailResorts returns the static configuration for the supported resorts of
// this family.
func VailResorts() []VailConfig {
	return []VailConfig{
		{
			Slug:          "mount-snow",
			Name:          "Mount Snow",
			Location:      "West Dover, VT",
			SnowReportURL: "https://www.mountsnow.com/the-mountain/mountain-conditions/weather-report.aspx",
			LiftStatusURL: "https://www.mountsnow.com/the-mountain/mountain-conditions/lift-and-terrain-status.aspx",
			Lat:           42.9602,
			Lon:           -72.8958,
			UserAgent:     browserUserAgent,
		},
		{
			Slug:          "okemo",
			Name:          "Okemo",
			Location:      "Ludlow, VT",
			SnowReportURL: "https://www.okemo.com/the-mountain/mountain-conditions/snow-and-weather-report.aspx",
			LiftStatusURL: "https://www.okemo.com/the-mountain/mountain-conditions/lift-and-terrain-status.aspx",
			Lat:           43.4036,
			Lon:           -72.7163,
			UserAgent:     browserUserAgent,
		},
	}
}

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

var (
	snowReportRe  = regexp.MustCompile(`(?s)FR\.snowReportData\s*=\s*(\{.*?\});`)
	terrainFeedRe = regexp.MustCompile(`(?s)FR\.TerrainStatusFeed\s*=\s*(\{.*?\});`)
)

// VailAdapter normalizes conditions for resorts that publish
// FR.snowReportData and FR.TerrainStatusFeed script assignments.
type VailAdapter struct {
	cfg     VailConfig
	wx      WeatherSource
	httpCfg fetch.Config
	circuit *gobreaker.CircuitBreaker
}

func NewVailAdapter(client *http.Client, wx WeatherSource, cfg VailConfig) *VailAdapter {
	return &VailAdapter{
		cfg: cfg,
		wx:  wx,
		httpCfg: fetch.Config{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker(cfg.Slug),
	}
}

func (a *VailAdapter) Slug() string { return a.cfg.Slug }
func (a *VailAdapter) Name() string { return a.cfg.Name }

// Fetch pulls the snow page, the lift page, and the forecast three ways in
// parallel, then parses each section independently. A failed branch degrades
// only its own section.
func (a *VailAdapter) Fetch(ctx context.Context) (*mountain.MountainData, error) {
	now := time.Now().UTC()
	headers := map[string]string{"User-Agent": a.cfg.UserAgent}

	var (
		wg       sync.WaitGroup
		wx       weather.WeatherData
		wxErr    error
		snowHTML string
		snowErr  error
		liftHTML string
		liftErr  error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		wx, wxErr = a.wx.Fetch(ctx, a.cfg.Lat, a.cfg.Lon)
	}()
	go func() {
		defer wg.Done()
		snowHTML, snowErr = fetch.Text(ctx, a.httpCfg, a.circuit, a.cfg.SnowReportURL, headers)
	}()
	go func() {
		defer wg.Done()
		liftHTML, liftErr = fetch.Text(ctx, a.httpCfg, a.circuit, a.cfg.LiftStatusURL, headers)
	}()
	wg.Wait()

	if wxErr != nil {
		log.Printf("%s: weather fetch failed: %v", a.cfg.Slug, wxErr)
		wx = weather.Unavailable(now)
	}

	snowReport := mountain.UnavailableSnowReport(a.cfg.SnowReportURL, now)
	if snowErr != nil {
		log.Printf("%s: snow page fetch failed: %v", a.cfg.Slug, snowErr)
	} else if report, ok := a.parseSnowReport(snowHTML, now); ok {
		snowReport = report
	}

	liftsTerrain := mountain.EmptyLiftsTerrain(a.cfg.LiftStatusURL, now)
	if liftErr != nil {
		log.Printf("%s: lift page fetch failed: %v", a.cfg.Slug, liftErr)
	} else if lt, ok := a.parseLiftsTerrain(liftHTML, now); ok {
		liftsTerrain = lt
	}

	return &mountain.MountainData{
		Mountain: mountain.MountainInfo{
			Slug:        a.cfg.Slug,
			Name:        a.cfg.Name,
			URL:         a.cfg.SnowReportURL,
			Location:    a.cfg.Location,
			LastUpdated: now,
		},
		SnowReport:   snowReport,
		LiftsTerrain: liftsTerrain,
		Weather:      wx,
		Summary:      mountain.Summary(a.cfg.Name, snowReport, liftsTerrain, wx),
		GeneratedAt:  now,
	}, nil
}

// vailMeasure is a named snowfall/depth sub-object; the Inches field may be a
// number or a numeric string.
type vailMeasure struct {
	Inches mountain.FlexInches `json:"Inches"`
}

type vailSnowPayload struct {
	OverallSnowConditions  string      `json:"OverallSnowConditions"`
	OvernightSnowfall      vailMeasure `json:"OvernightSnowfall"`
	TwentyFourHourSnowfall vailMeasure `json:"TwentyFourHourSnowfall"`
	FortyEightHourSnowfall vailMeasure `json:"FortyEightHourSnowfall"`
	SevenDaySnowfall       vailMeasure `json:"SevenDaySnowfall"`
	CurrentSeason          vailMeasure `json:"CurrentSeason"`
	SeasonTotal            vailMeasure `json:"SeasonTotal"`
	BaseDepth              vailMeasure `json:"BaseDepth"`
}

func (a *VailAdapter) parseSnowReport(html string, now time.Time) (mountain.SnowReport, bool) {
	match := snowReportRe.FindStringSubmatch(html)
	if match == nil {
		log.Printf("%s: FR.snowReportData marker not found", a.cfg.Slug)
		return mountain.SnowReport{}, false
	}

	var data vailSnowPayload
	if err := json.Unmarshal([]byte(match[1]), &data); err != nil {
		log.Printf("%s: error parsing snow report JSON: %v", a.cfg.Slug, err)
		return mountain.SnowReport{}, false
	}

	snow24 := data.TwentyFourHourSnowfall.Inches.In()
	if snow24 == 0 {
		snow24 = data.OvernightSnowfall.Inches.In()
	}
	season := data.CurrentSeason.Inches.In()
	if season == 0 {
		season = data.SeasonTotal.Inches.In()
	}
	conditions := data.OverallSnowConditions
	if conditions == "" {
		conditions = "Open"
	}
	base := data.BaseDepth.Inches.In()

	return mountain.SnowReport{
		Snow24hIn:    snow24,
		Snow48hIn:    data.FortyEightHourSnowfall.Inches.In(),
		Snow7dIn:     data.SevenDaySnowfall.Inches.In(),
		SeasonSnowIn: season,
		// The feed publishes a single base figure.
		BaseDepthIn: mountain.BaseDepth{Min: base, Max: base},
		Conditions:  conditions,
		SourceURL:   a.cfg.SnowReportURL,
		FetchedAt:   now,
	}, true
}

type vailLift struct {
	Name     string `json:"Name"`
	LiftName string `json:"LiftName"`
	Status   any    `json:"Status"`
	Type     string `json:"Type"`
	LiftType string `json:"LiftType"`
	WaitTime int    `json:"WaitTime"`
}

type vailTrail struct {
	Name       string `json:"Name"`
	Status     any    `json:"Status"`
	IsOpen     bool   `json:"IsOpen"`
	Difficulty any    `json:"Difficulty"`
	IsGroomed  bool   `json:"IsGroomed"`
}

type vailTerrainPayload struct {
	Lifts         []vailLift `json:"Lifts"`
	GroomingAreas []struct {
		Trails []vailTrail `json:"Trails"`
	} `json:"GroomingAreas"`
	Trails []vailTrail `json:"Trails"`
}

// isVailLiftOpen implements the multi-token open equivalence class observed
// in this feed: different lift types report "open", "open_priority",
// "scheduled" or the literal "1" for the same operational state.
func isVailLiftOpen(status string) bool {
	switch strings.ToLower(status) {
	case "open", "open_priority", "scheduled", "1":
		return true
	}
	return false
}

func isVailTrailOpen(t vailTrail) bool {
	if t.IsOpen {
		return true
	}
	status := strings.ToLower(statusString(t.Status))
	return status == "open" || status == "1"
}

func (a *VailAdapter) parseLiftsTerrain(html string, now time.Time) (mountain.LiftsTerrain, bool) {
	match := terrainFeedRe.FindStringSubmatch(html)
	if match == nil {
		log.Printf("%s: FR.TerrainStatusFeed marker not found", a.cfg.Slug)
		return mountain.LiftsTerrain{}, false
	}

	var data vailTerrainPayload
	if err := json.Unmarshal([]byte(match[1]), &data); err != nil {
		log.Printf("%s: error parsing terrain status JSON: %v", a.cfg.Slug, err)
		return mountain.LiftsTerrain{}, false
	}

	// The feed nests trails inside grooming areas; flatten them all. A flat
	// Trails list is an observed fallback shape.
	var rawTrails []vailTrail
	for _, area := range data.GroomingAreas {
		rawTrails = append(rawTrails, area.Trails...)
	}
	if len(rawTrails) == 0 {
		rawTrails = data.Trails
	}

	lifts := make([]mountain.LiftCondition, 0, len(data.Lifts))
	liftsOpen := 0
	for _, l := range data.Lifts {
		status := statusString(l.Status)
		if status == "" {
			status = "Closed"
		}
		if isVailLiftOpen(status) {
			liftsOpen++
		}
		name := l.Name
		if name == "" {
			name = l.LiftName
		}
		liftType := l.Type
		if liftType == "" {
			liftType = l.LiftType
		}
		lifts = append(lifts, mountain.LiftCondition{
			Name:     name,
			Status:   status,
			Type:     liftType,
			WaitTime: l.WaitTime,
		})
	}

	trails := make([]mountain.TrailCondition, 0, len(rawTrails))
	trailsOpen := 0
	for _, t := range rawTrails {
		status := "Closed"
		if isVailTrailOpen(t) {
			status = "Open"
			trailsOpen++
		}
		trails = append(trails, mountain.TrailCondition{
			Name:       t.Name,
			Status:     status,
			Difficulty: statusString(t.Difficulty),
			IsGroomed:  t.IsGroomed,
		})
	}

	return mountain.NewLiftsTerrain(lifts, trails, liftsOpen, trailsOpen, a.cfg.LiftStatusURL, now), true
}

// statusString renders an upstream status token, which may arrive as a
// string, number or bool, as a comparable string.
func statusString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%v", t)
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", t)
	}
}
