package adapters

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"

	"github.com/valleyviewvt/snowline/internal/common"
	"github.com/valleyviewvt/snowline/internal/fetch"
	"github.com/valleyviewvt/snowline/internal/mountain"
	"github.com/valleyviewvt/snowline/internal/weather"
)

// SnowFeed is the authoritative snow-statistics feed consulted alongside the
// scraped page. Nonzero feed fields win during reconciliation.
type SnowFeed interface {
	FetchSnowStats(ctx context.Context) (SnowStats, error)
}

const (
	strattonSlug      = "stratton"
	strattonName      = "Stratton"
	strattonLocation  = "Stratton, VT"
	strattonReportURL = "https://www.onthesnow.com/vermont/stratton-mountain/skireport"
	strattonLat       = 43.1115
	strattonLon       = -72.9081
)

// strattonGlades are counted by the resort in a separate terrain category
// from its numbered trails and must not inflate the trail count. Static
// resort-specific configuration, not a general rule.
var strattonGlades = map[string]bool{
	"Emerald Forest":       true,
	"Shred Wood Forest":    true,
	"Free Fall Gully":      true,
	"Kidderbrook Ravine":   true,
	"Diamond in the Rough": true,
	"Test Pilot":           true,
	"West Pilot":           true,
	"Eclipse":              true,
	"Moonbeam":             true,
	"Vertigo":              true,
	"Why Not":              true,
}

// StrattonAdapter normalizes conditions for Stratton, whose only accessible
// source is a server-rendered aggregator page embedding a JSON blob under
// the #__NEXT_DATA__ script tag, supplemented by the MtnPowder feed.
type StrattonAdapter struct {
	wx      WeatherSource
	feed    SnowFeed
	pageURL string
	httpCfg fetch.Config
	circuit *gobreaker.CircuitBreaker
}

func NewStrattonAdapter(client *http.Client, wx WeatherSource, feed SnowFeed) *StrattonAdapter {
	return &StrattonAdapter{
		wx:      wx,
		feed:    feed,
		pageURL: strattonReportURL,
		httpCfg: fetch.Config{
			Client:  client,
			Backoff: fetch.DefaultBackoff(),
		},
		circuit: fetch.NewBreaker(strattonSlug),
	}
}

func (a *StrattonAdapter) Slug() string { return strattonSlug }
func (a *StrattonAdapter) Name() string { return strattonName }

// Fetch pulls the forecast, the feed, and the page three ways in parallel.
// Any branch may fail without aborting the siblings; each section is parsed
// and degraded independently.
func (a *StrattonAdapter) Fetch(ctx context.Context) (*mountain.MountainData, error) {
	now := time.Now().UTC()
	headers := map[string]string{"User-Agent": browserUserAgent}

	var (
		wg      sync.WaitGroup
		wx      weather.WeatherData
		wxErr   error
		stats   SnowStats
		feedErr error
		html    string
		pageErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		wx, wxErr = a.wx.Fetch(ctx, strattonLat, strattonLon)
	}()
	go func() {
		defer wg.Done()
		stats, feedErr = a.feed.FetchSnowStats(ctx)
	}()
	go func() {
		defer wg.Done()
		html, pageErr = fetch.Text(ctx, a.httpCfg, a.circuit, a.pageURL, headers)
	}()
	wg.Wait()

	if wxErr != nil {
		log.Printf("stratton: weather fetch failed: %v", wxErr)
		wx = weather.Unavailable(now)
	}
	if feedErr != nil {
		log.Printf("stratton: mtnpowder feed failed: %v", feedErr)
		stats = SnowStats{}
	}

	snowReport := mountain.UnavailableSnowReport(strattonReportURL, now)
	liftsTerrain := mountain.EmptyLiftsTerrain(strattonReportURL, now)

	if pageErr != nil {
		log.Printf("stratton: page fetch failed: %v", pageErr)
	} else if resort, ok := parseNextData(html); ok {
		if report, ok := parseStrattonSnow(resort, now); ok {
			snowReport = report
		}
		if lt, ok := parseStrattonTerrain(resort, now); ok {
			liftsTerrain = lt
		}
	}

	reconcileSnowStats(&snowReport, stats)

	return &mountain.MountainData{
		Mountain: mountain.MountainInfo{
			Slug:        strattonSlug,
			Name:        strattonName,
			URL:         strattonReportURL,
			Location:    strattonLocation,
			LastUpdated: now,
		},
		SnowReport:   snowReport,
		LiftsTerrain: liftsTerrain,
		Weather:      wx,
		Summary:      mountain.Summary(strattonName, snowReport, liftsTerrain, wx),
		GeneratedAt:  now,
	}, nil
}

// reconcileSnowStats applies the feed-over-page precedence rule: the feed is
// fresher for cumulative figures, which the page's own JSON tends to report
// as stale zero, so every nonzero feed field replaces the page value.
func reconcileSnowStats(report *mountain.SnowReport, stats SnowStats) {
	if stats.Snow24hIn > 0 {
		report.Snow24hIn = stats.Snow24hIn
	}
	if stats.Snow48hIn > 0 {
		report.Snow48hIn = stats.Snow48hIn
	}
	if stats.Snow7dIn > 0 {
		report.Snow7dIn = stats.Snow7dIn
	}
	if stats.SeasonSnowIn > 0 {
		report.SeasonSnowIn = stats.SeasonSnowIn
	}
	if stats.BaseDepthIn.Max > 0 {
		report.BaseDepthIn = stats.BaseDepthIn
	}
}

type strattonResort struct {
	Snow struct {
		Last24 mountain.FlexInches `json:"last24"`
		Last48 mountain.FlexInches `json:"last48"`
		Last72 mountain.FlexInches `json:"last72"`
		Base   mountain.FlexInches `json:"base"`
	} `json:"snow"`
	Depths struct {
		Base mountain.FlexInches `json:"base"`
	} `json:"depths"`
	Terrain struct {
		Runs  json.RawMessage `json:"runs"`
		Lifts struct {
			Details []strattonLift `json:"details"`
		} `json:"lifts"`
	} `json:"terrain"`
}

type strattonRun struct {
	Name       string `json:"name"`
	Status     any    `json:"status"`
	Difficulty int    `json:"difficulty"`
	Grooming   bool   `json:"grooming"`
}

type strattonLift struct {
	Name   string `json:"name"`
	Status int    `json:"status"`
	Type   string `json:"type"`
}

type nextData struct {
	Props struct {
		PageProps struct {
			FullResort *strattonResort `json:"fullResort"`
		} `json:"pageProps"`
	} `json:"props"`
}

// parseNextData extracts the server-rendered JSON blob from the
// #__NEXT_DATA__ script tag.
func parseNextData(html string) (*strattonResort, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("stratton: cannot parse page HTML: %v", err)
		return nil, false
	}

	raw := doc.Find("script#__NEXT_DATA__").First().Text()
	if raw == "" {
		log.Printf("stratton: __NEXT_DATA__ script not found")
		return nil, false
	}

	var data nextData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		log.Printf("stratton: error parsing __NEXT_DATA__ JSON: %v", err)
		return nil, false
	}
	if data.Props.PageProps.FullResort == nil {
		log.Printf("stratton: fullResort missing from page payload")
		return nil, false
	}
	return data.Props.PageProps.FullResort, true
}

func parseStrattonSnow(resort *strattonResort, now time.Time) (mountain.SnowReport, bool) {
	base := resort.Depths.Base.In()
	if base == 0 {
		base = resort.Snow.Base.In()
	}

	last24 := resort.Snow.Last24.In()
	last48 := resort.Snow.Last48.In()
	last72 := resort.Snow.Last72.In()

	// The page frequently drops the short windows; fall back to the next
	// wider one rather than reporting zero.
	snow24 := last24
	if snow24 == 0 {
		snow24 = last48
	}
	snow48 := last48
	if snow48 == 0 {
		snow48 = last72
	}

	return mountain.SnowReport{
		Snow24hIn:   snow24,
		Snow48hIn:   snow48,
		Snow7dIn:    last72,
		BaseDepthIn: mountain.BaseDepth{Min: base, Max: base},
		Conditions:  "Open",
		SourceURL:   strattonReportURL,
		FetchedAt:   now,
	}, true
}

// extractRuns probes the known nesting shapes of terrain.runs in priority
// order: a flat array, an object with a details list, then any object whose
// values are runs.
func extractRuns(raw json.RawMessage) []strattonRun {
	if len(raw) == 0 {
		return nil
	}

	var flat []strattonRun
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat
	}

	var nested struct {
		Details []strattonRun `json:"details"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested.Details) > 0 {
		return nested.Details
	}

	var keyed map[string]strattonRun
	if err := json.Unmarshal(raw, &keyed); err == nil && len(keyed) > 0 {
		runs := make([]strattonRun, 0, len(keyed))
		for _, r := range keyed {
			runs = append(runs, r)
		}
		return runs
	}

	return nil
}

// includeTrail filters out entries the resort does not count as ordinary
// trails: composite multi-trail labels, non-skiable or duplicate-labeled
// utility paths, and glades.
func includeTrail(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, ",&") {
		return false
	}
	if common.HasAny(name, "Uphill", "Shortcut", "Cut Through", "Work Road", "Access", "Extension") {
		return false
	}
	return !strattonGlades[name]
}

// mapDifficulty translates the aggregator's small integer difficulty code.
// The mapping was inferred from sample payloads; unknown codes stay empty
// rather than failing.
func mapDifficulty(code int) string {
	switch code {
	case 1:
		return "green"
	case 2:
		return "blue"
	case 3:
		return "black"
	case 4:
		return "double_black"
	}
	return ""
}

func isStrattonRunOpen(status any) bool {
	switch t := status.(type) {
	case float64:
		return t == 1
	case string:
		return t == "Open" || t == "1"
	}
	return false
}

// strattonLiftOpenStatus is the single code observed to mean "open" in this
// feed. Deliberately distinct from the multi-token class other resorts use.
const strattonLiftOpenStatus = 2

func parseStrattonTerrain(resort *strattonResort, now time.Time) (mountain.LiftsTerrain, bool) {
	runs := extractRuns(resort.Terrain.Runs)

	trails := make([]mountain.TrailCondition, 0, len(runs))
	trailsOpen := 0
	for _, r := range runs {
		if !includeTrail(r.Name) {
			continue
		}
		status := "Closed"
		if isStrattonRunOpen(r.Status) {
			status = "Open"
			trailsOpen++
		}
		trails = append(trails, mountain.TrailCondition{
			Name:       strings.TrimSpace(r.Name),
			Status:     status,
			Difficulty: mapDifficulty(r.Difficulty),
			IsGroomed:  r.Grooming,
		})
	}

	rawLifts := resort.Terrain.Lifts.Details
	lifts := make([]mountain.LiftCondition, 0, len(rawLifts))
	liftsOpen := 0
	for _, l := range rawLifts {
		status := "Closed"
		if l.Status == strattonLiftOpenStatus {
			status = "Open"
			liftsOpen++
		}
		lifts = append(lifts, mountain.LiftCondition{
			Name:   l.Name,
			Status: status,
			Type:   l.Type,
		})
	}

	if len(trails) == 0 && len(lifts) == 0 {
		return mountain.LiftsTerrain{}, false
	}

	return mountain.NewLiftsTerrain(lifts, trails, liftsOpen, trailsOpen, strattonReportURL, now), true
}
