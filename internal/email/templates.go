package email

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/valleyviewvt/snowline/internal/mountain"
)

var templateFuncs = template.FuncMap{
	"round": func(f float64) int {
		if f < 0 {
			return 0
		}
		return int(f + 0.5)
	},
}

var singleResortTmpl = template.Must(template.New("single").Funcs(templateFuncs).Parse(`
<div style="font-family: Helvetica, Arial, sans-serif; max-width: 600px; margin: 0 auto; color: #1a2b3c;">
  <h1 style="margin-bottom: 4px;">{{.Mountain.Name}} Snow Report</h1>
  <p style="color: #5a6b7c; margin-top: 0;">{{.Mountain.Location}}</p>
  <p>{{.Summary}}</p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr>
      <td style="padding: 8px; border: 1px solid #d8e0e8;"><strong>{{round .SnowReport.Snow24hIn}}"</strong><br>24h snow</td>
      <td style="padding: 8px; border: 1px solid #d8e0e8;"><strong>{{round .SnowReport.Snow48hIn}}"</strong><br>48h snow</td>
      <td style="padding: 8px; border: 1px solid #d8e0e8;"><strong>{{round .SnowReport.SeasonSnowIn}}"</strong><br>season total</td>
      <td style="padding: 8px; border: 1px solid #d8e0e8;"><strong>{{round .SnowReport.BaseDepthIn.Max}}"</strong><br>base depth</td>
    </tr>
    <tr>
      <td style="padding: 8px; border: 1px solid #d8e0e8;"><strong>{{.LiftsTerrain.TrailsOpen}}/{{.LiftsTerrain.TrailsTotal}}</strong><br>trails open</td>
      <td style="padding: 8px; border: 1px solid #d8e0e8;"><strong>{{.LiftsTerrain.LiftsOpen}}/{{.LiftsTerrain.LiftsTotal}}</strong><br>lifts open</td>
      <td style="padding: 8px; border: 1px solid #d8e0e8;"><strong>{{.LiftsTerrain.TerrainOpenPct}}%</strong><br>terrain open</td>
      <td style="padding: 8px; border: 1px solid #d8e0e8;"><strong>{{.Weather.CurrentTempF}}&deg;F</strong><br>{{.Weather.Conditions}}</td>
    </tr>
  </table>
  <p style="margin-top: 16px;"><a href="{{.Mountain.URL}}" style="color: #1464f4;">Full report</a></p>
</div>
`))

var multiResortTmpl = template.Must(template.New("multi").Funcs(templateFuncs).Parse(`
<div style="font-family: Helvetica, Arial, sans-serif; max-width: 600px; margin: 0 auto; color: #1a2b3c;">
  <h1>Daily Snow Digest</h1>
  {{range .}}
  <div style="border: 1px solid #d8e0e8; border-radius: 8px; padding: 12px; margin-bottom: 12px;">
    <h2 style="margin: 0 0 4px 0;">{{.Mountain.Name}}</h2>
    <p style="margin: 0 0 8px 0;">{{.Summary}}</p>
    <p style="margin: 0; color: #5a6b7c;">
      {{round .SnowReport.Snow24hIn}}" in 24h &middot;
      {{round .SnowReport.BaseDepthIn.Max}}" base &middot;
      {{.LiftsTerrain.TrailsOpen}}/{{.LiftsTerrain.TrailsTotal}} trails &middot;
      {{.Weather.CurrentTempF}}&deg;F {{.Weather.Conditions}}
    </p>
  </div>
  {{end}}
</div>
`))

// SingleResortHTML renders the one-resort report email body.
func SingleResortHTML(data *mountain.MountainData) (string, error) {
	var b strings.Builder
	if err := singleResortTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render single-resort email: %w", err)
	}
	return b.String(), nil
}

// MultiResortHTML renders the multi-resort digest body. Callers pass resorts
// already sorted for display.
func MultiResortHTML(data []*mountain.MountainData) (string, error) {
	var b strings.Builder
	if err := multiResortTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render multi-resort email: %w", err)
	}
	return b.String(), nil
}
