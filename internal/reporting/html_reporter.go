// internal/reporting/html_reporter.go
package reporting

import (
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/graph"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/report"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"risk":           func(p theme.Palette, level string) string { return p.RiskColor(level) },
	"networkSummary": func(v report.CaseView) string { return graph.Summary(v.Network, v.Stats) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>SOKO OSINT report</title>
<style>
  body { margin: 0 auto; max-width: 960px; padding: 24px; background: {{.Palette.Surface}}; color: {{.Palette.Text}}; font-family: sans-serif; }
  section.case { border: 1px solid {{.Palette.Border}}; border-radius: 8px; padding: 16px 20px; margin-bottom: 24px; }
  h1 { color: {{.Palette.Accent}}; }
  h2 { margin: 4px 0; }
  h3 { margin-top: 20px; font-size: 14px; text-transform: uppercase; color: {{.Palette.Muted}}; }
  .muted { color: {{.Palette.Muted}}; }
  .risk { font-weight: bold; }
  .found { color: {{.Palette.RiskLow}}; }
  .missing { color: {{.Palette.Muted}}; }
  .rec { color: {{.Palette.RiskMed}}; }
  a { color: {{.Palette.Accent}}; }
  table { border-collapse: collapse; }
  td { padding: 2px 12px 2px 0; vertical-align: top; }
</style>
</head>
<body>
<h1>SOKO OSINT report</h1>
<p class="muted">Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC · {{len .Cases}} investigation(s)</p>
{{range .Cases}}{{$p := $.Palette}}{{with .View}}
<section class="case" id="case-{{.Header.ID}}">
  <div class="muted">INVESTIGATION REPORT {{.Header.Title}}</div>
  <h2>{{.Header.Username}}</h2>
  <div class="muted">Created: {{.Header.Created}} · Status: {{.Header.Status}}</div>
  <p><span class="risk" style="color: {{risk $p .Header.RiskLevel}}">{{.Header.RiskLevel}}</span>
     <span class="muted">Risk Score: {{.Header.RiskScore}}/100 · Platforms found: {{.Metrics.PlatformsFound}} of {{.Metrics.PlatformsChecked}}</span></p>

  <h3>Platform Presence</h3>
  {{if .Platforms.Cards}}<table>{{range .Platforms.Cards}}
    <tr><td class="{{if .Found}}found{{else}}missing{{end}}">{{if .Found}}✓ FOUND{{else}}✗ NOT FOUND{{end}}</td>
        <td>{{.Platform}}</td><td>{{if and .Found .URL}}<a href="{{.URL}}">{{.URL}}</a>{{end}}</td></tr>{{end}}
  </table>{{else}}<p class="muted">{{.Platforms.Empty}}</p>{{end}}

  <h3>Behavior Analysis</h3>
  {{with .Behavior}}{{if .Clean}}<p class="found">{{.Clean}}</p>{{else}}
    {{if .Summary}}<p>{{.Summary}}</p>{{end}}
    {{if .Flags}}<ul>{{range .Flags}}<li class="rec">{{.}}</li>{{end}}</ul>{{end}}
    {{if .KeywordHits}}<ul>{{range .KeywordHits}}<li><strong>{{.Keyword}}</strong> <span class="muted">via {{.Platform}}</span>: “{{.Context}}”</li>{{end}}</ul>{{end}}
    {{if .Findings}}<ul>{{range .Findings}}<li>{{.}}</li>{{end}}</ul>{{end}}
  {{end}}{{end}}

  {{with .Reddit}}<h3>Reddit Profile Details</h3>
  <table>
    <tr><td class="muted">Username</td><td>@{{.Username}}</td></tr>
    <tr><td class="muted">Total Karma</td><td>{{.Karma}}</td></tr>
    <tr><td class="muted">Account Created</td><td>{{or .AccountAge "—"}}</td></tr>
    <tr><td class="muted">Email Verified</td><td>{{if .Verified}}✓ Yes{{else}}✗ No{{end}}</td></tr>
  </table>
  {{if .RecentPosts}}<ul>{{range .RecentPosts}}<li><strong>r/{{.Subreddit}}</strong> <span class="muted">{{.Created}} · {{.Score}} pts</span><br>{{.Content}}</li>{{end}}</ul>{{end}}
  {{end}}

  {{with .GitHub}}<h3>GitHub Profile Details</h3>
  <table>
    {{if .Name}}<tr><td class="muted">Name</td><td>{{.Name}}</td></tr>{{end}}
    <tr><td class="muted">Username</td><td>@{{.Username}}</td></tr>
    {{if .Bio}}<tr><td class="muted">Bio</td><td>{{.Bio}}</td></tr>{{end}}
    {{if .Location}}<tr><td class="muted">Location</td><td>{{.Location}}</td></tr>{{end}}
    {{if .Email}}<tr><td class="muted">Email</td><td>{{.Email}}</td></tr>{{end}}
    {{if .Company}}<tr><td class="muted">Company</td><td>{{.Company}}</td></tr>{{end}}
    <tr><td class="muted">Public Repos</td><td>{{.PublicRepos}}</td></tr>
    <tr><td class="muted">Followers</td><td>{{.Followers}}</td></tr>
    <tr><td class="muted">Following</td><td>{{.Following}}</td></tr>
    <tr><td class="muted">Account Created</td><td>{{or .AccountAge "—"}}</td></tr>
    {{if .TwitterLinked}}<tr><td class="muted">Linked Twitter</td><td>@{{.TwitterLinked}}</td></tr>{{end}}
  </table>
  {{end}}

  <h3>Investigation Network Map</h3>
  <pre>{{networkSummary .}}</pre>

  {{if .Recommendations}}<h3>Investigator Recommendations</h3>
  <ul>{{range .Recommendations}}<li class="rec">⚠ {{.}}</li>{{end}}</ul>{{end}}
</section>
{{end}}{{end}}
</body>
</html>
`))

type htmlData struct {
	Palette     theme.Palette
	GeneratedAt time.Time
	Cases       []*casefile.Page
}

// HTMLReporter buffers cases and writes one standalone page on Close.
type HTMLReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	mu     sync.Mutex
	data   htmlData
	now    func() time.Time
}

// NewHTMLReporter takes ownership of writer.
func NewHTMLReporter(writer io.WriteCloser, palette theme.Palette) *HTMLReporter {
	return &HTMLReporter{
		writer: writer,
		logger: observability.GetLogger().Named("html_reporter"),
		data:   htmlData{Palette: palette},
		now:    time.Now,
	}
}

func (r *HTMLReporter) Write(page *casefile.Page) error {
	if page == nil || page.State != casefile.StateReady {
		return fmt.Errorf("cannot report a case that has not loaded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data.Cases = append(r.data.Cases, page)
	return nil
}

func (r *HTMLReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data.GeneratedAt = r.now().UTC()
	execErr := htmlTemplate.Execute(r.writer, r.data)
	closeErr := r.writer.Close()

	if execErr != nil {
		r.logger.Error("Failed to render HTML report", zap.Error(execErr))
		return fmt.Errorf("failed to render HTML output: %w", execErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}
	return nil
}
