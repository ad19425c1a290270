// internal/render/render.go
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/dashboard"
	"github.com/xkilldash9x/soko-cli/internal/graph"
	"github.com/xkilldash9x/soko-cli/internal/report"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// Text shown by the terminal views.
const (
	OfflineBanner  = "BACKEND OFFLINE"
	NoMatchMessage = "No investigations match the current filter."
	LoadingMessage = "Loading investigation..."
)

// DashboardModel is what the list renderer reads. *dashboard.View implements it.
type DashboardModel interface {
	Stats() dashboard.Stats
	Visible() []api.Investigation
	Filter() dashboard.Filter
	Status() string
	Error() string
	Busy(id int64) bool
}

// Dashboard renders the investigation list.
func Dashboard(s theme.Styles, m DashboardModel, online bool) string {
	var b strings.Builder

	b.WriteString(s.Title.Render("SOKO OSINT"))
	if !online {
		b.WriteString("  " + s.Banner.Render(OfflineBanner))
	}
	b.WriteString("\n\n")

	stats := m.Stats()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statCard(s, "TOTAL INVESTIGATIONS", stats.Total),
		statCard(s, "COMPLETED", stats.Completed),
		statCard(s, "RUNNING", stats.Running),
		statCard(s, "FAILED", stats.Failed),
	))
	b.WriteString("\n")

	if status := m.Status(); status != "" {
		b.WriteString(s.Accent.Render(status) + "\n")
	}
	if msg := m.Error(); msg != "" {
		b.WriteString(s.Error.Render(msg) + "\n")
	}

	heading := "Recent Investigations"
	if f := m.Filter(); f.Active() {
		heading += s.Dim.Render(" (filter: " + describeFilter(f) + ")")
	}
	b.WriteString(s.Section.Render(heading) + "\n")

	rows := m.Visible()
	switch {
	case len(rows) == 0 && stats.Total == 0:
		b.WriteString(s.Dim.Render(dashboard.EmptyMessage) + "\n")
	case len(rows) == 0:
		b.WriteString(s.Dim.Render(NoMatchMessage) + "\n")
	}
	for _, inv := range rows {
		line := fmt.Sprintf("%-6s %-24s %-19s %s",
			"#"+strconv.FormatInt(inv.ID, 10),
			"@"+inv.Username,
			inv.CreatedAt.String(),
			s.Status(string(inv.Status)).Render(strings.ToUpper(string(inv.Status))),
		)
		if m.Busy(inv.ID) {
			line += " " + s.Warning.Render("[deleting]")
		}
		b.WriteString("  " + line + "\n")
	}
	return b.String()
}

func statCard(s theme.Styles, label string, value int) string {
	return s.Card.Render(s.Dim.Render(label) + "\n" + s.Text.Bold(true).Render(strconv.Itoa(value)))
}

func describeFilter(f dashboard.Filter) string {
	var parts []string
	if f.Status != "" {
		parts = append(parts, "status="+string(f.Status))
	}
	if f.Username != "" {
		parts = append(parts, "username~"+f.Username)
	}
	if f.Location != "" {
		parts = append(parts, "location~"+f.Location)
	}
	if f.Organization != "" {
		parts = append(parts, "organization~"+f.Organization)
	}
	return strings.Join(parts, ", ")
}

// Case renders a detail page. graphView is the renderer output for the page's
// network payload.
func Case(s theme.Styles, page *casefile.Page, graphView graph.View) string {
	if page == nil || page.State == casefile.StateLoading {
		return s.Dim.Render(LoadingMessage) + "\n"
	}
	if page.State == casefile.StateError {
		return s.Error.Render("Error: "+page.Err) + "\n" + s.Dim.Render("Type `back` to return to the investigation list.") + "\n"
	}

	v := page.View
	var b strings.Builder

	b.WriteString(s.Dim.Render("INVESTIGATION REPORT "+v.Header.Title) + "\n")
	b.WriteString(s.Title.Render(v.Header.Username) + "\n")
	b.WriteString(s.Dim.Render(fmt.Sprintf("Created: %s · Status: %s", v.Header.Created, v.Header.Status)) + "\n")
	b.WriteString(s.Risk(v.Header.RiskLevel).Render(v.Header.RiskLevel) +
		s.Dim.Render(fmt.Sprintf("  Risk Score: %s/100", v.Header.RiskScore)) + "\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		s.Card.Render(s.Dim.Render("THREAT LEVEL")+"\n"+s.Risk(v.Metrics.ThreatLevel).Render(v.Metrics.ThreatLevel)),
		s.Card.Render(s.Dim.Render("PLATFORMS FOUND")+"\n"+s.Success.Render(v.Metrics.PlatformsFound)),
		s.Card.Render(s.Dim.Render("PLATFORMS CHECKED")+"\n"+s.Accent.Render(v.Metrics.PlatformsChecked)),
	))
	b.WriteString("\n")

	writePlatforms(&b, s, v.Platforms)
	writeBehavior(&b, s, v.Behavior)
	if v.Reddit != nil {
		writeReddit(&b, s, v.Reddit)
	}
	if v.GitHub != nil {
		writeGitHub(&b, s, v.GitHub)
	}

	b.WriteString(s.Section.Render("Investigation Network Map") + "\n")
	if graphView.Visualization == nil {
		b.WriteString("  " + s.Dim.Render(graph.NoDataMessage) + "\n")
	} else {
		for _, line := range strings.Split(graph.Summary(v.Network, v.Stats), "\n") {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("  " + s.Dim.Render(fmt.Sprintf("zoom %.2fx · `graph` exports the interactive map", graphView.Visualization.Scale)) + "\n")
	}

	if len(v.Recommendations) > 0 {
		b.WriteString(s.Section.Render("Investigator Recommendations") + "\n")
		for _, rec := range v.Recommendations {
			b.WriteString("  " + s.Warning.Render("⚠ "+rec) + "\n")
		}
	}
	return b.String()
}

func writePlatforms(b *strings.Builder, s theme.Styles, section report.PlatformSection) {
	b.WriteString(s.Section.Render("Platform Presence") + "\n")
	if len(section.Cards) == 0 {
		b.WriteString("  " + s.Dim.Render(section.Empty) + "\n")
		return
	}
	for _, card := range section.Cards {
		mark := s.Dim.Render("✗ NOT FOUND")
		if card.Found {
			mark = s.Success.Render("✓ FOUND    ")
		}
		line := fmt.Sprintf("  %s  %-12s", mark, card.Platform)
		if card.Found && card.URL != "" {
			line += " " + s.Accent.Render(card.URL)
		}
		b.WriteString(line + "\n")
	}
}

func writeBehavior(b *strings.Builder, s theme.Styles, section report.BehaviorSection) {
	b.WriteString(s.Section.Render("Behavior Analysis") + "\n")
	if section.Clean != "" {
		b.WriteString("  " + s.Success.Render(section.Clean) + "\n")
		return
	}
	if section.Summary != "" {
		b.WriteString("  " + s.Text.Render(section.Summary) + "\n")
	}
	if len(section.Flags) > 0 {
		b.WriteString("  " + s.Dim.Render("BEHAVIOR FLAGS") + "\n")
		for _, flag := range section.Flags {
			b.WriteString("    " + s.Warning.Render("• "+flag) + "\n")
		}
	}
	if len(section.KeywordHits) > 0 {
		b.WriteString("  " + s.Dim.Render("CONFLICT KEYWORDS DETECTED") + "\n")
		for _, hit := range section.KeywordHits {
			b.WriteString(fmt.Sprintf("    %s %s\n      %q\n",
				s.Error.Render(strings.ToUpper(hit.Keyword)),
				s.Dim.Render("via "+hit.Platform),
				hit.Context))
		}
	}
	if len(section.Findings) > 0 {
		b.WriteString("  " + s.Dim.Render("ADDITIONAL FINDINGS") + "\n")
		for _, f := range section.Findings {
			b.WriteString("    • " + f + "\n")
		}
	}
}

func writeRows(b *strings.Builder, s theme.Styles, rows [][2]string) {
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %-16s %s\n", s.Dim.Render(row[0]), row[1]))
	}
}

func orDash(v string) string {
	if v == "" {
		return report.Placeholder
	}
	return v
}

func writeReddit(b *strings.Builder, s theme.Styles, r *report.Reddit) {
	b.WriteString(s.Section.Render("Reddit Profile Details") + "\n")
	verified := "✗ No"
	if r.Verified {
		verified = "✓ Yes"
	}
	writeRows(b, s, [][2]string{
		{"Username", "@" + r.Username},
		{"Total Karma", strconv.Itoa(r.Karma)},
		{"Account Created", orDash(r.AccountAge)},
		{"Email Verified", verified},
	})
	if len(r.RecentPosts) > 0 {
		b.WriteString("  " + s.Dim.Render("RECENT POSTS & COMMENTS") + "\n")
		for _, p := range r.RecentPosts {
			b.WriteString(fmt.Sprintf("    %s %s\n      %s\n",
				s.Accent.Render("r/"+p.Subreddit),
				s.Dim.Render(fmt.Sprintf("%s · %d pts", p.Created, p.Score)),
				p.Content))
		}
	}
}

func writeGitHub(b *strings.Builder, s theme.Styles, g *report.GitHub) {
	b.WriteString(s.Section.Render("GitHub Profile Details") + "\n")
	var rows [][2]string
	add := func(key, val string) {
		if val != "" {
			rows = append(rows, [2]string{key, val})
		}
	}
	add("Name", g.Name)
	rows = append(rows, [2]string{"Username", "@" + g.Username})
	add("Bio", g.Bio)
	add("Location", g.Location)
	add("Email", g.Email)
	add("Company", g.Company)
	rows = append(rows,
		[2]string{"Public Repos", strconv.Itoa(g.PublicRepos)},
		[2]string{"Followers", strconv.Itoa(g.Followers)},
		[2]string{"Following", strconv.Itoa(g.Following)},
		[2]string{"Account Created", orDash(g.AccountAge)},
	)
	if g.TwitterLinked != "" {
		rows = append(rows, [2]string{"Linked Twitter", "@" + g.TwitterLinked})
	}
	writeRows(b, s, rows)
}
