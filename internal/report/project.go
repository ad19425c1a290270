// internal/report/project.go
package report

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/soko-cli/internal/api"
)

// Text used when a value or a whole section is absent.
const (
	Placeholder      = "—"
	UnknownRisk      = "UNKNOWN"
	NoPlatformData   = "No platform data available."
	NoSuspiciousData = "No suspicious behavior detected in available data."
)

// CaseView is the render-ready projection of one investigation. Each section
// decides for itself whether it has content, an empty state, or nothing.
type CaseView struct {
	Header          Header
	Metrics         Metrics
	Platforms       PlatformSection
	Behavior        BehaviorSection
	Reddit          *Reddit
	GitHub          *GitHub
	Network         *api.Network
	Stats           *api.GraphStats
	Recommendations []string
}

type Header struct {
	ID        int64
	Title     string
	Username  string
	Created   string
	Status    string
	RiskLevel string
	RiskScore string
}

type Metrics struct {
	ThreatLevel      string
	PlatformsFound   string
	PlatformsChecked string
}

type PlatformSection struct {
	Cards []PlatformCard
	// Empty holds the empty-state message when there are no cards.
	Empty string
}

type PlatformCard struct {
	Platform       string
	URL            string
	ProfilePicture string
	Found          bool
}

type BehaviorSection struct {
	Summary     string
	Flags       []string
	KeywordHits []KeywordHit
	Findings    []string
	// Clean holds the empty-state message when nothing suspicious was recorded.
	Clean string
}

// Project builds the CaseView for a fetched detail and its parsed body.
func Project(detail api.Detail, body Body) CaseView {
	inv := detail.Investigation
	analysis := body.Analysis

	riskLevel := analysis.RiskLevel
	if riskLevel == "" {
		riskLevel = UnknownRisk
	}

	view := CaseView{
		Header: Header{
			ID:        inv.ID,
			Title:     fmt.Sprintf("#%d", inv.ID),
			Username:  "@" + inv.Username,
			Created:   orPlaceholder(inv.CreatedAt.String()),
			Status:    strings.ToUpper(string(inv.Status)),
			RiskLevel: riskLevel,
			RiskScore: numberOrPlaceholder(analysis.RiskScore),
		},
		Metrics: Metrics{
			ThreatLevel:      riskLevel,
			PlatformsFound:   numberOrPlaceholder(body.PlatformResults.FoundCount),
			PlatformsChecked: numberOrPlaceholder(body.PlatformResults.TotalChecked),
		},
		Platforms:       projectPlatforms(body.PlatformResults.Platforms),
		Behavior:        projectBehavior(analysis),
		Network:         detail.Network,
		Stats:           detail.Stats,
		Recommendations: analysis.Recommendations,
	}

	if body.Reddit != nil && body.Reddit.Found {
		view.Reddit = body.Reddit
	}
	if body.GitHub != nil && body.GitHub.Found {
		view.GitHub = body.GitHub
	}
	return view
}

func projectPlatforms(results []PlatformResult) PlatformSection {
	if len(results) == 0 {
		return PlatformSection{Empty: NoPlatformData}
	}
	cards := make([]PlatformCard, 0, len(results))
	for _, r := range results {
		cards = append(cards, PlatformCard{
			Platform:       r.Platform,
			URL:            r.URL,
			ProfilePicture: r.ProfilePicture,
			Found:          r.Found,
		})
	}
	return PlatformSection{Cards: cards}
}

func projectBehavior(a Analysis) BehaviorSection {
	if len(a.BehaviorFlags) == 0 && len(a.KeywordHits) == 0 && len(a.Findings) == 0 {
		return BehaviorSection{Clean: NoSuspiciousData}
	}
	section := BehaviorSection{
		Flags:       a.BehaviorFlags,
		KeywordHits: a.KeywordHits,
		Findings:    a.Findings,
	}
	if p := a.PlatformPresence; len(p.FoundOn) > 0 {
		count := fmt.Sprint(len(p.FoundOn))
		if p.Count != nil {
			count = p.Count.String()
		}
		section.Summary = fmt.Sprintf("Account found on %s of %s platforms: %s.",
			count, numberOrPlaceholder(p.PlatformsChecked), strings.Join(p.FoundOn, ", "))
	}
	return section
}

func numberOrPlaceholder(n *Number) string {
	if n == nil {
		return Placeholder
	}
	return n.String()
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
