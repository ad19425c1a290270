// internal/mockbackend/analyzer.go
package mockbackend

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xkilldash9x/soko-cli/internal/report"
)

// Risk levels and their score thresholds.
const (
	RiskHigh   = "HIGH"
	RiskMedium = "MEDIUM"
	RiskLow    = "LOW"

	highThreshold   = 50
	mediumThreshold = 25
)

// ConflictKeywords are searched for in recent Reddit posts.
var ConflictKeywords = []string{
	"attack", "kill", "war", "bomb", "destroy", "fight",
	"hate", "enemy", "threat", "danger", "fake", "lie",
	"protest", "riot", "coup", "overthrow", "uprising",
	"crisis", "emergency", "urgent", "breaking", "exposed",
}

// Analyze scores the collected data of one investigation.
func Analyze(username string, results report.PlatformResults, reddit *report.Reddit, github *report.GitHub, now time.Time) report.Analysis {
	a := report.Analysis{
		Username:        username,
		AnalyzedAt:      isoNow(now),
		Findings:        []string{},
		BehaviorFlags:   []string{},
		KeywordHits:     []report.KeywordHit{},
		Recommendations: []string{},
	}
	score := 0

	foundOn := []string{}
	for _, p := range results.Platforms {
		if p.Found {
			foundOn = append(foundOn, p.Platform)
		}
	}
	checked := 0.0
	if results.TotalChecked != nil {
		checked = float64(*results.TotalChecked)
	}
	a.PlatformPresence = report.Presence{
		FoundOn:          foundOn,
		Count:            report.NumberPtr(float64(len(foundOn))),
		PlatformsChecked: report.NumberPtr(checked),
	}
	switch n := len(foundOn); {
	case n >= 7:
		score += 20
		a.BehaviorFlags = append(a.BehaviorFlags, fmt.Sprintf("Present on %d platforms simultaneously", n))
	case n >= 4:
		score += 10
		a.BehaviorFlags = append(a.BehaviorFlags, fmt.Sprintf("Active on %d platforms", n))
	}

	if reddit != nil && reddit.Found {
		if year, ok := accountYear(reddit.AccountAge); ok {
			switch age := now.Year() - year; {
			case age < 1:
				score += 25
				a.BehaviorFlags = append(a.BehaviorFlags, "Very new account (less than 1 year old) - possible fake")
			case age < 2:
				score += 10
				a.BehaviorFlags = append(a.BehaviorFlags, "Relatively new account (less than 2 years old)")
			}
		}

		for _, post := range reddit.RecentPosts {
			content := strings.ToLower(post.Content)
			for _, keyword := range ConflictKeywords {
				if strings.Contains(content, keyword) {
					a.KeywordHits = append(a.KeywordHits, report.KeywordHit{
						Keyword:  keyword,
						Context:  truncate(post.Content, 100),
						Platform: "reddit",
					})
				}
			}
		}
		if n := len(a.KeywordHits); n > 0 {
			score += n * 5
			a.BehaviorFlags = append(a.BehaviorFlags, fmt.Sprintf("%d conflict-related keywords found in posts", n))
		}
	}

	if github != nil && github.Found {
		if github.TwitterLinked != "" {
			a.Findings = append(a.Findings, "GitHub links to Twitter account: @"+github.TwitterLinked)
		}
		if github.Location != "" {
			a.Findings = append(a.Findings, "Location on GitHub: "+github.Location)
		}
		if github.Email != "" {
			a.Findings = append(a.Findings, "Public email found: "+github.Email)
		}
	}

	switch {
	case score >= highThreshold:
		a.RiskLevel = RiskHigh
		a.Recommendations = append(a.Recommendations,
			"Escalate to senior investigator immediately",
			"Collect full post history before account is deleted")
	case score >= mediumThreshold:
		a.RiskLevel = RiskMedium
		a.Recommendations = append(a.Recommendations,
			"Monitor account for further activity",
			"Cross-reference with known misinformation campaigns")
	default:
		a.RiskLevel = RiskLow
		a.Recommendations = append(a.Recommendations, "Continue monitoring, low immediate threat")
	}
	a.RiskScore = report.NumberPtr(float64(score))
	return a
}

// accountYear reads the year of a YYYY-MM-DD date.
func accountYear(date string) (int, bool) {
	if len(date) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
