// internal/report/report_test.go
package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/soko-cli/internal/api"
)

const sampleBody = `{
	"platform_results": {
		"total_checked": 10,
		"found_count": 2,
		"platforms": [
			{"platform": "GitHub", "url": "https://github.com/ghost", "found": true, "profile_picture": null},
			{"platform": "Reddit", "url": "https://www.reddit.com/user/ghost", "found": false, "error": "timeout"}
		]
	},
	"reddit": {"found": false, "error": "Status 404"},
	"github": {"found": true, "username": "ghost", "location": "Nairobi", "company": "Acme", "public_repos": 3, "twitter_linked": null},
	"analysis": {
		"risk_score": "35",
		"risk_level": "MEDIUM",
		"findings": ["Location on GitHub: Nairobi"],
		"platform_presence": {"found_on": ["GitHub", "Twitter/X"], "count": 2, "platforms_checked": 10},
		"behavior_flags": ["Relatively new account (less than 2 years old)"],
		"keyword_hits": [{"keyword": "riot", "context": "riot downtown", "platform": "reddit"}],
		"recommendations": ["Monitor account for further activity"]
	}
}`

func detailWith(findings ...api.Finding) api.Detail {
	return api.Detail{
		Investigation: api.Investigation{
			ID:        7,
			Username:  "ghost",
			Status:    api.StatusCompleted,
			CreatedAt: api.ParseTimestamp("2025-03-01 10:00:00"),
		},
		Findings: findings,
	}
}

func TestFindAnalysis(t *testing.T) {
	findings := []api.Finding{
		{ID: 1, Platform: "GitHub"},
		{ID: 2, Platform: AnalysisPlatform, Data: "first"},
		{ID: 3, Platform: AnalysisPlatform, Data: "second"},
	}
	got, ok := FindAnalysis(findings)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.ID)

	_, ok = FindAnalysis(findings[:1])
	assert.False(t, ok)

	_, ok = FindAnalysis([]api.Finding{{Platform: "analysis"}})
	assert.False(t, ok, "the sentinel is case sensitive")
}

func TestParse(t *testing.T) {
	body, err := Parse(sampleBody)
	require.NoError(t, err)
	require.NotNil(t, body.Analysis.RiskScore)
	assert.Equal(t, 35, body.Analysis.RiskScore.Int(), "quoted scores are accepted")
	assert.Equal(t, "MEDIUM", body.Analysis.RiskLevel)
	assert.Len(t, body.PlatformResults.Platforms, 2)
	assert.False(t, body.Reddit.Found)
	assert.Equal(t, "Nairobi", body.GitHub.Location)

	_, err = Parse("   ")
	assert.ErrorIs(t, err, ErrEmptyBody)

	_, err = Parse("{not json")
	assert.Error(t, err)
}

func TestMarshalRoundTripKeepsAbsence(t *testing.T) {
	out, err := Marshal(Body{Analysis: Analysis{RiskLevel: "LOW", RiskScore: NumberPtr(0)}})
	require.NoError(t, err)
	assert.Contains(t, out, `"risk_score":0`)
	assert.NotContains(t, out, "found_count")
}

func TestFromFindings(t *testing.T) {
	t.Run("parse failure is swallowed and logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		body := FromFindings([]api.Finding{{ID: 9, Platform: AnalysisPlatform, Data: "{oops"}}, zap.New(core))

		assert.Equal(t, Body{}, body)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, int64(9), logs.All()[0].ContextMap()["finding_id"])
	})

	t.Run("nil logger is allowed", func(t *testing.T) {
		assert.NotPanics(t, func() { FromFindings(nil, nil) })
	})
}

func TestProject(t *testing.T) {
	detail := detailWith(api.Finding{Platform: AnalysisPlatform, Data: sampleBody})
	view := Project(detail, FromFindings(detail.Findings, nil))

	wantHeader := Header{
		ID:        7,
		Title:     "#7",
		Username:  "@ghost",
		Created:   "2025-03-01 10:00:00",
		Status:    "COMPLETED",
		RiskLevel: "MEDIUM",
		RiskScore: "35",
	}
	if diff := cmp.Diff(wantHeader, view.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Metrics{ThreatLevel: "MEDIUM", PlatformsFound: "2", PlatformsChecked: "10"}, view.Metrics)
	require.Len(t, view.Platforms.Cards, 2)
	assert.Empty(t, view.Platforms.Empty)
	assert.True(t, view.Platforms.Cards[0].Found)

	assert.Equal(t, "Account found on 2 of 10 platforms: GitHub, Twitter/X.", view.Behavior.Summary)
	assert.Empty(t, view.Behavior.Clean)
	assert.Len(t, view.Behavior.KeywordHits, 1)

	assert.Nil(t, view.Reddit, "reddit with found=false renders nothing")
	require.NotNil(t, view.GitHub)
	assert.Equal(t, "Acme", view.GitHub.Company)
	assert.Equal(t, []string{"Monitor account for further activity"}, view.Recommendations)
}

// Detail fetch for id 7 with no analysis finding.
func TestProjectWithoutAnalysisFinding(t *testing.T) {
	detail := detailWith(
		api.Finding{Platform: "GitHub", Found: true, Data: `{"platform":"GitHub"}`},
		api.Finding{Platform: "Reddit", Found: false},
	)
	view := Project(detail, FromFindings(detail.Findings, nil))

	assert.Equal(t, UnknownRisk, view.Header.RiskLevel)
	assert.Equal(t, Placeholder, view.Header.RiskScore)
	assert.Equal(t, Placeholder, view.Metrics.PlatformsFound)
	assert.Equal(t, Placeholder, view.Metrics.PlatformsChecked)
	assert.Equal(t, NoPlatformData, view.Platforms.Empty)
	assert.Equal(t, NoSuspiciousData, view.Behavior.Clean)
	assert.Empty(t, view.Behavior.Flags)
	assert.Empty(t, view.Behavior.Summary)
	assert.Nil(t, view.Reddit)
	assert.Nil(t, view.GitHub)
	assert.Empty(t, view.Recommendations)
}

func TestProjectWithMalformedAnalysis(t *testing.T) {
	for _, data := range []string{"", "null", "[]", `"text"`, "{", `{"analysis": 5}`} {
		detail := detailWith(api.Finding{Platform: AnalysisPlatform, Data: data})
		view := Project(detail, FromFindings(detail.Findings, nil))

		assert.Equal(t, UnknownRisk, view.Metrics.ThreatLevel, "data=%q", data)
		assert.Equal(t, NoPlatformData, view.Platforms.Empty, "data=%q", data)
		assert.Equal(t, NoSuspiciousData, view.Behavior.Clean, "data=%q", data)
	}
}

func FuzzFromFindings(f *testing.F) {
	f.Add(sampleBody)
	f.Add("")
	f.Add("{")
	f.Add(`{"analysis":{"risk_score":"x"}}`)
	f.Add(`{"platform_results":{"platforms":[{"platform":1}]}}`)

	f.Fuzz(func(t *testing.T, data string) {
		detail := detailWith(api.Finding{Platform: AnalysisPlatform, Data: data})
		view := Project(detail, FromFindings(detail.Findings, nil))

		if view.Header.RiskLevel == "" {
			t.Fatal("risk level must never be blank")
		}
		if len(view.Platforms.Cards) == 0 && view.Platforms.Empty != NoPlatformData {
			t.Fatal("platform section must fall back to its empty state")
		}
	})
}
