// internal/report/types.go
package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/json-iterator/go"
)

// Number is a numeric report field that tolerates being quoted.
type Number float64

// UnmarshalJSON accepts 12, 12.5 and "12".
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("report: %q is not a number", string(data))
	}
	*n = Number(f)
	return nil
}

func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Int truncates the number.
func (n Number) Int() int {
	return int(n)
}

// NumberPtr is a convenience for building report bodies.
func NumberPtr(v float64) *Number {
	n := Number(v)
	return &n
}

// Body is the parsed document stored in the analysis finding's data field.
// Every part is optional.
type Body struct {
	Analysis        Analysis        `json:"analysis"`
	PlatformResults PlatformResults `json:"platform_results"`
	Reddit          *Reddit         `json:"reddit,omitempty"`
	GitHub          *GitHub         `json:"github,omitempty"`
}

// Analysis is the risk assessment.
type Analysis struct {
	Username         string       `json:"username,omitempty"`
	AnalyzedAt       string       `json:"analyzed_at,omitempty"`
	RiskScore        *Number      `json:"risk_score,omitempty"`
	RiskLevel        string       `json:"risk_level,omitempty"`
	Findings         []string     `json:"findings,omitempty"`
	PlatformPresence Presence     `json:"platform_presence"`
	BehaviorFlags    []string     `json:"behavior_flags,omitempty"`
	KeywordHits      []KeywordHit `json:"keyword_hits,omitempty"`
	Recommendations  []string     `json:"recommendations,omitempty"`
}

// Presence summarizes where the username was found.
type Presence struct {
	FoundOn          []string `json:"found_on,omitempty"`
	Count            *Number  `json:"count,omitempty"`
	PlatformsChecked *Number  `json:"platforms_checked,omitempty"`
}

// KeywordHit is one conflict keyword matched in a post.
type KeywordHit struct {
	Keyword  string `json:"keyword"`
	Context  string `json:"context"`
	Platform string `json:"platform"`
}

// PlatformResults is the outcome of the presence sweep.
type PlatformResults struct {
	Username     string           `json:"username,omitempty"`
	SearchedAt   string           `json:"searched_at,omitempty"`
	TotalChecked *Number          `json:"total_checked,omitempty"`
	FoundCount   *Number          `json:"found_count,omitempty"`
	Platforms    []PlatformResult `json:"platforms,omitempty"`
}

// PlatformResult is the check of a single platform.
type PlatformResult struct {
	Platform       string `json:"platform"`
	Username       string `json:"username,omitempty"`
	URL            string `json:"url,omitempty"`
	Found          bool   `json:"found"`
	StatusCode     int    `json:"status_code,omitempty"`
	CheckedAt      string `json:"checked_at,omitempty"`
	PageTitle      string `json:"page_title,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Error          string `json:"error,omitempty"`
	// GitHub platform checks may carry profile facets used by the graph.
	Location string `json:"location,omitempty"`
	Company  string `json:"company,omitempty"`
	// Reddit platform checks may carry posts used by the graph.
	RecentPosts []Post `json:"recent_posts,omitempty"`
}

// Reddit is the detailed Reddit profile. Only meaningful when Found is set.
type Reddit struct {
	Found          bool   `json:"found"`
	Platform       string `json:"platform,omitempty"`
	Username       string `json:"username,omitempty"`
	AccountAge     string `json:"account_age,omitempty"`
	Karma          int    `json:"karma,omitempty"`
	Verified       bool   `json:"verified,omitempty"`
	RecentPosts    []Post `json:"recent_posts,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Post is a recent Reddit post or comment.
type Post struct {
	Content   string `json:"content"`
	Subreddit string `json:"subreddit,omitempty"`
	Score     int    `json:"score,omitempty"`
	Created   string `json:"created,omitempty"`
}

// GitHub is the detailed GitHub profile. Only meaningful when Found is set.
type GitHub struct {
	Found          bool   `json:"found"`
	Platform       string `json:"platform,omitempty"`
	Username       string `json:"username,omitempty"`
	Name           string `json:"name,omitempty"`
	Bio            string `json:"bio,omitempty"`
	Location       string `json:"location,omitempty"`
	Email          string `json:"email,omitempty"`
	Company        string `json:"company,omitempty"`
	Followers      int    `json:"followers,omitempty"`
	Following      int    `json:"following,omitempty"`
	PublicRepos    int    `json:"public_repos,omitempty"`
	AccountAge     string `json:"account_age,omitempty"`
	TwitterLinked  string `json:"twitter_linked,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Error          string `json:"error,omitempty"`
}
