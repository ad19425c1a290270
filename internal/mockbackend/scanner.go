// internal/mockbackend/scanner.go
package mockbackend

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/xkilldash9x/soko-cli/internal/report"
)

// Scanner gathers the raw data of an investigation.
type Scanner interface {
	SearchUsername(ctx context.Context, username string) (report.PlatformResults, error)
	Reddit(ctx context.Context, username string) (report.Reddit, error)
	GitHub(ctx context.Context, username string) (report.GitHub, error)
}

type platform struct {
	name string
	url  string
}

// Platforms checked by the presence sweep, in report order.
var platforms = []platform{
	{"Facebook", "https://www.facebook.com/%s"},
	{"Instagram", "https://www.instagram.com/%s"},
	{"Twitter/X", "https://twitter.com/%s"},
	{"TikTok", "https://www.tiktok.com/@%s"},
	{"YouTube", "https://www.youtube.com/@%s"},
	{"GitHub", "https://github.com/%s"},
	{"Reddit", "https://www.reddit.com/user/%s"},
	{"LinkedIn", "https://www.linkedin.com/in/%s"},
	{"Pinterest", "https://www.pinterest.com/%s"},
	{"Telegram", "https://t.me/%s"},
}

var (
	fixtureLocations = []string{"", "Nairobi, Kenya", "Berlin", "San Francisco, CA", "Lagos", "Helsinki"}
	fixtureCompanies = []string{"", "@acme", "Initech", "Umbrella Corp", "", "Hooli"}
	fixturePosts     = []report.Post{
		{Content: "Anyone else following the protest downtown tonight?", Subreddit: "news"},
		{Content: "My first mechanical keyboard build", Subreddit: "MechanicalKeyboards"},
		{Content: "Breaking: the bridge is closed again", Subreddit: "Nairobi"},
		{Content: "Tips for learning Go generics", Subreddit: "golang"},
		{Content: "This article is fake and everyone knows it", Subreddit: "worldnews"},
		{Content: "Weekend hiking photos", Subreddit: "hiking"},
		{Content: "How do I fight procrastination?", Subreddit: "productivity"},
	}
)

// FixtureScanner produces deterministic results derived from a hash of the
// username, so the same name always yields the same report.
type FixtureScanner struct {
	now func() time.Time
}

// NewFixtureScanner creates a scanner. now may be nil.
func NewFixtureScanner(now func() time.Time) *FixtureScanner {
	if now == nil {
		now = time.Now
	}
	return &FixtureScanner{now: now}
}

func seed(username string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(username)))
	return h.Sum64()
}

// foundOn reports whether seed s places the user on the platform at index i.
func foundOn(s uint64, i int) bool {
	return s>>(uint(i)*3)&0x3 != 0
}

func displayName(username string) string {
	r := []rune(username)
	if len(r) == 0 {
		return ""
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func isoNow(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000000")
}

func (f *FixtureScanner) SearchUsername(ctx context.Context, username string) (report.PlatformResults, error) {
	if err := ctx.Err(); err != nil {
		return report.PlatformResults{}, err
	}
	s := seed(username)
	now := f.now()
	reddit, _ := f.Reddit(ctx, username)
	github, _ := f.GitHub(ctx, username)

	results := report.PlatformResults{
		Username:     username,
		SearchedAt:   isoNow(now),
		TotalChecked: report.NumberPtr(float64(len(platforms))),
	}
	found := 0
	for i, p := range platforms {
		url := fmt.Sprintf(p.url, username)
		r := report.PlatformResult{
			Platform:   p.name,
			Username:   username,
			URL:        url,
			Found:      foundOn(s, i),
			StatusCode: 404,
			CheckedAt:  isoNow(now),
		}
		if r.Found {
			found++
			r.StatusCode = 200
			r.PageTitle = fmt.Sprintf("%s on %s", username, p.name)
		}
		switch {
		case p.name == "GitHub" && github.Found:
			r.ProfilePicture = github.ProfilePicture
			r.Location = github.Location
			r.Company = github.Company
		case p.name == "Reddit" && reddit.Found:
			r.ProfilePicture = reddit.ProfilePicture
			r.RecentPosts = reddit.RecentPosts
		}
		results.Platforms = append(results.Platforms, r)
	}
	results.FoundCount = report.NumberPtr(float64(found))
	return results, nil
}

func platformIndex(name string) int {
	for i, p := range platforms {
		if p.name == name {
			return i
		}
	}
	return -1
}

func (f *FixtureScanner) Reddit(ctx context.Context, username string) (report.Reddit, error) {
	if err := ctx.Err(); err != nil {
		return report.Reddit{}, err
	}
	s := seed(username)
	if !foundOn(s, platformIndex("Reddit")) {
		return report.Reddit{Found: false, Error: "Status 404"}, nil
	}

	now := f.now()
	created := now.AddDate(-int(s>>32%4), -int(s>>40%12), 0)
	posts := make([]report.Post, 0, 3)
	for i := 0; i < 3; i++ {
		p := fixturePosts[(s>>(8*uint(i))+uint64(i))%uint64(len(fixturePosts))]
		p.Score = int(s>>(4*uint(i))%250) - 10
		p.Created = now.Add(-time.Duration(i+1) * 26 * time.Hour).Format("2006-01-02 15:04")
		posts = append(posts, p)
	}

	return report.Reddit{
		Found:          true,
		Platform:       "reddit",
		Username:       username,
		AccountAge:     created.Format("2006-01-02"),
		Karma:          int(s % 25000),
		Verified:       s>>50&1 == 1,
		RecentPosts:    posts,
		ProfilePicture: "https://www.redditstatic.com/avatars/" + strings.ToLower(username) + ".png",
	}, nil
}

func (f *FixtureScanner) GitHub(ctx context.Context, username string) (report.GitHub, error) {
	if err := ctx.Err(); err != nil {
		return report.GitHub{}, err
	}
	s := seed(username)
	if !foundOn(s, platformIndex("GitHub")) {
		return report.GitHub{Found: false, Error: "Status 404"}, nil
	}

	created := f.now().AddDate(-int(s>>20%12)-1, 0, 0)
	gh := report.GitHub{
		Found:          true,
		Platform:       "github",
		Username:       username,
		Name:           displayName(username),
		Location:       fixtureLocations[s>>24%uint64(len(fixtureLocations))],
		Company:        fixtureCompanies[s>>28%uint64(len(fixtureCompanies))],
		Followers:      int(s >> 8 % 2000),
		Following:      int(s >> 16 % 300),
		PublicRepos:    int(s >> 12 % 120),
		AccountAge:     created.Format("2006-01-02"),
		ProfilePicture: "https://avatars.githubusercontent.com/" + username,
	}
	if s>>44&1 == 1 {
		gh.Email = strings.ToLower(username) + "@example.com"
	}
	if s>>46&1 == 1 {
		gh.TwitterLinked = username
	}
	if s>>48&1 == 1 {
		gh.Bio = "Open source tinkerer"
	}
	return gh, nil
}
