// internal/mockbackend/network_test.go
package mockbackend

import (
	"context"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/report"
)

func finding(t *testing.T, platform string, found bool, data report.PlatformResult) api.Finding {
	t.Helper()
	raw, err := json.MarshalToString(data)
	require.NoError(t, err)
	return api.Finding{Platform: platform, Found: found, ProfileURL: data.URL, Data: raw}
}

func TestBuildNetwork(t *testing.T) {
	inv := api.Investigation{ID: 3, Username: "ghost"}
	posts := []report.Post{
		{Subreddit: "a"}, {Subreddit: "b"}, {Subreddit: ""}, {Subreddit: "d"}, {Subreddit: "e"}, {Subreddit: "f"},
	}
	findings := []api.Finding{
		finding(t, "GitHub", true, report.PlatformResult{URL: "https://github.com/ghost", Location: "Berlin", Company: "Initech"}),
		finding(t, "Reddit", true, report.PlatformResult{RecentPosts: posts}),
		finding(t, "Facebook", false, report.PlatformResult{}),
		{Platform: "Telegram", Found: true, Data: "not json"},
		{Platform: report.AnalysisPlatform, Found: true, Data: `{}`},
	}

	network, stats := BuildNetwork(inv, findings)

	// target, GitHub, Berlin, Initech, Reddit, 5 subreddits, Telegram.
	require.Len(t, network.Nodes, 11)
	assert.Equal(t, "node_0", network.Nodes[0].ID)
	assert.Equal(t, "@ghost", network.Nodes[0].Label)
	assert.Equal(t, "Investigation #3", network.Nodes[0].Title)
	assert.Equal(t, "target", network.Nodes[0].Type)
	assert.Equal(t, "https://github.com/ghost", network.Nodes[1].Title)

	labels := map[string]string{}
	for _, e := range network.Edges {
		labels[e.To] = e.Label
	}
	assert.Equal(t, "located_at", labels["node_2"])
	assert.Equal(t, "works_at", labels["node_3"])
	assert.Equal(t, "active_in", labels["node_5"])
	assert.Equal(t, "r/unknown", network.Nodes[7].Label)
	assert.Equal(t, "Telegram", network.Nodes[10].Label)

	assert.Equal(t, api.NetworkSummary{Target: "ghost", PlatformsFound: 3, TotalNodes: 11, TotalConnections: 10}, network.Summary)

	// A tree: no triangles.
	assert.Equal(t, 11, stats.NodeCount)
	assert.Equal(t, 10, stats.EdgeCount)
	assert.InDelta(t, 2*10.0/(11*10), stats.Density, 1e-9)
	assert.Zero(t, stats.AvgClustering)
}

func TestBuildNetworkTargetOnly(t *testing.T) {
	network, stats := BuildNetwork(api.Investigation{ID: 1, Username: "nobody"}, nil)
	assert.Len(t, network.Nodes, 1)
	assert.Empty(t, network.Edges)
	assert.Equal(t, api.GraphStats{NodeCount: 1}, stats)
}

func TestGraphStatsClustering(t *testing.T) {
	g := newGraphBuilder()
	a := g.addNode("a", "platform", "")
	b := g.addNode("b", "platform", "")
	c := g.addNode("c", "platform", "")
	d := g.addNode("d", "platform", "")
	g.addEdge(a, b, "")
	g.addEdge(b, c, "")
	g.addEdge(c, a, "")
	g.addEdge(c, d, "")
	// A repeated edge is one edge of the undirected graph.
	g.addEdge(d, c, "")

	s := g.stats()
	assert.Equal(t, 4, s.NodeCount)
	assert.Equal(t, 4, s.EdgeCount)
	assert.InDelta(t, 8.0/12.0, s.Density, 1e-9)
	// a and b: 1, c: 1/3, d: 0.
	assert.InDelta(t, (1+1+1.0/3)/4, s.AvgClustering, 1e-9)
}

func TestFixtureScannerIsDeterministic(t *testing.T) {
	ctx := context.Background()
	scanner := NewFixtureScanner(func() time.Time { return fixedNow })

	first, err := scanner.SearchUsername(ctx, "Torvalds")
	require.NoError(t, err)
	second, err := scanner.SearchUsername(ctx, "torvalds")
	require.NoError(t, err)

	require.Len(t, first.Platforms, len(platforms))
	for i := range first.Platforms {
		assert.Equal(t, first.Platforms[i].Found, second.Platforms[i].Found)
	}
	assert.Equal(t, "https://github.com/Torvalds", first.Platforms[5].URL)

	found := 0
	for _, p := range first.Platforms {
		if p.Found {
			found++
			assert.Equal(t, 200, p.StatusCode)
		} else {
			assert.Equal(t, 404, p.StatusCode)
		}
	}
	assert.Equal(t, float64(found), float64(*first.FoundCount))

	reddit, err := scanner.Reddit(ctx, "torvalds")
	require.NoError(t, err)
	assert.Equal(t, first.Platforms[platformIndex("Reddit")].Found, reddit.Found)

	github, err := scanner.GitHub(ctx, "torvalds")
	require.NoError(t, err)
	assert.Equal(t, first.Platforms[platformIndex("GitHub")].Found, github.Found)
	if github.Found {
		assert.Equal(t, github.Location, first.Platforms[platformIndex("GitHub")].Location)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = scanner.SearchUsername(cancelled, "torvalds")
	assert.ErrorIs(t, err, context.Canceled)
}
