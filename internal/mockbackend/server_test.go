// internal/mockbackend/server_test.go
package mockbackend_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/mockbackend"
	"github.com/xkilldash9x/soko-cli/internal/report"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// scriptedScanner returns canned data, or fails when err is set.
type scriptedScanner struct {
	err error
}

func (s scriptedScanner) SearchUsername(_ context.Context, username string) (report.PlatformResults, error) {
	if s.err != nil {
		return report.PlatformResults{}, s.err
	}
	return report.PlatformResults{
		Username:     username,
		TotalChecked: report.NumberPtr(3),
		FoundCount:   report.NumberPtr(2),
		Platforms: []report.PlatformResult{
			{Platform: "GitHub", URL: "https://github.com/" + username, Found: true, Location: "Berlin", Company: "Initech"},
			{Platform: "Reddit", URL: "https://www.reddit.com/user/" + username, Found: true,
				RecentPosts: []report.Post{{Content: "protest tonight", Subreddit: "berlin"}}},
			{Platform: "Telegram", URL: "https://t.me/" + username, Found: false},
		},
	}, nil
}

func (s scriptedScanner) Reddit(_ context.Context, username string) (report.Reddit, error) {
	return report.Reddit{Found: true, Username: username, AccountAge: "2025-01-02", Karma: 12,
		RecentPosts: []report.Post{{Content: "protest tonight", Subreddit: "berlin"}}}, nil
}

func (s scriptedScanner) GitHub(_ context.Context, username string) (report.GitHub, error) {
	return report.GitHub{Found: true, Username: username, Location: "Berlin", Company: "Initech"}, nil
}

func newBackend(t *testing.T, scanner mockbackend.Scanner) (*mockbackend.Server, *api.Client, string) {
	t.Helper()
	store, err := mockbackend.OpenStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	server := mockbackend.NewServer(store,
		mockbackend.WithScanner(scanner),
		mockbackend.WithClock(func() time.Time { return fixedNow }),
	)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return server, api.NewClient(srv.URL, api.WithHTTPClient(srv.Client())), srv.URL
}

func TestServerInvestigationFlow(t *testing.T) {
	ctx := context.Background()
	server, client, _ := newBackend(t, scriptedScanner{})

	require.NoError(t, client.Health(ctx))

	inv, err := client.CreateInvestigation(ctx, "  torvalds  ")
	require.NoError(t, err)
	assert.Equal(t, "torvalds", inv.Username)
	assert.Equal(t, api.StatusPending, inv.Status)

	require.NoError(t, client.RunInvestigation(ctx, inv.ID))

	list, err := client.ListInvestigations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, api.StatusCompleted, list[0].Status)

	detail, err := client.GetInvestigation(ctx, inv.ID)
	require.NoError(t, err)
	// Three platform findings plus the analysis.
	require.Len(t, detail.Findings, 4)
	_, ok := report.FindAnalysis(detail.Findings)
	assert.True(t, ok)

	body := report.FromFindings(detail.Findings, nil)
	assert.Equal(t, "MEDIUM", body.Analysis.RiskLevel)
	// 25 new account + 5 keyword hit.
	assert.Equal(t, "30", body.Analysis.RiskScore.String())
	require.NotNil(t, body.GitHub)
	assert.Equal(t, "Initech", body.GitHub.Company)

	require.NotNil(t, detail.Network)
	require.NotNil(t, detail.Network.Summary)
	assert.Equal(t, 2, detail.Network.Summary.PlatformsFound)
	// target, GitHub, Berlin, Initech, Reddit, r/berlin.
	assert.Len(t, detail.Network.Nodes, 6)
	assert.Equal(t, api.NodeID("node_0"), detail.Network.Nodes[0].ID)
	require.NotNil(t, detail.Stats)
	assert.Equal(t, 6, detail.Stats.NodeCount)

	assert.Equal(t, float64(1), testutil.ToFloat64(server.Metrics().RunsCounter(mockbackend.OutcomeSuccess)))

	require.NoError(t, client.DeleteInvestigation(ctx, inv.ID))
	_, err = client.GetInvestigation(ctx, inv.ID)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, "Not found", err.Error())
}

func TestServerErrors(t *testing.T) {
	ctx := context.Background()
	_, client, baseURL := newBackend(t, scriptedScanner{})

	_, err := client.CreateInvestigation(ctx, "   ")
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))
	assert.Equal(t, "Username is required", err.Error())

	err = client.RunInvestigation(ctx, 404)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, "Investigation not found", err.Error())

	err = client.DeleteInvestigation(ctx, 404)
	assert.Equal(t, "Investigation not found", err.Error())

	resp, err := http.Get(baseURL + "/api/investigations/abc")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Not found"}`, string(body))

	resp, err = http.Post(baseURL+"/api/investigations", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerRunFailureMarksInvestigationFailed(t *testing.T) {
	ctx := context.Background()
	server, client, _ := newBackend(t, scriptedScanner{err: errors.New("upstream timeout")})

	inv, err := client.CreateInvestigation(ctx, "ghost")
	require.NoError(t, err)

	err = client.RunInvestigation(ctx, inv.ID)
	assert.Equal(t, http.StatusInternalServerError, api.StatusCode(err))
	assert.Contains(t, err.Error(), "upstream timeout")

	detail, err := client.GetInvestigation(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, api.StatusFailed, detail.Investigation.Status)
	assert.Empty(t, detail.Findings)
	assert.Equal(t, float64(1), testutil.ToFloat64(server.Metrics().RunsCounter(mockbackend.OutcomeError)))
}

func TestServerMetricsEndpoint(t *testing.T) {
	_, client, baseURL := newBackend(t, nil)
	require.NoError(t, client.Health(context.Background()))

	resp, err := http.Get(baseURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `soko_mock_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}

func TestServerCORSPreflight(t *testing.T) {
	_, _, baseURL := newBackend(t, nil)
	req, err := http.NewRequest(http.MethodOptions, baseURL+"/api/investigations", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestListenAndServeShutsDownOnCancel(t *testing.T) {
	store, err := mockbackend.OpenStore(context.Background(), ":memory:")
	require.NoError(t, err)
	defer store.Close()
	server := mockbackend.NewServer(store)

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- server.ListenAndServe(ctx, "127.0.0.1:0", func(a net.Addr) { addrCh <- a })
	}()

	addr := <-addrCh
	resp, err := http.Get("http://" + addr.String() + "/api/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"status":"online","platform":"`+mockbackend.PlatformName+`"}`, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
