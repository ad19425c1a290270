// internal/reporting/reporter_test.go
package reporting_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/graph"
	"github.com/xkilldash9x/soko-cli/internal/report"
	"github.com/xkilldash9x/soko-cli/internal/reporting"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// bufferCloser records whether Close was called.
type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func samplePage(t *testing.T) *casefile.Page {
	t.Helper()
	data := `{"analysis":{"username":"ghost","risk_level":"MEDIUM","risk_score":30,
		"recommendations":["Cross-reference with known threat actor databases"],
		"platform_presence":{"found_on":["GitHub"],"count":1,"platforms_checked":10}},
		"platform_results":{"total_checked":10,"found_count":1,"platforms":[{"platform":"GitHub","url":"https://github.com/ghost","found":true}]},
		"github":{"found":true,"username":"ghost","company":"<Acme & Co>","public_repos":2}}`
	detail := &api.Detail{
		Investigation: api.Investigation{ID: 7, Username: "ghost", Status: api.StatusCompleted},
		Findings: []api.Finding{
			{ID: 1, InvestigationID: 7, Platform: "GitHub", Found: true, Data: `{"platform":"GitHub","found":true}`},
			{ID: 2, InvestigationID: 7, Platform: report.AnalysisPlatform, Found: true, Data: data},
		},
		Network: &api.Network{
			Nodes: []api.Node{{ID: "node_0", Label: "@ghost", Type: "target"}},
		},
		Stats: &api.GraphStats{NodeCount: 1},
	}
	body := report.FromFindings(detail.Findings, nil)
	return &casefile.Page{ID: 7, State: casefile.StateReady, Detail: detail, Body: body, View: report.Project(*detail, body)}
}

// TestNew_Success_Stdout tests creating reporters writing to stdout.
func TestNew_Success_Stdout(t *testing.T) {
	for _, format := range []string{reporting.FormatText} {
		r, err := reporting.New(format, "stdout", theme.Default)
		require.NoError(t, err)
		assert.NotNil(t, r)
		assert.NoError(t, r.Close())

		r, err = reporting.New(format, "", theme.Default)
		require.NoError(t, err)
		assert.NoError(t, r.Close())
	}
}

func TestNewToWritesToStream(t *testing.T) {
	var buf bytes.Buffer
	r, err := reporting.NewTo(&buf, reporting.FormatJSON, "", theme.Default)
	require.NoError(t, err)
	require.NoError(t, r.Write(samplePage(t)))
	require.NoError(t, r.Close())
	assert.Contains(t, buf.String(), `"tool": "soko-cli"`)
}

// TestNew_Success_File writes every format to disk.
func TestNew_Success_File(t *testing.T) {
	for _, format := range reporting.Formats {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "report."+format)
			r, err := reporting.New(format, path, "light")
			require.NoError(t, err)

			require.NoError(t, r.Write(samplePage(t)))
			require.NoError(t, r.Close())

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Contains(t, string(content), "ghost")
		})
	}
}

// TestNew_Failure_UnsupportedFormat ensures the file handle is released.
func TestNew_Failure_UnsupportedFormat(t *testing.T) {
	r, err := reporting.New("sarif", "stdout", theme.Default)
	assert.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), "unsupported output format: sarif")

	tmpFile := filepath.Join(t.TempDir(), "output.txt")
	r, err = reporting.New("sarif", tmpFile, theme.Default)
	assert.Error(t, err)
	assert.Nil(t, r)

	info, err := os.Stat(tmpFile)
	require.NoError(t, err, "File should still exist after failure")
	assert.Equal(t, int64(0), info.Size())
}

// TestNew_Failure_FileCreation tests errors during output file creation.
func TestNew_Failure_FileCreation(t *testing.T) {
	r, err := reporting.New(reporting.FormatJSON, t.TempDir(), theme.Default)
	assert.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestJSONReporter(t *testing.T) {
	out := &bufferCloser{}
	r := reporting.NewJSONReporter(out)

	require.NoError(t, r.Write(samplePage(t)))
	assert.Error(t, r.Write(&casefile.Page{State: casefile.StateError, Err: "Not found"}))
	require.NoError(t, r.Close())
	assert.True(t, out.closed)

	var doc reporting.Document
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, reporting.ToolName, doc.Tool)
	assert.False(t, doc.GeneratedAt.IsZero())
	require.Len(t, doc.Investigations, 1)

	rec := doc.Investigations[0]
	assert.Equal(t, int64(7), rec.Investigation.ID)
	assert.Len(t, rec.Findings, 2)
	assert.Equal(t, "MEDIUM", rec.Report.Analysis.RiskLevel)
	require.NotNil(t, rec.Report.GitHub)
	assert.Equal(t, "<Acme & Co>", rec.Report.GitHub.Company)
	require.NotNil(t, rec.Network)
	assert.Len(t, rec.Network.Nodes, 1)
}

func TestJSONReporterEmpty(t *testing.T) {
	out := &bufferCloser{}
	r := reporting.NewJSONReporter(out)
	require.NoError(t, r.Close())
	assert.Contains(t, out.String(), `"investigations": []`)
}

func TestTextReporter(t *testing.T) {
	out := &bufferCloser{}
	r := reporting.NewTextReporter(out, theme.Lookup(theme.Default))

	require.NoError(t, r.Write(samplePage(t)))
	require.NoError(t, r.Write(&casefile.Page{ID: 9, State: casefile.StateError, Err: "Investigation not found"}))
	require.NoError(t, r.Close())
	assert.True(t, out.closed)

	text := out.String()
	assert.Contains(t, text, "INVESTIGATION REPORT #7")
	assert.Contains(t, text, "MEDIUM")
	assert.Contains(t, text, "1 nodes, 0 connections")
	assert.Contains(t, text, "Error: Investigation not found")
	assert.Contains(t, text, strings.Repeat("─", 60))
	// A buffer is not a terminal: no colour codes.
	assert.NotContains(t, text, "\x1b[")
}

func TestHTMLReporter(t *testing.T) {
	out := &bufferCloser{}
	r := reporting.NewHTMLReporter(out, theme.Lookup("midnight"))

	require.NoError(t, r.Write(samplePage(t)))
	assert.Error(t, r.Write(&casefile.Page{State: casefile.StateLoading}))
	require.NoError(t, r.Close())
	assert.True(t, out.closed)

	html := out.String()
	assert.Contains(t, html, `id="case-7"`)
	assert.Contains(t, html, "@ghost")
	assert.Contains(t, html, `href="https://github.com/ghost"`)
	assert.Contains(t, html, "Cross-reference with known threat actor databases")
	assert.Contains(t, html, "1 investigation(s)")
	// Report values are escaped.
	assert.Contains(t, html, "&lt;Acme &amp; Co&gt;")
	assert.NotContains(t, html, "<Acme & Co>")
	assert.NotContains(t, html, graph.NoDataMessage)
}
