// internal/reporting/json_reporter.go
package reporting

import (
	"fmt"
	"io"
	"sync"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/report"
)

// ToolName identifies the generator in exported documents.
const ToolName = "soko-cli"

// Document is the top-level JSON export.
type Document struct {
	Tool           string       `json:"tool"`
	GeneratedAt    time.Time    `json:"generated_at"`
	Investigations []CaseRecord `json:"investigations"`
}

// CaseRecord is one investigation with its parsed report body.
type CaseRecord struct {
	Investigation api.Investigation `json:"investigation"`
	Findings      []api.Finding     `json:"findings"`
	Network       *api.Network      `json:"network,omitempty"`
	Stats         *api.GraphStats   `json:"stats,omitempty"`
	Report        report.Body       `json:"report"`
}

// JSONReporter buffers cases and writes a single document on Close.
// It is thread safe.
type JSONReporter struct {
	writer io.WriteCloser
	logger *zap.Logger
	mu     sync.Mutex
	doc    Document
	// now is swapped in tests.
	now func() time.Time
}

// NewJSONReporter takes ownership of writer.
func NewJSONReporter(writer io.WriteCloser) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		logger: observability.GetLogger().Named("json_reporter"),
		doc:    Document{Tool: ToolName, Investigations: []CaseRecord{}},
		now:    time.Now,
	}
}

func (r *JSONReporter) Write(page *casefile.Page) error {
	if page == nil || page.Detail == nil {
		return fmt.Errorf("cannot report a case that has not loaded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	findings := page.Detail.Findings
	if findings == nil {
		findings = []api.Finding{}
	}
	r.doc.Investigations = append(r.doc.Investigations, CaseRecord{
		Investigation: page.Detail.Investigation,
		Findings:      findings,
		Network:       page.Detail.Network,
		Stats:         page.Detail.Stats,
		Report:        page.Body,
	})
	return nil
}

func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.doc.GeneratedAt = r.now().UTC()
	encoder := json.ConfigCompatibleWithStandardLibrary.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")

	encodeErr := encoder.Encode(r.doc)
	// Always attempt to close the writer, regardless of encoding success.
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode JSON report", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode JSON output: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}

	r.logger.Debug("Wrote JSON report", zap.Int("investigations", len(r.doc.Investigations)))
	return nil
}
