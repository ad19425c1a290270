// internal/report/parse.go
package report

import (
	"errors"
	"strings"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/api"
)

// AnalysisPlatform marks the finding that carries the full report body.
const AnalysisPlatform = "ANALYSIS"

// ErrEmptyBody is returned by Parse for blank input.
var ErrEmptyBody = errors.New("report body is empty")

// FindAnalysis returns the first finding whose platform is the analysis sentinel.
func FindAnalysis(findings []api.Finding) (api.Finding, bool) {
	for _, f := range findings {
		if f.Platform == AnalysisPlatform {
			return f, true
		}
	}
	return api.Finding{}, false
}

// Parse strictly decodes a report body.
func Parse(data string) (Body, error) {
	var body Body
	if strings.TrimSpace(data) == "" {
		return body, ErrEmptyBody
	}
	if err := json.UnmarshalFromString(data, &body); err != nil {
		return Body{}, err
	}
	return body, nil
}

// FromFindings is the tolerant path used by views. A missing analysis finding
// or a body that does not parse yields an empty Body; the problem is only logged.
func FromFindings(findings []api.Finding, logger *zap.Logger) Body {
	if logger == nil {
		logger = zap.NewNop()
	}
	finding, ok := FindAnalysis(findings)
	if !ok {
		logger.Debug("No analysis finding present, rendering empty report")
		return Body{}
	}
	body, err := Parse(finding.Data)
	if err != nil {
		logger.Debug("Analysis finding did not parse, rendering empty report",
			zap.Int64("finding_id", finding.ID),
			zap.Error(err),
		)
		return Body{}
	}
	return body
}

// Marshal encodes a body the way the backend stores it.
func Marshal(body Body) (string, error) {
	return json.MarshalToString(body)
}
