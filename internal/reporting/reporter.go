// internal/reporting/reporter.go
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// Supported report formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatHTML = "html"
)

// Formats lists the accepted values of the --format flag.
var Formats = []string{FormatJSON, FormatText, FormatHTML}

// Reporter defines the interface for writing investigation reports to an output.
type Reporter interface {
	// Write adds one loaded case page to the report.
	Write(page *casefile.Page) error
	// Close finalizes the report and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// New creates a new reporter based on the specified format and output path.
// themeName selects the palette for formats that carry colour.
func New(format, outputPath, themeName string) (Reporter, error) {
	return NewTo(os.Stdout, format, outputPath, themeName)
}

// NewTo is New with an explicit stream for the "stdout" destination.
func NewTo(stdout io.Writer, format, outputPath, themeName string) (Reporter, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"

	if isStdOut {
		// Wrap the stream so Close() is a no-op.
		writer = &nopWriteCloser{stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	palette := theme.Lookup(themeName)
	switch format {
	case FormatJSON:
		return NewJSONReporter(writer), nil
	case FormatText:
		return NewTextReporter(writer, palette), nil
	case FormatHTML:
		return NewHTMLReporter(writer, palette), nil
	default:
		if !isStdOut {
			writer.Close()
		}
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
