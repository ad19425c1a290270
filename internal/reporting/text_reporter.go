// internal/reporting/text_reporter.go
package reporting

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/graph"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/render"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// TextReporter streams the terminal rendering of each case. Colour is only
// emitted when the writer is a terminal.
type TextReporter struct {
	writer  io.WriteCloser
	styles  theme.Styles
	graphs  *graph.Renderer
	logger  *zap.Logger
	mu      sync.Mutex
	written int
}

// NewTextReporter takes ownership of writer.
func NewTextReporter(writer io.WriteCloser, palette theme.Palette) *TextReporter {
	logger := observability.GetLogger()
	// Detect colour support on the real stream, not the no-op wrapper.
	var target io.Writer = writer
	if nop, ok := writer.(*nopWriteCloser); ok {
		target = nop.Writer
	}
	return &TextReporter{
		writer: writer,
		styles: theme.NewStylesFor(lipgloss.NewRenderer(target), palette),
		graphs: graph.NewRenderer(logger),
		logger: logger.Named("text_reporter"),
	}
}

func (r *TextReporter) Write(page *casefile.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	if r.written > 0 {
		b.WriteString("\n" + strings.Repeat("─", 60) + "\n\n")
	}
	network := graph.View{Placeholder: graph.NoDataMessage}
	if page != nil {
		network = r.graphs.Render(page.View.Network, r.styles.Palette)
	}
	b.WriteString(render.Case(r.styles, page, network))

	if _, err := io.WriteString(r.writer, b.String()); err != nil {
		return fmt.Errorf("failed to write text report: %w", err)
	}
	r.written++
	return nil
}

func (r *TextReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.graphs.Close()
	if err := r.writer.Close(); err != nil {
		r.logger.Error("Failed to close output writer", zap.Error(err))
		return fmt.Errorf("failed to close output writer: %w", err)
	}
	return nil
}
