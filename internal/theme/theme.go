// internal/theme/theme.go
package theme

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Default is the theme used when nothing valid has been persisted.
const Default = "dark"

// Palette is the set of colours a theme defines. Values are hex strings so
// they can feed both lipgloss and the HTML graph page.
type Palette struct {
	Name     string
	Accent   string
	Text     string
	Muted    string
	Surface  string
	Border   string
	RiskHigh string
	RiskMed  string
	RiskLow  string
}

var palettes = map[string]Palette{
	"dark": {
		Name:     "dark",
		Accent:   "#7C4DFF",
		Text:     "#E8EAF6",
		Muted:    "#8A8FA8",
		Surface:  "#14161F",
		Border:   "#2A2D3E",
		RiskHigh: "#FF1744",
		RiskMed:  "#FFA726",
		RiskLow:  "#00E676",
	},
	"light": {
		Name:     "light",
		Accent:   "#5E35B1",
		Text:     "#1A1C29",
		Muted:    "#6B6F85",
		Surface:  "#FFFFFF",
		Border:   "#DADCE8",
		RiskHigh: "#D50000",
		RiskMed:  "#EF6C00",
		RiskLow:  "#2E7D32",
	},
	"midnight": {
		Name:     "midnight",
		Accent:   "#00BCD4",
		Text:     "#CFD8DC",
		Muted:    "#78909C",
		Surface:  "#0B1020",
		Border:   "#1C2540",
		RiskHigh: "#FF5252",
		RiskMed:  "#FFD740",
		RiskLow:  "#69F0AE",
	},
}

// Names lists the known themes in a stable order.
func Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Valid reports whether name is a known theme.
func Valid(name string) bool {
	_, ok := palettes[normalize(name)]
	return ok
}

// Lookup returns the palette for name, falling back to the default theme.
func Lookup(name string) Palette {
	if p, ok := palettes[normalize(name)]; ok {
		return p
	}
	return palettes[Default]
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RiskColor maps a risk level to its palette colour. Unknown levels use the muted colour.
func (p Palette) RiskColor(level string) string {
	switch strings.ToUpper(level) {
	case "HIGH":
		return p.RiskHigh
	case "MEDIUM":
		return p.RiskMed
	case "LOW":
		return p.RiskLow
	default:
		return p.Muted
	}
}

// StatusColor maps an investigation status to its palette colour.
func (p Palette) StatusColor(status string) string {
	switch strings.ToLower(status) {
	case "completed":
		return p.RiskLow
	case "running":
		return p.RiskMed
	case "failed":
		return p.RiskHigh
	default:
		return p.Muted
	}
}

// Styles are the lipgloss styles derived from a palette.
type Styles struct {
	Palette  Palette
	renderer *lipgloss.Renderer

	Title   lipgloss.Style
	Section lipgloss.Style
	Text    lipgloss.Style
	Dim     lipgloss.Style
	Accent  lipgloss.Style
	Card    lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Banner  lipgloss.Style
}

// NewStyles builds the style set for a palette using the default renderer,
// which detects colour support on stdout.
func NewStyles(p Palette) Styles {
	return NewStylesFor(lipgloss.DefaultRenderer(), p)
}

// NewStylesFor builds the style set bound to r. Use it when output goes
// somewhere other than stdout so colour detection follows the real writer.
func NewStylesFor(r *lipgloss.Renderer, p Palette) Styles {
	return Styles{
		Palette:  p,
		renderer: r,
		Title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Accent)),
		Section:  r.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Text)).MarginTop(1),
		Text:     r.NewStyle().Foreground(lipgloss.Color(p.Text)),
		Dim:      r.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		Accent:   r.NewStyle().Foreground(lipgloss.Color(p.Accent)),
		Card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.Border)).
			Padding(0, 1),
		Error:   r.NewStyle().Foreground(lipgloss.Color(p.RiskHigh)),
		Success: r.NewStyle().Foreground(lipgloss.Color(p.RiskLow)),
		Warning: r.NewStyle().Foreground(lipgloss.Color(p.RiskMed)),
		Banner: r.NewStyle().Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(p.RiskHigh)).
			Padding(0, 1),
	}
}

// Risk returns a bold style coloured for the risk level.
func (s Styles) Risk(level string) lipgloss.Style {
	return s.newStyle().Bold(true).Foreground(lipgloss.Color(s.Palette.RiskColor(level)))
}

// Status returns a style coloured for the investigation status.
func (s Styles) Status(status string) lipgloss.Style {
	return s.newStyle().Foreground(lipgloss.Color(s.Palette.StatusColor(status)))
}

func (s Styles) newStyle() lipgloss.Style {
	if s.renderer == nil {
		return lipgloss.NewStyle()
	}
	return s.renderer.NewStyle()
}
