// internal/graph/export.go
package graph

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// Export formats understood by Write.
const (
	FormatHTML = "html"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Formats lists the supported export formats.
var Formats = []string{FormatHTML, FormatDOT, FormatJSON}

// Write exports vis in the requested format.
func Write(w io.Writer, format, title string, vis *Visualization) error {
	if vis == nil {
		return fmt.Errorf("no visualization to export")
	}
	switch strings.ToLower(format) {
	case FormatHTML:
		return WriteHTML(w, title, vis)
	case FormatDOT:
		return WriteDOT(w, title, vis.Dataset)
	case FormatJSON:
		return WriteJSON(w, vis.Dataset)
	default:
		return fmt.Errorf("unsupported graph format: %s", format)
	}
}

// WriteJSON writes the dataset as indented JSON.
func WriteJSON(w io.Writer, ds Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ds)
}

// WriteDOT writes the dataset as a Graphviz digraph.
func WriteDOT(w io.Writer, name string, ds Dataset) error {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", dotQuote(name))
	b.WriteString("  graph [overlap=false, splines=true];\n")
	b.WriteString("  node [shape=circle, style=filled, fontcolor=\"#FFFFFF\"];\n")
	for _, n := range ds.Nodes {
		fmt.Fprintf(&b, "  %s [label=%s, fillcolor=%s, width=%.2f, tooltip=%s];\n",
			dotQuote(n.ID), dotQuote(n.Label), dotQuote(n.Color), n.Size/30, dotQuote(n.Title))
	}
	for _, e := range ds.Edges {
		fmt.Fprintf(&b, "  %s -> %s [label=%s, color=%s];\n",
			dotQuote(e.From), dotQuote(e.To), dotQuote(e.Label), dotQuote(e.Color))
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

// Summary is a short plain-text description of a graph for terminals.
func Summary(network *api.Network, stats *api.GraphStats) string {
	if network == nil {
		return NoDataMessage
	}
	counts := map[string]int{}
	for _, n := range network.Nodes {
		counts[Category(n)]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d nodes, %d connections", len(network.Nodes), len(network.Edges))
	if s := network.Summary; s != nil {
		fmt.Fprintf(&b, " (target @%s, %d platforms found)", s.Target, s.PlatformsFound)
	}
	b.WriteString("\n")
	for _, entry := range Legend {
		if c := counts[entry.Category]; c > 0 {
			fmt.Fprintf(&b, "  %-13s %d\n", entry.Label, c)
		}
	}
	if c := counts[CategoryUnknown]; c > 0 {
		fmt.Fprintf(&b, "  %-13s %d\n", "Other", c)
	}
	if stats != nil && stats.NodeCount > 0 {
		fmt.Fprintf(&b, "  density %.3f, avg clustering %.3f\n", stats.Density, stats.AvgClustering)
	}
	return strings.TrimRight(b.String(), "\n")
}

var pageTemplate = template.Must(template.New("graph").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"></script>
<style>
  body { margin: 0; background: {{.Palette.Surface}}; color: {{.Palette.Text}}; font-family: sans-serif; }
  header { display: flex; gap: 8px; align-items: center; padding: 12px 16px; border-bottom: 1px solid {{.Palette.Border}}; }
  header h1 { font-size: 16px; margin: 0 auto 0 0; }
  button { background: {{.Palette.Accent}}; color: #fff; border: 0; border-radius: 6px; padding: 6px 12px; cursor: pointer; }
  #network { height: calc(100vh - 110px); }
  .legend { display: flex; gap: 16px; padding: 8px 16px; font-size: 12px; color: {{.Palette.Muted}}; }
  .legend span::before { content: ""; display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 6px; background: var(--c); }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <button id="zoom-in">Zoom in</button>
  <button id="zoom-out">Zoom out</button>
  <button id="fit">Fit</button>
</header>
<div id="network" data-visualization="{{.ID}}"></div>
<div class="legend">{{range .Legend}}<span style="--c: {{.Color}}">{{.Label}}</span>{{end}}</div>
<script>
  const data = {{.Dataset}};
  const network = new vis.Network(document.getElementById("network"), {
    nodes: new vis.DataSet(data.nodes),
    edges: new vis.DataSet(data.edges)
  }, {
    physics: { stabilization: { iterations: 150 }, barnesHut: { gravitationalConstant: -8000, springLength: 140 } },
    interaction: { hover: true, tooltipDelay: 120 },
    nodes: { shape: "dot", borderWidth: 2 },
    edges: { smooth: { type: "continuous" }, width: 1.5 }
  });
  const zoom = (factor) => network.moveTo({ scale: network.getScale() * factor });
  document.getElementById("zoom-in").onclick = () => zoom({{.ZoomIn}});
  document.getElementById("zoom-out").onclick = () => zoom({{.ZoomOut}});
  document.getElementById("fit").onclick = () => network.fit();
</script>
</body>
</html>
`))

type pageData struct {
	Title   string
	ID      string
	Palette theme.Palette
	Legend  []LegendEntry
	Dataset Dataset
	ZoomIn  float64
	ZoomOut float64
}

// WriteHTML writes a self-contained page that draws vis with vis-network.
func WriteHTML(w io.Writer, title string, vis *Visualization) error {
	if vis == nil {
		return fmt.Errorf("no visualization to export")
	}
	return pageTemplate.Execute(w, pageData{
		Title:   title,
		ID:      vis.ID,
		Palette: vis.Palette,
		Legend:  Legend,
		Dataset: vis.Dataset,
		ZoomIn:  zoomInFactor,
		ZoomOut: zoomOutFactor,
	})
}
