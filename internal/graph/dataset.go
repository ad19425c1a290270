// internal/graph/dataset.go
package graph

import (
	"strings"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// Node categories of the fixed legend.
const (
	CategoryTarget       = "target"
	CategoryPlatform     = "platform"
	CategoryLocation     = "location"
	CategoryOrganization = "organization"
	CategoryConnection   = "connection"
	CategoryUnknown      = "unknown"
)

const (
	unknownColor = "#757575"
	defaultSize  = 30
)

// LegendEntry describes how one category is drawn.
type LegendEntry struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
	Size     float64 `json:"size"`
}

// Legend is the fixed colour and size scheme, in display order.
var Legend = []LegendEntry{
	{Category: CategoryTarget, Label: "Target User", Color: "#FF1744", Size: 45},
	{Category: CategoryPlatform, Label: "Platform", Color: "#00BCD4", Size: 35},
	{Category: CategoryLocation, Label: "Location", Color: "#FFA726", Size: 25},
	{Category: CategoryOrganization, Label: "Organization", Color: "#26C6DA", Size: 25},
	{Category: CategoryConnection, Label: "Connection", Color: "#66BB6A", Size: 25},
}

// Category resolves a node's category from its type, else its group.
func Category(n api.Node) string {
	key := strings.ToLower(strings.TrimSpace(n.Type))
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(n.Group))
	}
	for _, entry := range Legend {
		if entry.Category == key {
			return key
		}
	}
	return CategoryUnknown
}

// StyleFor returns the colour and size for a node.
func StyleFor(n api.Node) (color string, size float64) {
	category := Category(n)
	for _, entry := range Legend {
		if entry.Category == category {
			return entry.Color, entry.Size
		}
	}
	if n.Size != nil && *n.Size > 0 {
		return unknownColor, *n.Size
	}
	return unknownColor, defaultSize
}

// Font is the label font of a node or edge.
type Font struct {
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// VisNode is a node in the visualization engine's shape.
type VisNode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Title string  `json:"title,omitempty"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
	Group string  `json:"group"`
	Font  Font    `json:"font"`
}

// VisEdge is an edge in the visualization engine's shape.
type VisEdge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Label  string `json:"label,omitempty"`
	Arrows string `json:"arrows"`
	Color  string `json:"color"`
	Font   Font   `json:"font"`
}

// Dataset is the translated graph.
type Dataset struct {
	Nodes []VisNode `json:"nodes"`
	Edges []VisEdge `json:"edges"`
}

// Translate maps a network payload to the engine shape. Node styling comes from
// the legend; edge colour and label fonts follow the active palette.
func Translate(network api.Network, palette theme.Palette) Dataset {
	ds := Dataset{
		Nodes: make([]VisNode, 0, len(network.Nodes)),
		Edges: make([]VisEdge, 0, len(network.Edges)),
	}
	for _, n := range network.Nodes {
		color, size := StyleFor(n)
		ds.Nodes = append(ds.Nodes, VisNode{
			ID:    string(n.ID),
			Label: n.Label,
			Title: n.Title,
			Color: color,
			Size:  size,
			Group: Category(n),
			Font:  Font{Color: palette.Text, Size: 14},
		})
	}
	for _, e := range network.Edges {
		ds.Edges = append(ds.Edges, VisEdge{
			From:   string(e.From),
			To:     string(e.To),
			Label:  e.Label,
			Arrows: "to",
			Color:  palette.Accent,
			Font:   Font{Color: palette.Text, Size: 11},
		})
	}
	return ds
}
