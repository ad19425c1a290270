// internal/mockbackend/network.go
package mockbackend

import (
	"fmt"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/report"
)

// Wire shapes of the graph payload. They carry the drawing hints the backend
// sends along with the data the client decodes.
type (
	nodeFont struct {
		Size  int    `json:"size"`
		Face  string `json:"face"`
		Color string `json:"color"`
	}

	GraphNode struct {
		ID    string   `json:"id"`
		Label string   `json:"label"`
		Title string   `json:"title"`
		Color string   `json:"color"`
		Size  float64  `json:"size"`
		Font  nodeFont `json:"font"`
		Type  string   `json:"type"`
	}

	edgeSmooth struct {
		Type string `json:"type"`
	}

	GraphEdge struct {
		From   string     `json:"from"`
		To     string     `json:"to"`
		Label  string     `json:"label"`
		Width  int        `json:"width"`
		Smooth edgeSmooth `json:"smooth"`
	}

	GraphPayload struct {
		Nodes   []GraphNode        `json:"nodes"`
		Edges   []GraphEdge        `json:"edges"`
		Summary api.NetworkSummary `json:"summary"`
	}
)

type nodeStyle struct {
	color string
	size  float64
}

var nodeStyles = map[string]nodeStyle{
	"target":       {"#FF1744", 45},
	"platform":     {"#00BCD4", 35},
	"location":     {"#FFA726", 25},
	"organization": {"#26C6DA", 25},
	"connection":   {"#66BB6A", 25},
}

const maxSubredditNodes = 5

// graphBuilder accumulates nodes and an undirected adjacency set for stats.
type graphBuilder struct {
	nodes []GraphNode
	edges []GraphEdge
	adj   map[string]map[string]struct{}
}

func newGraphBuilder() *graphBuilder {
	return &graphBuilder{adj: map[string]map[string]struct{}{}}
}

func (g *graphBuilder) addNode(label, typ, title string) string {
	id := fmt.Sprintf("node_%d", len(g.nodes))
	style, ok := nodeStyles[typ]
	if !ok {
		style = nodeStyle{"#757575", 30}
	}
	g.nodes = append(g.nodes, GraphNode{
		ID:    id,
		Label: label,
		Title: title,
		Color: style.color,
		Size:  style.size,
		Font:  nodeFont{Size: 14, Face: "Sora", Color: "#fff"},
		Type:  typ,
	})
	g.adj[id] = map[string]struct{}{}
	return id
}

func (g *graphBuilder) addEdge(from, to, label string) {
	g.edges = append(g.edges, GraphEdge{From: from, To: to, Label: label, Width: 1, Smooth: edgeSmooth{Type: "continuous"}})
	if from != to {
		g.adj[from][to] = struct{}{}
		g.adj[to][from] = struct{}{}
	}
}

// BuildNetwork derives the relationship graph of an investigation from its
// stored findings.
func BuildNetwork(inv api.Investigation, findings []api.Finding) (GraphPayload, api.GraphStats) {
	g := newGraphBuilder()
	target := g.addNode("@"+inv.Username, "target", fmt.Sprintf("Investigation #%d", inv.ID))

	platformsFound := 0
	for _, f := range findings {
		if f.Platform == report.AnalysisPlatform || !f.Found {
			continue
		}
		platformsFound++
		node := g.addNode(f.Platform, "platform", f.ProfileURL)
		g.addEdge(target, node, "found_on")

		var data report.PlatformResult
		if err := json.UnmarshalFromString(f.Data, &data); err != nil {
			continue
		}
		switch f.Platform {
		case "GitHub":
			if data.Location != "" {
				g.addEdge(node, g.addNode(data.Location, "location", "GitHub Location"), "located_at")
			}
			if data.Company != "" {
				g.addEdge(node, g.addNode(data.Company, "organization", "GitHub Company"), "works_at")
			}
		case "Reddit":
			for i, post := range data.RecentPosts {
				if i == maxSubredditNodes {
					break
				}
				sub := post.Subreddit
				if sub == "" {
					sub = "unknown"
				}
				g.addEdge(node, g.addNode("r/"+sub, "connection", "Reddit Community"), "active_in")
			}
		}
	}

	network := GraphPayload{
		Nodes: g.nodes,
		Edges: g.edges,
		Summary: api.NetworkSummary{
			Target:           inv.Username,
			PlatformsFound:   platformsFound,
			TotalNodes:       len(g.nodes),
			TotalConnections: len(g.edges),
		},
	}
	return network, g.stats()
}

// stats computes size, density and average clustering of the undirected graph.
func (g *graphBuilder) stats() api.GraphStats {
	n := len(g.adj)
	m := 0
	for _, neighbours := range g.adj {
		m += len(neighbours)
	}
	m /= 2

	s := api.GraphStats{NodeCount: n, EdgeCount: m}
	if n <= 1 {
		return s
	}
	s.Density = 2 * float64(m) / float64(n*(n-1))

	total := 0.0
	for _, neighbours := range g.adj {
		k := len(neighbours)
		if k < 2 {
			continue
		}
		links := 0
		for a := range neighbours {
			for b := range neighbours {
				if a < b {
					if _, ok := g.adj[a][b]; ok {
						links++
					}
				}
			}
		}
		total += 2 * float64(links) / float64(k*(k-1))
	}
	s.AvgClustering = total / float64(n)
	return s
}
