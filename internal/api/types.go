// internal/api/types.go
package api

import (
	"strconv"
	"strings"
	"time"

	json "github.com/json-iterator/go"
)

// BackendTimeLayout is the timestamp layout the backend serializes with.
const BackendTimeLayout = "2006-01-02 15:04:05"

// Status is the lifecycle state of an investigation. The client only ever
// observes it; transitions happen on the backend.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the backend will not move the status any further.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Timestamp decodes the backend's naive timestamps as well as RFC 3339.
// Values that match neither layout keep their raw text so nothing is lost.
type Timestamp struct {
	Time time.Time
	Raw  string
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = ParseTimestamp(raw)
	return nil
}

// MarshalJSON writes the timestamp back in the backend layout.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() && t.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// String renders the timestamp in the backend layout, or the raw text when it
// could not be parsed.
func (t Timestamp) String() string {
	if !t.Time.IsZero() {
		return t.Time.Format(BackendTimeLayout)
	}
	return t.Raw
}

// ParseTimestamp is the lenient parser used for created_at and scraped_at.
func ParseTimestamp(raw string) Timestamp {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{BackendTimeLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return Timestamp{Time: ts, Raw: raw}
		}
	}
	return Timestamp{Raw: raw}
}

// Investigation is one username's cross-platform scan.
type Investigation struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Status    Status    `json:"status"`
	CreatedAt Timestamp `json:"created_at"`
}

// Finding is a named data record attached to an investigation.
type Finding struct {
	ID              int64     `json:"id"`
	InvestigationID int64     `json:"investigation_id"`
	Platform        string    `json:"platform"`
	Username        string    `json:"username"`
	ProfileURL      string    `json:"profile_url"`
	Data            string    `json:"data"`
	Found           bool      `json:"found"`
	ScrapedAt       Timestamp `json:"scraped_at"`
}

// NodeID identifies a graph node. The backend emits strings ("node_0") but
// numeric ids are accepted as well.
type NodeID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*id = NodeID(str)
		return nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return err
	}
	*id = NodeID(s)
	return nil
}

// Node is one vertex of the relationship graph.
type Node struct {
	ID    NodeID   `json:"id"`
	Label string   `json:"label"`
	Title string   `json:"title,omitempty"`
	Type  string   `json:"type,omitempty"`
	Group string   `json:"group,omitempty"`
	Color string   `json:"color,omitempty"`
	Size  *float64 `json:"size,omitempty"`
}

// Edge connects two nodes.
type Edge struct {
	From  NodeID `json:"from"`
	To    NodeID `json:"to"`
	Label string `json:"label,omitempty"`
}

// NetworkSummary is the backend's headline count for a graph.
type NetworkSummary struct {
	Target           string `json:"target"`
	PlatformsFound   int    `json:"platforms_found"`
	TotalNodes       int    `json:"total_nodes"`
	TotalConnections int    `json:"total_connections"`
}

// Network is the relationship graph attached to an investigation detail.
type Network struct {
	Nodes   []Node          `json:"nodes"`
	Edges   []Edge          `json:"edges"`
	Summary *NetworkSummary `json:"summary,omitempty"`
}

// GraphStats are the structural statistics the backend computes for a graph.
type GraphStats struct {
	NodeCount     int     `json:"node_count"`
	EdgeCount     int     `json:"edge_count"`
	Density       float64 `json:"density"`
	AvgClustering float64 `json:"avg_clustering"`
}

// Detail is the full nested payload for one investigation.
// Network is nil when the backend omits it or sends null.
type Detail struct {
	Investigation Investigation `json:"investigation"`
	Findings      []Finding     `json:"findings"`
	Network       *Network      `json:"network"`
	Stats         *GraphStats   `json:"stats,omitempty"`
}
