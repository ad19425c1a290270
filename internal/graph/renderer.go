// internal/graph/renderer.go
package graph

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// NoDataMessage is shown instead of a canvas when there is no payload.
const NoDataMessage = "No network data available"

const (
	zoomInFactor  = 1.2
	zoomOutFactor = 0.8
)

// Visualization is one constructed graph. It is never reused across payload or
// theme changes; the renderer destroys it and builds a fresh one.
type Visualization struct {
	ID      string
	Dataset Dataset
	Palette theme.Palette
	Scale   float64
	Fitted  bool

	destroyed bool
}

// Destroyed reports whether the visualization has been torn down.
func (v *Visualization) Destroyed() bool {
	return v.destroyed
}

// View is the renderer output: either a placeholder or a visualization.
type View struct {
	Placeholder   string
	Visualization *Visualization
}

// Renderer owns the lifecycle of the current visualization.
type Renderer struct {
	mu      sync.Mutex
	current *Visualization
	payload *api.Network
	theme   string
	logger  *zap.Logger
}

// NewRenderer creates a renderer with no visualization.
func NewRenderer(logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{logger: logger.Named("graph")}
}

// Render shows payload with palette. A nil payload yields the placeholder; an
// empty but present payload yields a visualization with no nodes. If either the
// payload or the palette differs from the last call the previous visualization
// is destroyed before the new one is built.
func (r *Renderer) Render(payload *api.Network, palette theme.Palette) View {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil && !r.current.destroyed && payload == r.payload && payload != nil && palette.Name == r.theme {
		return View{Visualization: r.current}
	}

	r.destroyLocked()
	r.payload = payload
	r.theme = palette.Name

	if payload == nil {
		return View{Placeholder: NoDataMessage}
	}

	vis := &Visualization{
		ID:      uuid.NewString(),
		Dataset: Translate(*payload, palette),
		Palette: palette,
		Scale:   1,
		Fitted:  true,
	}
	r.current = vis
	r.logger.Debug("Visualization built",
		zap.String("visualization_id", vis.ID),
		zap.Int("nodes", len(vis.Dataset.Nodes)),
		zap.Int("edges", len(vis.Dataset.Edges)),
		zap.String("theme", palette.Name),
	)
	return View{Visualization: vis}
}

// Current returns the live visualization, if any.
func (r *Renderer) Current() *Visualization {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// ZoomIn scales the current visualization by 1.2.
func (r *Renderer) ZoomIn() {
	r.zoom(zoomInFactor)
}

// ZoomOut scales the current visualization by 0.8.
func (r *Renderer) ZoomOut() {
	r.zoom(zoomOutFactor)
}

// Fit resets the scale so the whole graph is in view.
func (r *Renderer) Fit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return
	}
	r.current.Scale = 1
	r.current.Fitted = true
}

func (r *Renderer) zoom(factor float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return
	}
	r.current.Scale *= factor
	r.current.Fitted = false
}

// Close destroys the current visualization.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked()
	r.payload = nil
	r.theme = ""
}

func (r *Renderer) destroyLocked() {
	if r.current == nil {
		return
	}
	r.current.destroyed = true
	r.logger.Debug("Visualization destroyed", zap.String("visualization_id", r.current.ID))
	r.current = nil
}
