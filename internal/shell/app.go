// internal/shell/app.go
package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// ErrStale is returned when a result arrives after the user navigated away
// from the view that requested it.
var ErrStale = errors.New("response is stale: view changed while the request was in flight")

// Route names.
const (
	RouteList = "list"
	RouteCase = "case"
)

// RootPath is the investigation list.
const RootPath = "/"

// Route is a parsed navigation target.
type Route struct {
	Name   string
	Path   string
	CaseID string
}

// CasePath builds the detail route for an investigation.
func CasePath(id int64) string {
	return "/case/" + strconv.FormatInt(id, 10)
}

// ParseRoute resolves path to a route. Unknown paths resolve to the list.
// "/case/" with no id is still a case route; the detail view redirects it.
func ParseRoute(path string) Route {
	path = strings.TrimSpace(path)
	if rest, ok := strings.CutPrefix(path, "/case/"); ok && !strings.Contains(rest, "/") {
		return Route{Name: RouteCase, Path: path, CaseID: rest}
	}
	return Route{Name: RouteList, Path: RootPath}
}

// ThemeStore persists the theme selection.
type ThemeStore interface {
	Theme(fallback string) string
	SetTheme(name string) error
}

// OnlineSource reports backend reachability. The health monitor is the only
// implementation and the only writer of that flag.
type OnlineSource interface {
	Online() bool
}

// App is the application-level state shared by every view: the current route,
// the theme selection and the online flag. Each piece has a single writer.
type App struct {
	mu         sync.Mutex
	route      Route
	generation uint64
	theme      string
	store      ThemeStore
	online     OnlineSource
	logger     *zap.Logger
}

// New restores the persisted theme (or defaultTheme) and starts at the list.
func New(store ThemeStore, online OnlineSource, defaultTheme string, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := theme.Lookup(defaultTheme).Name
	if store != nil {
		name = store.Theme(name)
	}
	return &App{
		route:  Route{Name: RouteList, Path: RootPath},
		theme:  name,
		store:  store,
		online: online,
		logger: logger.Named("shell"),
	}
}

// Navigate moves to path and invalidates every in-flight view request.
func (a *App) Navigate(path string) Route {
	route := ParseRoute(path)
	a.mu.Lock()
	a.route = route
	a.generation++
	gen := a.generation
	a.mu.Unlock()

	a.logger.Debug("Navigated", zap.String("path", route.Path), zap.Uint64("generation", gen))
	return route
}

// Route returns the current route.
func (a *App) Route() Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

// Token captures the current navigation generation for a request.
func (a *App) Token() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

// Commit runs apply only if no navigation happened since token was taken.
// apply must not call back into App.
func (a *App) Commit(token uint64, apply func()) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if token != a.generation {
		a.logger.Debug("Discarding stale response",
			zap.Uint64("token", token),
			zap.Uint64("generation", a.generation),
		)
		return ErrStale
	}
	if apply != nil {
		apply()
	}
	return nil
}

// Theme returns the active theme name.
func (a *App) Theme() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.theme
}

// Palette returns the active palette.
func (a *App) Palette() theme.Palette {
	return theme.Lookup(a.Theme())
}

// SetTheme is the single writer of the theme selection. It persists first so
// the in-memory value never diverges from what the next launch restores.
func (a *App) SetTheme(name string) error {
	if !theme.Valid(name) {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(theme.Names(), ", "))
	}
	resolved := theme.Lookup(name).Name
	if a.store != nil {
		if err := a.store.SetTheme(resolved); err != nil {
			return fmt.Errorf("failed to persist theme: %w", err)
		}
	}
	a.mu.Lock()
	a.theme = resolved
	a.mu.Unlock()
	return nil
}

// Online reports the backend flag, false when no monitor is attached.
func (a *App) Online() bool {
	if a.online == nil {
		return false
	}
	return a.online.Online()
}
