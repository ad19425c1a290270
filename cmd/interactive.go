// File: cmd/interactive.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/config"
	"github.com/xkilldash9x/soko-cli/internal/dashboard"
	"github.com/xkilldash9x/soko-cli/internal/graph"
	"github.com/xkilldash9x/soko-cli/internal/health"
	"github.com/xkilldash9x/soko-cli/internal/render"
	"github.com/xkilldash9x/soko-cli/internal/shell"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

const sessionHelp = `Shell commands:
  open <id>                     show an investigation report
  back                          return to the investigation list
  refresh                       reload the current view
  investigate <username>        start an investigation (blocks for the scan)
  delete <id>                   delete an investigation (asks first)
  filter [status=] [user=] [location=] [org=]
  filter clear                  show every investigation
  zoom in|out|fit               adjust the network map of the open report
  theme [name]                  show or switch the theme
  help                          this text
  exit                          leave the shell

Anything else runs as a soko command, e.g. "graph 3 -o graph.html".`

// Session is the interactive shell: one list view, one detail view and the
// navigation state that decides which of the two is on screen.
type Session struct {
	logger  *zap.Logger
	client  *api.Client
	app     *shell.App
	monitor *health.Monitor
	list    *dashboard.View
	loader  *casefile.Loader
	graphs  *graph.Renderer
	confirm dashboard.Confirmer

	outMu sync.Mutex
	out   io.Writer

	connSeen atomic.Bool

	page      *casefile.Page
	graphView graph.View
}

// NewSession wires a shell against the configured backend. confirm answers the
// delete prompt; nil deletes without asking.
func NewSession(cfg *config.Config, logger *zap.Logger, out io.Writer, confirm dashboard.Confirmer) (*Session, error) {
	store, err := theme.NewStore(cfg.UI.StateFile)
	if err != nil {
		return nil, err
	}
	if cfg.UI.AssumeYes {
		confirm = nil
	}

	s := &Session{
		logger:  logger.Named("session"),
		client:  newBackendClient(cfg, logger),
		graphs:  graph.NewRenderer(logger),
		confirm: confirm,
		out:     out,
	}
	s.monitor = health.NewMonitor(s.client, cfg.Backend.HealthInterval,
		health.WithTimeout(cfg.Backend.Timeout),
		health.WithLogger(logger),
		health.OnChange(s.onConnectivity),
	)
	s.app = shell.New(store, s.monitor, cfg.UI.DefaultTheme, logger)
	s.list = dashboard.New(s.client, s.app,
		dashboard.WithLogger(logger),
		dashboard.WithEnrichConcurrency(cfg.Dashboard.EnrichConcurrency),
		dashboard.WithStatusHook(func(status string) {
			if status != "" {
				s.println(status)
			}
		}),
	)
	s.loader = casefile.NewLoader(s.client, s.app, logger)
	return s, nil
}

// Start begins health monitoring and shows the list.
func (s *Session) Start(ctx context.Context) error {
	if err := s.monitor.Start(ctx); err != nil {
		return err
	}
	s.list.Load(ctx)
	s.render()
	return nil
}

// Close stops background work.
func (s *Session) Close() {
	s.monitor.Stop()
	s.graphs.Close()
}

// Prompt reflects the current route.
func (s *Session) Prompt() string {
	route := s.app.Route()
	if route.Name == shell.RouteCase {
		return "soko #" + route.CaseID + " > "
	}
	return "soko > "
}

// Handle runs one shell command. It reports false for lines that are not shell
// commands so the caller can run them as a soko command instead.
func (s *Session) Handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true, nil
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]
	s.logger.Debug("Shell command", zap.String("verb", verb), zap.Int("args", len(args)))

	switch verb {
	case "help", "?":
		s.println(sessionHelp)
	case "open":
		if len(args) != 1 {
			return true, errors.New("usage: open <id>")
		}
		return true, s.open(ctx, args[0])
	case "back", "home":
		s.back(ctx)
	case "refresh", "r":
		return true, s.refresh(ctx)
	case "investigate":
		if len(args) == 0 {
			return true, errors.New("usage: investigate <username>")
		}
		return true, s.investigate(ctx, strings.Join(args, " "))
	case "delete":
		if len(args) != 1 {
			return true, errors.New("usage: delete <id>")
		}
		return true, s.delete(ctx, args[0])
	case "filter":
		return true, s.filter(ctx, args)
	case "zoom":
		return true, s.zoom(args)
	case "theme":
		if len(args) == 0 {
			s.println("Theme: " + s.app.Theme() + " (available: " + strings.Join(theme.Names(), ", ") + ")")
			return true, nil
		}
		if err := s.app.SetTheme(args[0]); err != nil {
			return true, err
		}
		s.render()
	default:
		return false, nil
	}
	return true, nil
}

// open navigates to a case and loads it. A malformed id redirects to the list.
func (s *Session) open(ctx context.Context, rawID string) error {
	route := s.app.Navigate("/case/" + strings.TrimSpace(rawID))
	return s.loadCase(ctx, route)
}

func (s *Session) loadCase(ctx context.Context, route shell.Route) error {
	s.page = &casefile.Page{State: casefile.StateLoading}
	s.render()

	page, err := s.loader.Open(ctx, route.CaseID)
	switch {
	case errors.Is(err, casefile.ErrNoCase):
		s.back(ctx)
		return err
	case errors.Is(err, shell.ErrStale):
		return nil
	case err != nil:
		return err
	}
	s.page = page
	if page.State == casefile.StateReady {
		s.graphView = s.graphs.Render(page.Detail.Network, s.app.Palette())
	} else {
		s.graphs.Close()
		s.graphView = graph.View{}
	}
	s.render()
	return nil
}

func (s *Session) back(ctx context.Context) {
	s.app.Navigate(shell.RootPath)
	s.page = nil
	s.graphView = graph.View{}
	s.graphs.Close()
	s.list.Load(ctx)
	s.render()
}

func (s *Session) refresh(ctx context.Context) error {
	route := s.app.Route()
	if route.Name == shell.RouteCase {
		return s.loadCase(ctx, s.app.Navigate(route.Path))
	}
	s.list.Load(ctx)
	if s.list.Filter().Active() {
		if err := s.list.Enrich(ctx); err != nil {
			return err
		}
	}
	s.render()
	return nil
}

func (s *Session) investigate(ctx context.Context, username string) error {
	if s.app.Route().Name != shell.RouteList {
		s.back(ctx)
	}
	s.list.SetInput(username)
	if _, err := s.list.Submit(ctx); err != nil {
		s.list.Load(ctx)
		s.render()
		if errors.Is(err, dashboard.ErrUsernameTooShort) {
			return nil
		}
		return err
	}
	// Submit navigated to the new case.
	return s.loadCase(ctx, s.app.Route())
}

func (s *Session) delete(ctx context.Context, rawID string) error {
	id, err := casefile.ParseID(rawID)
	if err != nil {
		return err
	}
	deleted, err := s.list.Delete(ctx, id, s.confirm)
	if err != nil {
		s.render()
		return err
	}
	if deleted && s.app.Route().CaseID == strconv.FormatInt(id, 10) {
		s.back(ctx)
		return nil
	}
	s.list.Load(ctx)
	if s.app.Route().Name == shell.RouteList {
		s.render()
	}
	return nil
}

func (s *Session) filter(ctx context.Context, args []string) error {
	if len(args) == 1 && strings.EqualFold(args[0], "clear") {
		s.list.SetFilter(dashboard.Filter{})
		s.render()
		return nil
	}

	f := s.list.Filter()
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return fmt.Errorf("filter terms look like key=value, got %q", arg)
		}
		switch strings.ToLower(key) {
		case "status":
			status, err := parseStatus(value)
			if err != nil {
				return err
			}
			f.Status = status
		case "user", "username":
			f.Username = value
		case "location", "loc":
			f.Location = value
		case "org", "organization":
			f.Organization = value
		default:
			return fmt.Errorf("unknown filter key %q (status, user, location, org)", key)
		}
	}
	if f.Location != "" || f.Organization != "" {
		if err := s.list.Enrich(ctx); err != nil {
			return err
		}
	}
	s.list.SetFilter(f)
	if s.app.Route().Name != shell.RouteList {
		s.back(ctx)
		return nil
	}
	s.render()
	return nil
}

func (s *Session) zoom(args []string) error {
	if s.graphView.Visualization == nil {
		return errors.New("no network map on screen")
	}
	if len(args) != 1 {
		return errors.New("usage: zoom in|out|fit")
	}
	switch strings.ToLower(args[0]) {
	case "in", "+":
		s.graphs.ZoomIn()
	case "out", "-":
		s.graphs.ZoomOut()
	case "fit":
		s.graphs.Fit()
	default:
		return errors.New("usage: zoom in|out|fit")
	}
	s.render()
	return nil
}

// render draws the view of the current route.
func (s *Session) render() {
	styles := stylesFor(s.out, s.app.Palette())
	if s.app.Route().Name == shell.RouteCase {
		if s.page != nil && s.page.State == casefile.StateReady {
			// A theme switch rebuilds the visualization.
			s.graphView = s.graphs.Render(s.page.Detail.Network, s.app.Palette())
		}
		s.println(render.Case(styles, s.page, s.graphView))
		return
	}
	s.println(render.Dashboard(styles, s.list, s.app.Online()))
}

// onConnectivity announces transitions. The first result is already part of
// the initial render.
func (s *Session) onConnectivity(online bool) {
	if !s.connSeen.Swap(true) {
		return
	}
	if online {
		s.println("Backend is back online.")
		return
	}
	s.println(render.OfflineBanner)
}

func (s *Session) println(text string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintln(s.out, strings.TrimRight(text, "\n"))
}
