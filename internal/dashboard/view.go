// internal/dashboard/view.go
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/shell"
)

// User-facing text.
const (
	UsernameTooShortMessage = "Please enter a username (at least 2 characters)."
	DeletePrompt            = "Are you sure you want to delete this investigation?"
	EmptyMessage            = "No investigations yet. Enter a username above to begin."
)

var (
	// ErrUsernameTooShort is returned by Submit before any network call.
	ErrUsernameTooShort = errors.New("username must be at least 2 characters")
	// ErrBusy is returned when a delete for the same investigation is already running.
	ErrBusy = errors.New("investigation is already being deleted")
)

// Backend is the subset of the API client the list view needs.
type Backend interface {
	ListInvestigations(ctx context.Context) ([]api.Investigation, error)
	CreateInvestigation(ctx context.Context, username string) (*api.Investigation, error)
	RunInvestigation(ctx context.Context, id int64) error
	GetInvestigation(ctx context.Context, id int64) (*api.Detail, error)
	DeleteInvestigation(ctx context.Context, id int64) error
}

// Navigator moves the application to another route.
type Navigator interface {
	Navigate(path string) shell.Route
}

// Confirmer asks the user a yes/no question.
type Confirmer func(prompt string) bool

// Stats are the headline counts, always derived from the loaded list.
type Stats struct {
	Total     int
	Completed int
	Running   int
	Failed    int
}

// View is the investigation list view model.
type View struct {
	backend  Backend
	nav      Navigator
	logger   *zap.Logger
	validate *validator.Validate
	onStatus func(status string)

	enrichLimit int

	mu      sync.Mutex
	items   []api.Investigation
	input   string
	loading bool
	status  string
	errMsg  string
	busy    map[int64]struct{}
	filter  Filter
	facets  map[int64]Facets
}

// Option customizes a View.
type Option func(*View)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(v *View) {
		if logger != nil {
			v.logger = logger.Named("dashboard")
		}
	}
}

// WithStatusHook is called whenever the status line changes, so a terminal can
// show progress while Submit blocks.
func WithStatusHook(fn func(status string)) Option {
	return func(v *View) {
		v.onStatus = fn
	}
}

// WithEnrichConcurrency bounds parallel detail fetches in Enrich.
func WithEnrichConcurrency(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.enrichLimit = n
		}
	}
}

// New creates an empty list view.
func New(backend Backend, nav Navigator, opts ...Option) *View {
	v := &View{
		backend:     backend,
		nav:         nav,
		logger:      zap.NewNop(),
		validate:    validator.New(),
		enrichLimit: 4,
		busy:        make(map[int64]struct{}),
		facets:      make(map[int64]Facets),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load fetches the list. A failed fetch presents as an empty list with no
// error line.
func (v *View) Load(ctx context.Context) {
	items, err := v.backend.ListInvestigations(ctx)
	if err != nil {
		v.logger.Warn("Failed to load investigations", zap.Error(err))
		items = nil
	}
	sortByIDDesc(items)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.items = items
}

func sortByIDDesc(items []api.Investigation) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID > items[j].ID })
}

// Items returns a copy of the loaded list, newest first.
func (v *View) Items() []api.Investigation {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]api.Investigation(nil), v.items...)
}

// Stats recomputes the counts from the loaded list.
func (v *View) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := Stats{Total: len(v.items)}
	for _, inv := range v.items {
		switch inv.Status {
		case api.StatusCompleted:
			s.Completed++
		case api.StatusRunning:
			s.Running++
		case api.StatusFailed:
			s.Failed++
		}
	}
	return s
}

// SetInput replaces the username input text.
func (v *View) SetInput(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input = s
}

// Input returns the username input text.
func (v *View) Input() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input
}

// Loading reports whether a create+run is in flight.
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// Status returns the progress line of an in-flight create+run.
func (v *View) Status() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// Error returns the error line, empty when there is none.
func (v *View) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *View) setStatus(status string) {
	v.mu.Lock()
	v.status = status
	v.mu.Unlock()
	if v.onStatus != nil {
		v.onStatus(status)
	}
}

func (v *View) fail(msg string) {
	v.mu.Lock()
	v.loading = false
	v.status = ""
	v.errMsg = msg
	v.mu.Unlock()
}

// Submit validates the input, creates the investigation, runs the scan and
// navigates to the new case. Run is never issued before create resolves, and
// navigation never happens before run resolves. On failure the input is kept.
func (v *View) Submit(ctx context.Context) (int64, error) {
	v.mu.Lock()
	if v.loading {
		v.mu.Unlock()
		return 0, errors.New("an investigation is already being started")
	}
	name := strings.TrimSpace(v.input)
	if err := v.validate.Var(name, "min=2"); err != nil {
		v.errMsg = UsernameTooShortMessage
		v.mu.Unlock()
		return 0, ErrUsernameTooShort
	}
	v.errMsg = ""
	v.loading = true
	v.mu.Unlock()

	logger := v.logger.With(zap.String("username", name))

	v.setStatus(fmt.Sprintf("Creating investigation for @%s...", name))
	inv, err := v.backend.CreateInvestigation(ctx, name)
	if err != nil {
		logger.Warn("Create failed", zap.Error(err))
		v.fail("Error: " + err.Error())
		return 0, err
	}

	v.setStatus(fmt.Sprintf("Scanning all platforms for @%s... (30–60 seconds)", name))
	if err := v.backend.RunInvestigation(ctx, inv.ID); err != nil {
		logger.Warn("Run failed", zap.Int64("investigation_id", inv.ID), zap.Error(err))
		v.fail("Error: " + err.Error())
		return inv.ID, err
	}

	v.mu.Lock()
	v.loading = false
	v.status = ""
	v.input = ""
	v.mu.Unlock()

	logger.Info("Investigation completed", zap.Int64("investigation_id", inv.ID))
	if v.nav != nil {
		v.nav.Navigate(shell.CasePath(inv.ID))
	}
	return inv.ID, nil
}

// Busy reports whether a delete of id is in flight.
func (v *View) Busy(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.busy[id]
	return ok
}

// Delete asks for confirmation and removes the investigation. The row is
// dropped locally only after the backend confirms.
func (v *View) Delete(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	if confirm != nil && !confirm(DeletePrompt) {
		return false, nil
	}

	v.mu.Lock()
	if _, ok := v.busy[id]; ok {
		v.mu.Unlock()
		return false, ErrBusy
	}
	v.busy[id] = struct{}{}
	v.mu.Unlock()

	err := v.backend.DeleteInvestigation(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.busy, id)
	if err != nil {
		v.errMsg = "Error deleting: " + err.Error()
		v.logger.Warn("Delete failed", zap.Int64("investigation_id", id), zap.Error(err))
		return false, err
	}
	kept := v.items[:0]
	for _, inv := range v.items {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	v.items = kept
	delete(v.facets, id)
	return true, nil
}
