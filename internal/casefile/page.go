// internal/casefile/page.go
package casefile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/report"
)

// ErrNoCase means the route carried no usable investigation id. Callers
// redirect to the list; no request is made.
var ErrNoCase = errors.New("no investigation selected")

// State of a detail page.
type State int

const (
	StateLoading State = iota
	StateError
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Fetcher loads one investigation.
type Fetcher interface {
	GetInvestigation(ctx context.Context, id int64) (*api.Detail, error)
}

// Guard discards results that arrive after the user navigated elsewhere.
// *shell.App implements it.
type Guard interface {
	Token() uint64
	Commit(token uint64, apply func()) error
}

// Page is the detail view for one investigation.
type Page struct {
	ID     int64
	State  State
	Err    string
	Detail *api.Detail
	Body   report.Body
	View   report.CaseView
}

// Loader builds pages.
type Loader struct {
	fetcher Fetcher
	guard   Guard
	logger  *zap.Logger
}

// NewLoader creates a loader. guard may be nil when staleness does not matter,
// as in one-shot commands.
func NewLoader(fetcher Fetcher, guard Guard, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fetcher: fetcher, guard: guard, logger: logger.Named("casefile")}
}

// ParseID validates a route id.
func ParseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrNoCase
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q is not an investigation id", ErrNoCase, raw)
	}
	return id, nil
}

// Open loads the page for rawID. It returns ErrNoCase without any request for
// a missing or malformed id, and shell.ErrStale if the user navigated away
// before the response arrived. A fetch failure is not an error of Open: the
// page comes back in StateError carrying the message and no partial data.
func (l *Loader) Open(ctx context.Context, rawID string) (*Page, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return nil, err
	}

	var token uint64
	if l.guard != nil {
		token = l.guard.Token()
	}

	detail, fetchErr := l.fetcher.GetInvestigation(ctx, id)

	var page *Page
	apply := func() {
		if fetchErr != nil {
			page = &Page{ID: id, State: StateError, Err: fetchErr.Error()}
			return
		}
		body := report.FromFindings(detail.Findings, l.logger)
		page = &Page{
			ID:     id,
			State:  StateReady,
			Detail: detail,
			Body:   body,
			View:   report.Project(*detail, body),
		}
	}

	if l.guard == nil {
		apply()
	} else if err := l.guard.Commit(token, apply); err != nil {
		l.logger.Debug("Dropped case response", zap.Int64("investigation_id", id), zap.Error(err))
		return nil, err
	}

	if page.State == StateError {
		l.logger.Warn("Failed to load investigation", zap.Int64("investigation_id", id), zap.Error(fetchErr))
	}
	return page, nil
}
