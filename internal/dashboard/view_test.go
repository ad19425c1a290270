// internal/dashboard/view_test.go
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/report"
	"github.com/xkilldash9x/soko-cli/internal/shell"
)

// -- Test doubles --

type fakeBackend struct {
	mu sync.Mutex

	list    []api.Investigation
	listErr error

	createID  int64
	createErr error
	runErr    error
	deleteErr error
	details   map[int64]*api.Detail

	calls []string
	// onDelete runs while the delete call is in flight.
	onDelete func()
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) ListInvestigations(ctx context.Context) ([]api.Investigation, error) {
	f.record("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.Investigation(nil), f.list...), nil
}

func (f *fakeBackend) CreateInvestigation(ctx context.Context, username string) (*api.Investigation, error) {
	f.record("create " + username)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &api.Investigation{ID: f.createID, Username: username, Status: api.StatusPending}, nil
}

func (f *fakeBackend) RunInvestigation(ctx context.Context, id int64) error {
	f.record(fmt.Sprintf("run %d", id))
	return f.runErr
}

func (f *fakeBackend) GetInvestigation(ctx context.Context, id int64) (*api.Detail, error) {
	f.record(fmt.Sprintf("get %d", id))
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, &api.Error{Op: "get", Status: 404, Message: "Not found"}
}

func (f *fakeBackend) DeleteInvestigation(ctx context.Context, id int64) error {
	f.record(fmt.Sprintf("delete %d", id))
	if f.onDelete != nil {
		f.onDelete()
	}
	return f.deleteErr
}

type recordingNav struct {
	paths []string
}

func (r *recordingNav) Navigate(path string) shell.Route {
	r.paths = append(r.paths, path)
	return shell.ParseRoute(path)
}

func yes(string) bool { return true }

func sampleList() []api.Investigation {
	return []api.Investigation{
		{ID: 3, Username: "alice", Status: api.StatusCompleted},
		{ID: 10, Username: "bob", Status: api.StatusRunning},
		{ID: 1, Username: "carol", Status: api.StatusFailed},
		{ID: 7, Username: "dave", Status: api.StatusCompleted},
		{ID: 5, Username: "erin", Status: api.StatusPending},
	}
}

func ids(items []api.Investigation) []int64 {
	out := make([]int64, 0, len(items))
	for _, inv := range items {
		out = append(out, inv.ID)
	}
	return out
}

// -- Load and Stats --

func TestLoad(t *testing.T) {
	t.Run("sorts newest first and is idempotent", func(t *testing.T) {
		backend := &fakeBackend{list: sampleList()}
		view := New(backend, nil)

		view.Load(context.Background())
		first := ids(view.Items())
		view.Load(context.Background())
		second := ids(view.Items())

		assert.Equal(t, []int64{10, 7, 5, 3, 1}, first)
		assert.Equal(t, first, second)
	})

	t.Run("failure presents as empty list without error line", func(t *testing.T) {
		backend := &fakeBackend{list: sampleList()}
		view := New(backend, nil)
		view.Load(context.Background())
		require.Len(t, view.Items(), 5)

		backend.listErr = &api.Error{Message: "HTTP 500", Status: 500}
		view.Load(context.Background())
		assert.Empty(t, view.Items())
		assert.Empty(t, view.Error())
		assert.Equal(t, Stats{}, view.Stats())
	})
}

func TestStats(t *testing.T) {
	view := New(&fakeBackend{list: sampleList()}, nil)
	view.Load(context.Background())
	assert.Equal(t, Stats{Total: 5, Completed: 2, Running: 1, Failed: 1}, view.Stats())
}

// -- Submit --

func TestSubmitRejectsShortUsernames(t *testing.T) {
	for _, input := range []string{"", " ", "a", "  b  ", "\t\n", "é"} {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			backend := &fakeBackend{createID: 1}
			nav := &recordingNav{}
			view := New(backend, nav)
			view.SetInput(input)

			id, err := view.Submit(context.Background())
			assert.ErrorIs(t, err, ErrUsernameTooShort)
			assert.Zero(t, id)
			assert.Equal(t, UsernameTooShortMessage, view.Error())
			assert.Empty(t, backend.Calls(), "no network call for invalid input")
			assert.Empty(t, nav.paths)
			assert.Equal(t, input, view.Input())
		})
	}
}

func TestSubmitCreatesRunsAndNavigates(t *testing.T) {
	backend := &fakeBackend{createID: 42}
	nav := &recordingNav{}
	var statuses []string
	view := New(backend, nav, WithStatusHook(func(s string) { statuses = append(statuses, s) }))

	view.SetInput("  torvalds ")
	id, err := view.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), id)
	assert.Equal(t, []string{"create torvalds", "run 42"}, backend.Calls())
	assert.Equal(t, []string{"/case/42"}, nav.paths)
	assert.Equal(t, []string{
		"Creating investigation for @torvalds...",
		"Scanning all platforms for @torvalds... (30–60 seconds)",
	}, statuses)
	assert.Empty(t, view.Input())
	assert.Empty(t, view.Error())
	assert.False(t, view.Loading())
}

func TestSubmitFailures(t *testing.T) {
	t.Run("create failure never runs", func(t *testing.T) {
		backend := &fakeBackend{createErr: &api.Error{Op: "create", Status: 400, Message: "Username is required"}}
		nav := &recordingNav{}
		view := New(backend, nav)
		view.SetInput("ghost")

		_, err := view.Submit(context.Background())
		require.Error(t, err)
		assert.Equal(t, []string{"create ghost"}, backend.Calls())
		assert.Equal(t, "Error: Username is required", view.Error())
		assert.Equal(t, "ghost", view.Input())
		assert.Empty(t, nav.paths)
		assert.False(t, view.Loading())
		assert.Empty(t, view.Status())
	})

	t.Run("run failure does not navigate", func(t *testing.T) {
		backend := &fakeBackend{createID: 9, runErr: &api.Error{Op: "run", Status: 500, Message: "HTTP 500"}}
		nav := &recordingNav{}
		view := New(backend, nav)
		view.SetInput("ghost")

		id, err := view.Submit(context.Background())
		require.Error(t, err)
		assert.Equal(t, int64(9), id)
		assert.Equal(t, "Error: HTTP 500", view.Error())
		assert.Equal(t, "ghost", view.Input())
		assert.Empty(t, nav.paths)
	})

	t.Run("a later success clears the error line", func(t *testing.T) {
		backend := &fakeBackend{createID: 2, createErr: errors.New("boom")}
		view := New(backend, nil)
		view.SetInput("ghost")
		_, _ = view.Submit(context.Background())
		require.NotEmpty(t, view.Error())

		backend.createErr = nil
		_, err := view.Submit(context.Background())
		require.NoError(t, err)
		assert.Empty(t, view.Error())
	})
}

// -- Delete --

func TestDelete(t *testing.T) {
	t.Run("declined confirmation makes no call", func(t *testing.T) {
		backend := &fakeBackend{list: sampleList()}
		view := New(backend, nil)
		view.Load(context.Background())

		var asked string
		deleted, err := view.Delete(context.Background(), 7, func(p string) bool { asked = p; return false })
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, DeletePrompt, asked)
		assert.Equal(t, []string{"list"}, backend.Calls())
		assert.Len(t, view.Items(), 5)
	})

	t.Run("success removes the row without reload", func(t *testing.T) {
		backend := &fakeBackend{list: sampleList()}
		view := New(backend, nil)
		view.Load(context.Background())

		deleted, err := view.Delete(context.Background(), 7, yes)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, []int64{10, 5, 3, 1}, ids(view.Items()))
		assert.Equal(t, []string{"list", "delete 7"}, backend.Calls())
		assert.Equal(t, 4, view.Stats().Total)
	})

	t.Run("only the row being deleted is busy", func(t *testing.T) {
		backend := &fakeBackend{list: sampleList()}
		view := New(backend, nil)
		view.Load(context.Background())

		var busy7, busy3 bool
		backend.onDelete = func() {
			busy7 = view.Busy(7)
			busy3 = view.Busy(3)
		}
		_, err := view.Delete(context.Background(), 7, yes)
		require.NoError(t, err)
		assert.True(t, busy7)
		assert.False(t, busy3)
		assert.False(t, view.Busy(7), "busy flag clears when the call resolves")
	})

	t.Run("failure keeps the row and sets the error line", func(t *testing.T) {
		backend := &fakeBackend{list: sampleList(), deleteErr: &api.Error{Op: "delete", Status: 404, Message: "Investigation not found"}}
		view := New(backend, nil)
		view.Load(context.Background())

		deleted, err := view.Delete(context.Background(), 7, yes)
		require.Error(t, err)
		assert.False(t, deleted)
		assert.Equal(t, "Error deleting: Investigation not found", view.Error())
		assert.Contains(t, ids(view.Items()), int64(7))
		assert.False(t, view.Busy(7))
	})

	t.Run("concurrent delete of the same row is refused", func(t *testing.T) {
		backend := &fakeBackend{list: sampleList()}
		view := New(backend, nil)
		view.Load(context.Background())

		var nestedErr error
		backend.onDelete = func() {
			backend.onDelete = nil
			_, nestedErr = view.Delete(context.Background(), 7, yes)
		}
		_, err := view.Delete(context.Background(), 7, yes)
		require.NoError(t, err)
		assert.ErrorIs(t, nestedErr, ErrBusy)
	})
}

// -- Filter --

func analysisFinding(t *testing.T, body report.Body) api.Finding {
	t.Helper()
	data, err := report.Marshal(body)
	require.NoError(t, err)
	return api.Finding{Platform: report.AnalysisPlatform, Data: data}
}

func TestFilterAndEnrich(t *testing.T) {
	backend := &fakeBackend{
		list: sampleList(),
		details: map[int64]*api.Detail{
			3: {Findings: []api.Finding{analysisFinding(t, report.Body{GitHub: &report.GitHub{Found: true, Location: "Nairobi, Kenya", Company: "Acme"}})}},
			7: {Findings: []api.Finding{{Platform: report.AnalysisPlatform, Data: "{broken"}}},
		},
	}
	view := New(backend, nil, WithEnrichConcurrency(2))
	view.Load(context.Background())

	t.Run("status and username need no enrichment", func(t *testing.T) {
		view.SetFilter(Filter{Status: api.StatusCompleted})
		assert.Equal(t, []int64{7, 3}, ids(view.Visible()))

		view.SetFilter(Filter{Username: "ER"})
		assert.Equal(t, []int64{5}, ids(view.Visible()))

		view.SetFilter(Filter{})
		assert.Len(t, view.Visible(), 5)
		assert.False(t, view.Filter().Active())
	})

	t.Run("location filter before enrichment matches nothing", func(t *testing.T) {
		view.SetFilter(Filter{Location: "nairobi"})
		assert.Empty(t, view.Visible())
	})

	t.Run("enrichment fetches completed investigations only", func(t *testing.T) {
		require.NoError(t, view.Enrich(context.Background()))
		assert.ElementsMatch(t, []string{"get 7", "get 3"}, backend.Calls()[1:])

		view.SetFilter(Filter{Location: "nairobi"})
		assert.Equal(t, []int64{3}, ids(view.Visible()))

		view.SetFilter(Filter{Organization: "acme", Status: api.StatusCompleted})
		assert.Equal(t, []int64{3}, ids(view.Visible()))

		locations, orgs := view.FilterOptions()
		assert.Equal(t, []string{"Nairobi, Kenya"}, locations)
		assert.Equal(t, []string{"Acme"}, orgs)
	})

	t.Run("enrichment is not repeated", func(t *testing.T) {
		before := len(backend.Calls())
		require.NoError(t, view.Enrich(context.Background()))
		assert.Len(t, backend.Calls(), before)
	})

	t.Run("cancellation aborts", func(t *testing.T) {
		fresh := New(&fakeBackend{list: sampleList()}, nil)
		fresh.Load(context.Background())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, fresh.Enrich(ctx), context.Canceled)
	})
}
