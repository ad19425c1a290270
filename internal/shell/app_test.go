// internal/shell/app_test.go
package shell

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/soko-cli/internal/theme"
)

type memStore struct {
	name string
	err  error
}

func (m *memStore) Theme(fallback string) string {
	if m.name == "" {
		return fallback
	}
	return m.name
}

func (m *memStore) SetTheme(name string) error {
	if m.err != nil {
		return m.err
	}
	m.name = name
	return nil
}

type staticOnline bool

func (s staticOnline) Online() bool { return bool(s) }

func TestParseRoute(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"/", Route{Name: RouteList, Path: "/"}},
		{"", Route{Name: RouteList, Path: "/"}},
		{"/case/42", Route{Name: RouteCase, Path: "/case/42", CaseID: "42"}},
		{"/case/", Route{Name: RouteCase, Path: "/case/", CaseID: ""}},
		{"/case/42/extra", Route{Name: RouteList, Path: "/"}},
		{"/settings", Route{Name: RouteList, Path: "/"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRoute(tt.path))
		})
	}
	assert.Equal(t, "/case/42", CasePath(42))
}

func TestNavigateBumpsGeneration(t *testing.T) {
	app := New(nil, nil, "", nil)
	assert.Equal(t, RouteList, app.Route().Name)

	before := app.Token()
	route := app.Navigate("/case/7")
	assert.Equal(t, "7", route.CaseID)
	assert.Equal(t, route, app.Route())
	assert.Equal(t, before+1, app.Token())
}

func TestCommitDiscardsStaleResults(t *testing.T) {
	app := New(nil, nil, "", nil)
	app.Navigate("/case/1")
	token := app.Token()

	applied := false
	require.NoError(t, app.Commit(token, func() { applied = true }))
	assert.True(t, applied)

	app.Navigate("/")
	applied = false
	err := app.Commit(token, func() { applied = true })
	assert.True(t, errors.Is(err, ErrStale))
	assert.False(t, applied)
}

func TestTheme(t *testing.T) {
	t.Run("restored from store", func(t *testing.T) {
		app := New(&memStore{name: "light"}, nil, "dark", nil)
		assert.Equal(t, "light", app.Theme())
		assert.Equal(t, "light", app.Palette().Name)
	})

	t.Run("default when nothing persisted", func(t *testing.T) {
		app := New(&memStore{}, nil, "", nil)
		assert.Equal(t, theme.Default, app.Theme())
	})

	t.Run("setter persists", func(t *testing.T) {
		store := &memStore{}
		app := New(store, nil, "dark", nil)
		require.NoError(t, app.SetTheme("MIDNIGHT"))
		assert.Equal(t, "midnight", app.Theme())
		assert.Equal(t, "midnight", store.name)
	})

	t.Run("unknown or unpersistable theme leaves state alone", func(t *testing.T) {
		store := &memStore{err: errors.New("read-only")}
		app := New(store, nil, "dark", nil)
		assert.Error(t, app.SetTheme("neon"))
		assert.Error(t, app.SetTheme("light"))
		assert.Equal(t, "dark", app.Theme())
	})

	t.Run("with the file store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.yaml")
		store, err := theme.NewStore(path)
		require.NoError(t, err)
		require.NoError(t, New(store, nil, "dark", nil).SetTheme("light"))

		reopened, err := theme.NewStore(path)
		require.NoError(t, err)
		assert.Equal(t, "light", New(reopened, nil, "dark", nil).Theme())
	})
}

func TestOnline(t *testing.T) {
	assert.False(t, New(nil, nil, "", nil).Online())
	assert.True(t, New(nil, staticOnline(true), "", nil).Online())
}
