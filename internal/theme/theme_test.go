// internal/theme/theme_test.go
package theme

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"dark", "light", "midnight"}, Names())
	assert.Equal(t, "light", Lookup(" Light ").Name)
	assert.Equal(t, Default, Lookup("solarized").Name)
	assert.True(t, Valid("MIDNIGHT"))
	assert.False(t, Valid(""))
}

func TestRiskAndStatusColors(t *testing.T) {
	p := Lookup("dark")
	assert.Equal(t, p.RiskHigh, p.RiskColor("high"))
	assert.Equal(t, p.RiskMed, p.RiskColor("MEDIUM"))
	assert.Equal(t, p.RiskLow, p.RiskColor("LOW"))
	assert.Equal(t, p.Muted, p.RiskColor("UNKNOWN"))

	assert.Equal(t, p.RiskLow, p.StatusColor("completed"))
	assert.Equal(t, p.RiskMed, p.StatusColor("running"))
	assert.Equal(t, p.RiskHigh, p.StatusColor("failed"))
	assert.Equal(t, p.Muted, p.StatusColor("pending"))
}

func TestNewStylesRenders(t *testing.T) {
	s := NewStyles(Lookup("midnight"))
	assert.Equal(t, "midnight", s.Palette.Name)
	assert.Contains(t, s.Title.Render("SOKO"), "SOKO")
	assert.Contains(t, s.Risk("HIGH").Render("HIGH"), "HIGH")
}

func TestNewStylesForPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	s := NewStylesFor(lipgloss.NewRenderer(&buf), Lookup("dark"))
	// A buffer is not a terminal, so no escape sequences are emitted.
	assert.Equal(t, "HIGH", s.Risk("HIGH").Render("HIGH"))
	assert.Equal(t, "done", s.Status("completed").Render("done"))
	assert.NotContains(t, s.Title.Render("SOKO"), "\x1b[")
}

func TestStore(t *testing.T) {
	t.Run("missing file falls back", func(t *testing.T) {
		store, err := NewStore(filepath.Join(t.TempDir(), "state.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "dark", store.Theme(""))
		assert.Equal(t, "light", store.Theme("light"))
	})

	t.Run("set then restore", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "state.yaml")
		store, err := NewStore(path)
		require.NoError(t, err)

		require.NoError(t, store.SetTheme("Midnight"))
		assert.Equal(t, "midnight", store.Theme(Default))

		reopened, err := NewStore(path)
		require.NoError(t, err)
		assert.Equal(t, "midnight", reopened.Theme(Default))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "soko-theme: midnight")
	})

	t.Run("unknown persisted name falls back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.yaml")
		require.NoError(t, os.WriteFile(path, []byte("soko-theme: neon\nother: kept\n"), 0o644))
		store, err := NewStore(path)
		require.NoError(t, err)
		assert.Equal(t, Default, store.Theme(Default))

		require.NoError(t, store.SetTheme("light"))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "other: kept")
	})

	t.Run("corrupt file is replaced on write", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.yaml")
		require.NoError(t, os.WriteFile(path, []byte("[unclosed"), 0o644))
		store, err := NewStore(path)
		require.NoError(t, err)
		assert.Equal(t, Default, store.Theme(Default))
		require.NoError(t, store.SetTheme("light"))
		assert.Equal(t, "light", store.Theme(Default))
	})

	t.Run("unknown theme is rejected", func(t *testing.T) {
		store, err := NewStore(filepath.Join(t.TempDir(), "state.yaml"))
		require.NoError(t, err)
		assert.Error(t, store.SetTheme("neon"))
	})

	t.Run("home directory is expanded", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		store, err := NewStore("~/.soko/state.yaml")
		require.NoError(t, err)
		assert.NotContains(t, store.Path(), "~")
	})
}
