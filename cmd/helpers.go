// File: cmd/helpers.go
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/config"
	"github.com/xkilldash9x/soko-cli/internal/dashboard"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// newBackendClient builds the API client for the configured backend.
func newBackendClient(cfg *config.Config, logger *zap.Logger) *api.Client {
	return api.NewFromConfig(cfg.Backend, logger)
}

// resolvePalette picks the palette for this invocation: the --theme flag if
// given, otherwise the persisted selection, otherwise ui.default_theme.
func resolvePalette(cmd *cobra.Command, cfg *config.Config) (theme.Palette, error) {
	if f := cmd.Flags().Lookup("theme"); f != nil && f.Changed {
		name := f.Value.String()
		if !theme.Valid(name) {
			return theme.Palette{}, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(theme.Names(), ", "))
		}
		return theme.Lookup(name), nil
	}
	store, err := theme.NewStore(cfg.UI.StateFile)
	if err != nil {
		return theme.Palette{}, err
	}
	return theme.Lookup(store.Theme(cfg.UI.DefaultTheme)), nil
}

// stylesFor builds styles whose colour profile matches w.
func stylesFor(w io.Writer, p theme.Palette) theme.Styles {
	return theme.NewStylesFor(lipgloss.NewRenderer(w), p)
}

// promptConfirm asks on out and reads a y/N answer from in. Anything but an
// explicit yes declines.
func promptConfirm(in io.Reader, out io.Writer) dashboard.Confirmer {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}
