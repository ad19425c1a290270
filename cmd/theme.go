// File: cmd/theme.go
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/config"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/shell"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// newThemeCmd creates the `theme` command and its subcommands.
func newThemeCmd() *cobra.Command {
	themeCmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the colour theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runThemeShow(cfg, observability.GetLogger(), cmd.OutOrStdout())
		},
	}

	setCmd := &cobra.Command{
		Use:       "set <name>",
		Short:     "Select and remember a theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: theme.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			return runThemeSet(cfg, observability.GetLogger(), args[0], cmd.OutOrStdout())
		},
	}

	themeCmd.AddCommand(setCmd)
	return themeCmd
}

// newThemeApp restores the persisted selection the same way the shell does.
func newThemeApp(cfg *config.Config, logger *zap.Logger) (*shell.App, *theme.Store, error) {
	store, err := theme.NewStore(cfg.UI.StateFile)
	if err != nil {
		return nil, nil, err
	}
	return shell.New(store, nil, cfg.UI.DefaultTheme, logger), store, nil
}

// runThemeShow lists the themes and marks the active one.
func runThemeShow(cfg *config.Config, logger *zap.Logger, out io.Writer) error {
	app, store, err := newThemeApp(cfg, logger)
	if err != nil {
		return err
	}
	active := app.Theme()
	for _, name := range theme.Names() {
		marker := "  "
		if name == active {
			marker = "* "
		}
		p := theme.Lookup(name)
		swatch := stylesFor(out, p).Accent.Render("■")
		fmt.Fprintf(out, "%s%s %s\n", marker, swatch, name)
	}
	fmt.Fprintf(out, "\nState file: %s\n", store.Path())
	return nil
}

// runThemeSet persists a new selection.
func runThemeSet(cfg *config.Config, logger *zap.Logger, name string, out io.Writer) error {
	app, _, err := newThemeApp(cfg, logger)
	if err != nil {
		return err
	}
	if err := app.SetTheme(name); err != nil {
		return err
	}
	logger.Info("Theme changed", zap.String("theme", app.Theme()))
	fmt.Fprintf(out, "Theme set to %s.\n", app.Theme())
	return nil
}
