// File: cmd/investigate.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/dashboard"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// newInvestigateCmd creates the `investigate` command.
func newInvestigateCmd() *cobra.Command {
	var quiet bool

	investigateCmd := &cobra.Command{
		Use:     "investigate <username>",
		Aliases: []string{"scan"},
		Short:   "Start a new investigation and show its report",
		Long: `Creates an investigation for the username, runs the platform scan (this
blocks for the whole scan, typically 30 to 60 seconds) and then shows the
resulting report.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			palette, err := resolvePalette(cmd, cfg)
			if err != nil {
				return err
			}
			progress := cmd.ErrOrStderr()
			if quiet {
				progress = io.Discard
			}
			return runInvestigate(ctx, logger, newBackendClient(cfg, logger), strings.Join(args, " "), palette, cmd.OutOrStdout(), progress)
		},
	}

	investigateCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress while the scan runs")

	return investigateCmd
}

// runInvestigate creates and runs an investigation, then prints its report.
// Progress lines go to progress so stdout only carries the report.
func runInvestigate(
	ctx context.Context,
	logger *zap.Logger,
	backend dashboard.Backend,
	username string,
	palette theme.Palette,
	out, progress io.Writer,
) error {
	view := dashboard.New(backend, nil,
		dashboard.WithLogger(logger),
		dashboard.WithStatusHook(func(status string) {
			if status != "" {
				fmt.Fprintln(progress, status)
			}
		}),
	)
	view.SetInput(username)

	id, err := view.Submit(ctx)
	if err != nil {
		if errors.Is(err, dashboard.ErrUsernameTooShort) {
			return errors.New(dashboard.UsernameTooShortMessage)
		}
		if id != 0 {
			return fmt.Errorf("investigation #%d failed: %w", id, err)
		}
		return err
	}
	return runShow(ctx, logger, backend, strconv.FormatInt(id, 10), "", "", palette, out)
}
