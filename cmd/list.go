// File: cmd/list.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/config"
	"github.com/xkilldash9x/soko-cli/internal/dashboard"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/render"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// listOptions holds the flags of `list`.
type listOptions struct {
	filter dashboard.Filter
	status string
	enrich bool
}

// newListCmd creates the `list` command.
func newListCmd() *cobra.Command {
	var opts listOptions

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "dashboard"},
		Short:   "Show the investigation dashboard",
		Long: `Shows the headline counts and every investigation, newest first.

--location and --organization match the GitHub profile recorded in each
completed report, so they fetch those reports before filtering.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			status, err := parseStatus(opts.status)
			if err != nil {
				return err
			}
			opts.filter.Status = status

			palette, err := resolvePalette(cmd, cfg)
			if err != nil {
				return err
			}
			return runList(ctx, logger, cfg, newBackendClient(cfg, logger), opts, palette, cmd.OutOrStdout())
		},
	}

	listCmd.Flags().StringVar(&opts.status, "status", "", "only show investigations in this status (pending, running, completed, failed)")
	listCmd.Flags().StringVarP(&opts.filter.Username, "username", "u", "", "only show usernames containing this text")
	listCmd.Flags().StringVar(&opts.filter.Location, "location", "", "only show reports whose GitHub location contains this text")
	listCmd.Flags().StringVar(&opts.filter.Organization, "organization", "", "only show reports whose GitHub organization contains this text")
	listCmd.Flags().BoolVar(&opts.enrich, "enrich", false, "fetch completed reports and list the known locations and organizations")

	return listCmd
}

// listBackend is what `list` needs from the API client.
type listBackend interface {
	dashboard.Backend
	Health(ctx context.Context) error
}

// runList loads and renders the dashboard.
func runList(
	ctx context.Context,
	logger *zap.Logger,
	cfg *config.Config,
	backend listBackend,
	opts listOptions,
	palette theme.Palette,
	out io.Writer,
) error {
	online := backend.Health(ctx) == nil

	view := dashboard.New(backend, nil,
		dashboard.WithLogger(logger),
		dashboard.WithEnrichConcurrency(cfg.Dashboard.EnrichConcurrency),
	)
	view.Load(ctx)

	enrich := opts.enrich || opts.filter.Location != "" || opts.filter.Organization != ""
	if enrich {
		if err := view.Enrich(ctx); err != nil {
			return fmt.Errorf("failed to fetch reports for filtering: %w", err)
		}
	}
	view.SetFilter(opts.filter)

	styles := stylesFor(out, palette)
	fmt.Fprint(out, render.Dashboard(styles, view, online))

	if opts.enrich {
		locations, organizations := view.FilterOptions()
		fmt.Fprintln(out)
		fmt.Fprintln(out, styles.Dim.Render("Locations:     "+joinOrDash(locations)))
		fmt.Fprintln(out, styles.Dim.Render("Organizations: "+joinOrDash(organizations)))
	}
	return nil
}

// parseStatus validates a --status value. Empty means any status.
func parseStatus(raw string) (api.Status, error) {
	s := api.Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case "", api.StatusPending, api.StatusRunning, api.StatusCompleted, api.StatusFailed:
		return s, nil
	default:
		return "", fmt.Errorf("unknown status %q (expected pending, running, completed or failed)", raw)
	}
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
