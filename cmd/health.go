// File: cmd/health.go
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/health"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/render"
)

// newHealthCmd creates the `health` command.
func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			client := newBackendClient(cfg, logger)
			return runHealth(ctx, logger, client, client.BaseURL(), cmd.OutOrStdout())
		},
	}
}

// runHealth performs a single liveness probe.
func runHealth(ctx context.Context, logger *zap.Logger, checker health.Checker, baseURL string, out io.Writer) error {
	if err := checker.Health(ctx); err != nil {
		logger.Debug("Health check failed", zap.String("backend", baseURL), zap.Error(err))
		fmt.Fprintf(out, "%s: %s\n", render.OfflineBanner, baseURL)
		return fmt.Errorf("backend %s is unreachable: %w", baseURL, err)
	}
	fmt.Fprintf(out, "Backend online: %s\n", baseURL)
	return nil
}
