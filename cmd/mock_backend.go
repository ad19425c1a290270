// File: cmd/mock_backend.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/config"
	"github.com/xkilldash9x/soko-cli/internal/mockbackend"
	"github.com/xkilldash9x/soko-cli/internal/observability"
)

// newMockBackendCmd creates the `mock-backend` command.
func newMockBackendCmd() *cobra.Command {
	var addr, dsn string

	mockCmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Run a local stand-in for the investigation backend",
		Long: `Serves the investigation API on mock.addr with deterministic fixture data
instead of live platform lookups, persisted in SQLite at mock.dsn
(":memory:" keeps nothing). Prometheus metrics are served on /metrics.

Point the client at it with --backend http://<addr>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Mock.Addr = addr
			}
			if cmd.Flags().Changed("dsn") {
				cfg.Mock.DSN = dsn
			}
			return runMockBackend(ctx, observability.GetLogger(), cfg.Mock, cmd.OutOrStdout(), nil)
		},
	}

	mockCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from mock.addr)")
	mockCmd.Flags().StringVar(&dsn, "dsn", "", "SQLite database path (default from mock.dsn)")

	return mockCmd
}

// runMockBackend serves until ctx is cancelled. ready, when set, receives the
// bound address.
func runMockBackend(ctx context.Context, logger *zap.Logger, cfg config.MockConfig, out io.Writer, ready func(net.Addr)) error {
	store, err := mockbackend.OpenStore(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open mock store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close mock store", zap.Error(err))
		}
	}()

	server := mockbackend.NewServer(store, mockbackend.WithLogger(logger))
	return server.ListenAndServe(ctx, cfg.Addr, func(a net.Addr) {
		fmt.Fprintf(out, "Mock backend listening on http://%s (store: %s)\n", a, cfg.DSN)
		if ready != nil {
			ready(a)
		}
	})
}
