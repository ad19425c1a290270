// File: cmd/watch.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/soko-cli/internal/api"
	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/config"
	"github.com/xkilldash9x/soko-cli/internal/health"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/render"
)

// newWatchCmd creates the `watch` command.
func newWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch [id]",
		Short: "Follow an investigation until it finishes, or follow backend health",
		Long: `With an id, polls the investigation every watch.poll_interval and prints
each status change until it is completed or failed. Watching never changes
the investigation.

Without an id, checks the backend every backend.health_interval and prints
every online/offline transition until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			client := newBackendClient(cfg, logger)
			if len(args) == 0 {
				return runWatchHealth(ctx, logger, cfg, client, cmd.OutOrStdout())
			}
			id, err := casefile.ParseID(args[0])
			if err != nil {
				return err
			}
			return runWatchCase(ctx, logger, cfg, client, id, cmd.OutOrStdout())
		},
	}
	return watchCmd
}

// runWatchCase polls one investigation until its status is terminal.
// Transient fetch errors are logged and retried; a 404 ends the watch.
func runWatchCase(ctx context.Context, logger *zap.Logger, cfg *config.Config, fetcher casefile.Fetcher, id int64, out io.Writer) error {
	limiter := rate.NewLimiter(rate.Every(cfg.Watch.PollInterval), 1)
	logger = logger.With(zap.Int64("investigation_id", id))

	var last api.Status
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		detail, err := fetcher.GetInvestigation(ctx, id)
		if err != nil {
			if api.IsNotFound(err) {
				return fmt.Errorf("investigation #%d: %w", id, err)
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			logger.Warn("Poll failed, retrying", zap.Error(err))
			continue
		}

		status := detail.Investigation.Status
		if status != last {
			fmt.Fprintf(out, "%s  #%d @%s  %s\n",
				time.Now().Format(time.TimeOnly), id, detail.Investigation.Username, strings.ToUpper(string(status)))
			last = status
		}
		if status.Terminal() {
			logger.Debug("Investigation reached a final state", zap.String("status", string(status)))
			return nil
		}
	}
}

// runWatchHealth runs the health monitor and prints transitions until ctx ends.
func runWatchHealth(ctx context.Context, logger *zap.Logger, cfg *config.Config, checker health.Checker, out io.Writer) error {
	var mu sync.Mutex
	monitor := health.NewMonitor(checker, cfg.Backend.HealthInterval,
		health.WithTimeout(cfg.Backend.Timeout),
		health.WithLogger(logger),
		health.OnChange(func(online bool) {
			state := "Backend online"
			if !online {
				state = render.OfflineBanner
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(out, "%s  %s\n", time.Now().Format(time.TimeOnly), state)
		}),
	)
	if err := monitor.Start(ctx); err != nil {
		return err
	}
	defer monitor.Stop()

	<-ctx.Done()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil
	}
	return ctx.Err()
}
