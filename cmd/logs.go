// File: cmd/logs.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hpcloud/tail"
	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/observability"
)

// logsOptions holds the flags of `logs`.
type logsOptions struct {
	follow bool
	raw    bool
	level  string
}

// newLogsCmd creates the `logs` command.
func newLogsCmd() *cobra.Command {
	var opts logsOptions

	logsCmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the soko log file",
		Long: `Prints the JSON log file configured by logger.log_file as readable lines.
With --follow it keeps printing new entries, across rotations, until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if cfg.Logger.LogFile == "" {
				return errors.New("no log file configured (set logger.log_file or SOKO_LOGGER_LOG_FILE)")
			}
			return runLogs(ctx, observability.GetLogger(), cfg.Logger.LogFile, opts, cmd.OutOrStdout())
		},
	}

	logsCmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "keep printing new entries")
	logsCmd.Flags().BoolVar(&opts.raw, "raw", false, "print the JSON lines unchanged")
	logsCmd.Flags().StringVar(&opts.level, "level", "", "only print entries at this level (debug, info, warn, error)")

	return logsCmd
}

// runLogs streams path to out until EOF, or until ctx ends when following.
func runLogs(ctx context.Context, logger *zap.Logger, path string, opts logsOptions, out io.Writer) error {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    opts.follow,
		ReOpen:    opts.follow,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	defer t.Cleanup()
	defer func() {
		if err := t.Stop(); err != nil {
			logger.Debug("Log tail stopped with error", zap.Error(err))
		}
	}()

	level := strings.ToUpper(strings.TrimSpace(opts.level))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				return nil
			}
			if line.Err != nil {
				return fmt.Errorf("failed to read log file %s: %w", path, line.Err)
			}
			if text, show := formatLogLine(line.Text, level, opts.raw); show {
				fmt.Fprintln(out, text)
			}
		}
	}
}

// logEntry holds the fields the JSON file encoder writes for every entry.
type logEntry struct {
	Time    string `json:"ts"`
	Level   string `json:"level"`
	Logger  string `json:"logger"`
	Message string `json:"msg"`
}

// formatLogLine turns one JSON entry into "time LEVEL logger: message fields".
// Lines that are not JSON are passed through.
func formatLogLine(raw, level string, keepRaw bool) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}

	var entry logEntry
	var fields map[string]any
	if err := json.UnmarshalFromString(raw, &entry); err != nil {
		return raw, level == ""
	}
	if level != "" && !strings.EqualFold(entry.Level, level) {
		return "", false
	}
	if keepRaw {
		return raw, true
	}
	if err := json.UnmarshalFromString(raw, &fields); err != nil {
		return raw, true
	}
	for _, k := range []string{"ts", "level", "logger", "msg"} {
		delete(fields, k)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s", entry.Time, entry.Level)
	if entry.Logger != "" {
		b.WriteString(" " + entry.Logger + ":")
	}
	b.WriteString(" " + entry.Message)
	if len(fields) > 0 {
		extra, err := json.ConfigCompatibleWithStandardLibrary.MarshalToString(fields)
		if err == nil {
			b.WriteString(" " + extra)
		}
	}
	return b.String(), true
}
