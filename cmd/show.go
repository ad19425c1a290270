// File: cmd/show.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/graph"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/render"
	"github.com/xkilldash9x/soko-cli/internal/reporting"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// newShowCmd creates the `show` command.
func newShowCmd() *cobra.Command {
	var outputPath string
	var format string

	showCmd := &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"open", "case"},
		Short:   "Show the investigation report for one investigation",
		Long: `Renders the full report of an investigation: risk assessment, platform
presence, behaviour analysis, profile details, the network summary and the
recommendations.

With --format or --output the report is exported instead (json, text, html).`,
		Args: cobra.ExactArgs(1),
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
			if outputPath != "" && format == "" {
				format = reporting.FormatText
			}
			return runShow(ctx, logger, newBackendClient(cfg, logger), args[0], format, outputPath, palette, cmd.OutOrStdout())
		},
	}

	showCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to this file instead of the terminal")
	showCmd.Flags().StringVarP(&format, "format", "f", "", "export format (json, text, html); default is the coloured terminal view")

	return showCmd
}

// runShow loads one case and renders or exports it.
func runShow(
	ctx context.Context,
	logger *zap.Logger,
	fetcher casefile.Fetcher,
	rawID, format, outputPath string,
	palette theme.Palette,
	out io.Writer,
) error {
	page, err := casefile.NewLoader(fetcher, nil, logger).Open(ctx, rawID)
	if err != nil {
		return err
	}
	if page.State == casefile.StateError {
		return fmt.Errorf("failed to load investigation #%d: %s", page.ID, page.Err)
	}

	if format == "" {
		return printCase(logger, page, palette, out)
	}
	return exportCase(logger, page, format, outputPath, palette, out)
}

// printCase writes the terminal rendering of page.
func printCase(logger *zap.Logger, page *casefile.Page, palette theme.Palette, out io.Writer) error {
	graphs := graph.NewRenderer(logger)
	defer graphs.Close()

	view := graphs.Render(page.Detail.Network, palette)
	_, err := fmt.Fprint(out, render.Case(stylesFor(out, palette), page, view))
	return err
}

// exportCase writes page through a reporter.
func exportCase(logger *zap.Logger, page *casefile.Page, format, outputPath string, palette theme.Palette, out io.Writer) error {
	reporter, err := reporting.NewTo(out, format, outputPath, palette.Name)
	if err != nil {
		return fmt.Errorf("failed to initialize reporter: %w", err)
	}
	writeErr := reporter.Write(page)
	closeErr := reporter.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if outputPath != "" && outputPath != "stdout" {
		logger.Info("Report written", zap.String("path", outputPath), zap.String("format", format))
		fmt.Fprintf(out, "Report for investigation #%d written to %s\n", page.ID, outputPath)
	}
	return nil
}
