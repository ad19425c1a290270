// File: cmd/graph.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/graph"
	"github.com/xkilldash9x/soko-cli/internal/observability"
	"github.com/xkilldash9x/soko-cli/internal/theme"
)

// newGraphCmd creates the `graph` command.
func newGraphCmd() *cobra.Command {
	var outputPath string
	var format string

	graphCmd := &cobra.Command{
		Use:   "graph <id>",
		Short: "Export the relationship graph of an investigation",
		Long: `Exports the network map of an investigation.

  html  a standalone page with the interactive graph, its controls and legend
  dot   Graphviz source
  json  the node and edge datasets`,
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
			return runGraph(ctx, logger, newBackendClient(cfg, logger), args[0], format, outputPath, palette, cmd.OutOrStdout())
		},
	}

	graphCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	graphCmd.Flags().StringVarP(&format, "format", "f", graph.FormatHTML, "export format ("+strings.Join(graph.Formats, ", ")+")")

	return graphCmd
}

// runGraph loads one case and exports its graph.
func runGraph(
	ctx context.Context,
	logger *zap.Logger,
	fetcher casefile.Fetcher,
	rawID, format, outputPath string,
	palette theme.Palette,
	out io.Writer,
) (err error) {
	format = strings.ToLower(format)
	if !slices.Contains(graph.Formats, format) {
		return fmt.Errorf("unsupported graph format: %s (expected %s)", format, strings.Join(graph.Formats, ", "))
	}

	page, err := casefile.NewLoader(fetcher, nil, logger).Open(ctx, rawID)
	if err != nil {
		return err
	}
	if page.State == casefile.StateError {
		return fmt.Errorf("failed to load investigation #%d: %s", page.ID, page.Err)
	}

	renderer := graph.NewRenderer(logger)
	defer renderer.Close()
	view := renderer.Render(page.Detail.Network, palette)
	if view.Visualization == nil {
		return errors.New(view.Placeholder)
	}

	w := out
	toFile := outputPath != "" && outputPath != "stdout"
	if toFile {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close output file %s: %w", outputPath, cerr)
			}
		}()
		w = f
	}

	title := fmt.Sprintf("Investigation #%d: @%s", page.ID, page.Detail.Investigation.Username)
	if err := graph.Write(w, format, title, view.Visualization); err != nil {
		return err
	}
	if toFile {
		logger.Info("Graph exported", zap.String("path", outputPath), zap.String("format", format))
		fmt.Fprintf(out, "Graph for investigation #%d written to %s\n", page.ID, outputPath)
	}
	return nil
}
