// File: cmd/delete.go
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/soko-cli/internal/casefile"
	"github.com/xkilldash9x/soko-cli/internal/dashboard"
	"github.com/xkilldash9x/soko-cli/internal/observability"
)

// newDeleteCmd creates the `delete` command.
func newDeleteCmd() *cobra.Command {
	var assumeYes bool

	deleteCmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an investigation and its findings",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			id, err := casefile.ParseID(args[0])
			if err != nil {
				return err
			}

			var confirm dashboard.Confirmer
			if !assumeYes && !cfg.UI.AssumeYes {
				confirm = promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return runDelete(ctx, logger, newBackendClient(cfg, logger), id, confirm, cmd.OutOrStdout())
		},
	}

	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")

	return deleteCmd
}

// runDelete removes one investigation. A nil confirm deletes without asking.
func runDelete(ctx context.Context, logger *zap.Logger, backend dashboard.Backend, id int64, confirm dashboard.Confirmer, out io.Writer) error {
	view := dashboard.New(backend, nil, dashboard.WithLogger(logger))
	deleted, err := view.Delete(ctx, id, confirm)
	if err != nil {
		return fmt.Errorf("failed to delete investigation #%d: %w", id, err)
	}
	if !deleted {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}
	fmt.Fprintf(out, "Deleted investigation #%d.\n", id)
	return nil
}
