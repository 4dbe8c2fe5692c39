package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rallycut/internal/deps"
	"rallycut/internal/services"
	"rallycut/internal/session"
)

func newCompileCommand(cctx *commandContext) *cobra.Command {
	var ids []int64

	cmd := &cobra.Command{
		Use:   "compile <source>",
		Short: "Assemble the selected rallies into a highlight video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if missing := deps.MissingRequired(deps.CheckBinaries(deps.For(cfg))); len(missing) > 0 {
				return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
			}
			return cctx.withSession(cmd, func(ctx context.Context, sess *session.Session) error {
				if err := sess.Restore(ctx, args[0]); err != nil {
					return err
				}
				job, err := sess.Compile(ctx, ids)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Compilation started (job %s)\n", job.ID)
				if err := job.Wait(); err != nil {
					if services.Retryable(err) {
						return fmt.Errorf("%w (transient tool failure, rerun compile to retry)", err)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", job.Output())
				return nil
			})
		},
	}

	cmd.Flags().Int64SliceVar(&ids, "ids", nil, "Rally ids to include (defaults to the budget selection)")
	return cmd
}

func newExportCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export <source>",
		Short: "Print the selection as a [Highlights] description block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withSession(cmd, func(ctx context.Context, sess *session.Session) error {
				if err := sess.Restore(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), sess.ExportDescription())
				return nil
			})
		},
	}
}
