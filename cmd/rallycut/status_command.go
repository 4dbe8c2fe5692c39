package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rallycut/internal/feedback"
	"rallycut/internal/preflight"
)

func newStatusCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check tool availability, directories, and stored state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				status := "ok"
				if !result.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{result.Name, status, result.Detail})
			}
			fmt.Fprintln(out, renderTable([]tableColumn{
				{title: "CHECK"},
				{title: "STATUS"},
				{title: "DETAIL"},
			}, rows))

			store, err := feedback.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.CollectStats(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Store: %d analyses, %d rally sets, %d feedback records (%s)\n",
				stats.Analyses, stats.RallySets, stats.FeedbackCount, store.Path())

			if !preflight.AllPassed(results) {
				return fmt.Errorf("one or more preflight checks failed")
			}
			return nil
		},
	}
}
