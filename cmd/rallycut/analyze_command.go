package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rallycut/internal/session"
)

func newAnalyzeCommand(cctx *commandContext) *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "analyze <source>",
		Short: "Detect and score rallies in a match video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withSession(cmd, func(ctx context.Context, sess *session.Session) error {
				job, err := sess.Analyze(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Analysis started (job %s)\n", job.ID)
				if err := job.Wait(); err != nil {
					return err
				}

				if seedPath != "" {
					text, err := os.ReadFile(seedPath)
					if err != nil {
						return fmt.Errorf("read description file: %w", err)
					}
					marked := sess.SeedHighlights(ctx, string(text))
					fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d highlight flags from description\n", marked)
				}

				scored := sess.ScoredRallies()
				if len(scored) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No rallies detected.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRallyTable(scored))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&seedPath, "seed-description", "", "Description file with an existing [Highlights] block")
	return cmd
}

func newRalliesCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rallies <source>",
		Short: "Show the scored rallies of an analyzed source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withSession(cmd, func(ctx context.Context, sess *session.Session) error {
				if err := sess.Restore(ctx, args[0]); err != nil {
					return err
				}
				scored := sess.ScoredRallies()
				if len(scored) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No rallies detected.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRallyTable(scored))
				total := 0.0
				selected := 0
				for _, sc := range scored {
					if sc.Selected {
						selected++
						total += sc.Rally.Duration()
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d rallies, %d selected (%s of highlights)\n",
					len(scored), selected, formatClock(total))
				return nil
			})
		},
	}
}

func formatClock(seconds float64) string {
	total := int(seconds)
	if total < 0 {
		total = 0
	}
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, (total%3600)/60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func decisionLabel(confirmed, highlight *bool, rating *int) string {
	var parts []string
	if confirmed != nil && *confirmed {
		if highlight != nil && *highlight {
			parts = append(parts, "keep")
		} else {
			parts = append(parts, "reject")
		}
	}
	if rating != nil {
		parts = append(parts, fmt.Sprintf("%d/5", *rating))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}
