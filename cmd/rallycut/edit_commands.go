package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rallycut/internal/session"
)

func parseRallyID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid rally id %q", arg)
	}
	return id, nil
}

func newAdjustCommand(cctx *commandContext) *cobra.Command {
	var startFrame, endFrame int

	cmd := &cobra.Command{
		Use:   "adjust <source> <rally-id>",
		Short: "Move a rally's frame bounds and rescore",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRallyID(args[1])
			if err != nil {
				return err
			}
			return cctx.withSession(cmd, func(ctx context.Context, sess *session.Session) error {
				if err := sess.Restore(ctx, args[0]); err != nil {
					return err
				}
				adjusted, err := sess.AdjustRally(ctx, id, startFrame, endFrame)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rally %d now spans %s - %s (%d hits)\n",
					adjusted.ID, formatClock(adjusted.StartTime()), formatClock(adjusted.EndTime()), adjusted.HitCount)
				fmt.Fprintln(cmd.OutOrStdout(), renderRallyTable(sess.ScoredRallies()))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&startFrame, "start-frame", 0, "New start frame")
	cmd.Flags().IntVar(&endFrame, "end-frame", 0, "New end frame")
	_ = cmd.MarkFlagRequired("start-frame")
	_ = cmd.MarkFlagRequired("end-frame")
	return cmd
}

func newSplitCommand(cctx *commandContext) *cobra.Command {
	var at float64

	cmd := &cobra.Command{
		Use:   "split <source> <rally-id>",
		Short: "Split a rally at a timestamp",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRallyID(args[1])
			if err != nil {
				return err
			}
			return cctx.withSession(cmd, func(ctx context.Context, sess *session.Session) error {
				if err := sess.Restore(ctx, args[0]); err != nil {
					return err
				}
				parts, err := sess.SplitRally(ctx, id, at)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Split rally %d into %d and %d hit segments\n",
					id, parts[0].HitCount, parts[1].HitCount)
				fmt.Fprintln(cmd.OutOrStdout(), renderRallyTable(sess.ScoredRallies()))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&at, "at", 0, "Split point in seconds")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newMergeCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <source> <rally-id> <rally-id>",
		Short: "Merge two rallies into one",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			idA, err := parseRallyID(args[1])
			if err != nil {
				return err
			}
			idB, err := parseRallyID(args[2])
			if err != nil {
				return err
			}
			return cctx.withSession(cmd, func(ctx context.Context, sess *session.Session) error {
				if err := sess.Restore(ctx, args[0]); err != nil {
					return err
				}
				merged, err := sess.MergeRallies(ctx, idA, idB)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Merged into a %d-hit rally spanning %s - %s\n",
					merged.HitCount, formatClock(merged.StartTime()), formatClock(merged.EndTime()))
				fmt.Fprintln(cmd.OutOrStdout(), renderRallyTable(sess.ScoredRallies()))
				return nil
			})
		},
	}
}
