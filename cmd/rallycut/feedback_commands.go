package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rallycut/internal/preference"
	"rallycut/internal/session"
)

func newFeedbackCommand(cctx *commandContext) *cobra.Command {
	feedbackCmd := &cobra.Command{
		Use:   "feedback",
		Short: "Rate rallies to teach the scorer your taste",
	}
	feedbackCmd.AddCommand(newDecisionCommand(cctx, "keep", preference.DecisionKeep,
		"Keep a rally in the highlight set"))
	feedbackCmd.AddCommand(newDecisionCommand(cctx, "reject", preference.DecisionReject,
		"Drop a rally from the highlight set"))
	return feedbackCmd
}

func newDecisionCommand(cctx *commandContext, verb string, decision preference.Decision, short string) *cobra.Command {
	var rating int

	cmd := &cobra.Command{
		Use:   verb + " <source> <rally-id>",
		Short: short,
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
				if err := sess.SubmitFeedback(ctx, id, rating, decision); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for rally %d\n", decision, id)
				fmt.Fprintln(cmd.OutOrStdout(), renderWeights(sess.Weights()))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&rating, "rating", 0, "Optional 1-5 star rating grading the decision")
	return cmd
}

func newPreviewCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <source> <rally-id>",
		Short: "Produce a quick low-quality clip of one rally",
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
				path, err := sess.PreviewRally(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			})
		},
	}
}
