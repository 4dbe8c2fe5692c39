package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"rallycut/internal/scoring"
	"rallycut/internal/session"
)

func newWeightsCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "weights",
		Short: "Show the learned scoring weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withSession(cmd, func(ctx context.Context, sess *session.Session) error {
				fmt.Fprintln(cmd.OutOrStdout(), renderWeights(sess.Weights()))
				return nil
			})
		},
	}
}

func renderWeights(weights scoring.Weights) string {
	defaults := scoring.Default()
	rows := make([][]string, 0, len(scoring.Features()))
	for _, feature := range scoring.Features() {
		rows = append(rows, []string{
			string(feature),
			fmt.Sprintf("%.3f", weights.Get(feature)),
			fmt.Sprintf("%.3f", defaults.Get(feature)),
		})
	}
	return renderTable([]tableColumn{
		{title: "FEATURE"},
		{title: "WEIGHT", numeric: true},
		{title: "DEFAULT", numeric: true},
	}, rows)
}
