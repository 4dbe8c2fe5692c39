package main

import (
	"fmt"

	"rallycut/internal/scoring"
)

func renderRallyTable(scored []scoring.ScoredRally) string {
	columns := []tableColumn{
		{title: "ID", numeric: true},
		{title: "RANK", numeric: true},
		{title: "START", numeric: true},
		{title: "END", numeric: true},
		{title: "DUR", numeric: true},
		{title: "HITS", numeric: true},
		{title: "SCORE", numeric: true},
		{title: "SELECTED"},
		{title: "DECISION"},
	}

	rows := make([][]string, 0, len(scored))
	for _, sc := range scored {
		r := sc.Rally
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			fmt.Sprintf("%d", sc.Rank),
			formatClock(r.StartTime()),
			formatClock(r.EndTime()),
			fmt.Sprintf("%.1fs", r.Duration()),
			fmt.Sprintf("%d", r.HitCount),
			fmt.Sprintf("%.2f", sc.Score),
			yesNo(sc.Selected),
			decisionLabel(r.Confirmed, r.Highlight, r.UserRating),
		})
	}
	return renderTable(columns, rows)
}
