package main

import (
	"fmt"
	"time"

	"genomereport/internal/app"
	"genomereport/internal/ledger"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var filter ledger.Filter
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded fetch, chart and report runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app.App) error {
				runs, err := a.History(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs, time.Now()))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter.GenomeID, "genome", "g", "", "Only runs for this genome")
	cmd.Flags().IntVarP(&filter.Limit, "limit", "n", 20, "Maximum rows")
	return cmd
}

func renderRuns(runs []ledger.Run, now time.Time) string {
	headers := []string{"Started", "Genome", "Kind", "Status", "Duration", "Output"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		duration := "-"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		output := r.HTMLPath
		if output == "" {
			output = r.DataPath
		}
		if r.Error != "" {
			output = "error: " + r.Error
		}
		genome := r.GenomeID
		if genome == "" {
			genome = "-"
		}
		rows = append(rows, []string{
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			genome,
			string(r.Kind),
			string(r.Status),
			duration,
			output,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
}
