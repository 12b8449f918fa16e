package main

import (
	"fmt"

	"genomereport/internal/app"
	"genomereport/internal/report"

	"github.com/spf13/cobra"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		req      report.Request
		genomeID string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Assemble an HTML (and optionally PDF) report from a genome object",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "input", "output"); err != nil {
				return err
			}
			return ctx.withApp(func(a *app.App) error {
				res, err := a.Report(cmd.Context(), genomeID, req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "wrote %s (%d citations)\n", res.HTMLPath, len(res.Citations))
				if res.PDFPath != "" {
					fmt.Fprintf(out, "wrote %s\n", res.PDFPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&req.InputPath, "input", "i", "", "Genome object JSON")
	cmd.Flags().StringVarP(&req.OutputHTML, "output", "o", "", "Output HTML path")
	cmd.Flags().StringVarP(&req.CircularSVGPath, "circular", "c", "", "Circular view SVG to embed")
	cmd.Flags().StringVarP(&req.SubsystemSVGPath, "subsystem", "s", "", "Subsystem chart SVG to embed instead of drawing one")
	cmd.Flags().StringVar(&req.ColorSchemePath, "colors", "", "Subsystem color scheme JSON")
	cmd.Flags().BoolVar(&req.IncludePDF, "pdf", false, "Also render a PDF")
	cmd.Flags().StringVar(&req.OutputPDF, "pdf-output", "", "PDF path (default: output with .pdf)")
	cmd.Flags().StringVarP(&genomeID, "genome", "g", "", "Genome ID recorded in the run history")
	return cmd
}

func newChartCommand(ctx *commandContext) *cobra.Command {
	var (
		req    app.ChartRequest
		values bool
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Draw the subsystem superclass pie chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "input", "output"); err != nil {
				return err
			}
			if cmd.Flags().Changed("values") {
				req.IncludeValues = &values
			}
			return ctx.withApp(func(a *app.App) error {
				res, err := a.Chart(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d slices)\n", res.SVGPath, len(res.Slices))
				if res.HTMLPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", res.HTMLPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&req.InputPath, "input", "i", "", "Genome object JSON")
	cmd.Flags().StringVarP(&req.OutputSVG, "output", "o", "", "Output SVG path")
	cmd.Flags().StringVar(&req.ColorSchemePath, "colors", "", "Subsystem color scheme JSON")
	cmd.Flags().BoolVar(&values, "values", false, "Show counts in legend labels (overrides chart.include_values)")
	cmd.Flags().StringVar(&req.OutputHTML, "html", "", "Also write an interactive HTML chart")
	return cmd
}
