package main

import (
	"fmt"

	"genomereport/internal/app"

	"github.com/spf13/cobra"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var genomeID, token string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a genome's metadata and summaries into its workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "genome"); err != nil {
				return err
			}
			return ctx.withApp(func(a *app.App) error {
				res, err := a.Fetch(cmd.Context(), genomeID, token)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", res.Paths.Data)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&genomeID, "genome", "g", "", "Genome ID")
	cmd.Flags().StringVarP(&token, "token", "t", "", "Data API token (overrides api.token)")
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var req app.RunRequest
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch a genome, draw its charts and assemble its report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFlags(cmd, "genome"); err != nil {
				return err
			}
			return ctx.withApp(func(a *app.App) error {
				res, err := a.Run(cmd.Context(), req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "genome %s → %s\n", req.GenomeID, res.Paths.Dir)
				fmt.Fprintf(out, "  data:   %s\n", res.Paths.Data)
				fmt.Fprintf(out, "  chart:  %s\n", res.Chart.SVGPath)
				fmt.Fprintf(out, "  report: %s\n", res.Report.HTMLPath)
				if res.Report.PDFPath != "" {
					fmt.Fprintf(out, "  pdf:    %s\n", res.Report.PDFPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&req.GenomeID, "genome", "g", "", "Genome ID")
	cmd.Flags().StringVarP(&req.Token, "token", "t", "", "Data API token (overrides api.token)")
	cmd.Flags().StringVar(&req.ColorSchemePath, "colors", "", "Subsystem color scheme JSON")
	cmd.Flags().BoolVar(&req.IncludePDF, "pdf", false, "Also render a PDF")
	return cmd
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports and the run history over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return ctx.withApp(func(a *app.App) error {
				return a.Serve(cmd.Context())
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides http.addr)")
	return cmd
}
