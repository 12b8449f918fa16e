package app

import (
	"fmt"
	"sort"
	"strings"

	"genomereport/internal/config"
	"genomereport/internal/report"
	"genomereport/internal/xref"
)

type StartupSummary struct {
	Report     ReportSummary
	Server     ServerSummary
	References ReferencesSummary
	Authoring  report.Authoring
}

type ReportSummary struct {
	Dir           string
	Template      string
	ColorScheme   string
	IncludePDF    bool
	LinkCitations bool
	PDFFormat     string
	PDFMargin     string
}

type ServerSummary struct {
	Addr          string
	LedgerEnabled bool
	LedgerPath    string
}

type ReferencesSummary struct {
	Path    string
	Entries int
	Methods []string
}

func newStartupSummary(cfg *config.Config, catalog *xref.Catalog, authoring report.Authoring) *StartupSummary {
	s := &StartupSummary{
		Report: ReportSummary{
			Dir:           cfg.Report.Dir,
			Template:      orBuiltin(cfg.Report.TemplatePath),
			ColorScheme:   orBuiltin(cfg.Report.ColorSchemePath),
			IncludePDF:    cfg.Report.IncludePDF,
			LinkCitations: cfg.Report.LinkCitations,
			PDFFormat:     cfg.PDF.Format,
			PDFMargin:     cfg.PDF.Margin,
		},
		Server: ServerSummary{
			Addr:          cfg.HTTP.Addr,
			LedgerEnabled: cfg.Ledger.Enabled,
			LedgerPath:    cfg.Ledger.Path,
		},
		References: ReferencesSummary{
			Path:    cfg.Report.ReferencesPath,
			Methods: xref.NewMethods(cfg.References.AssemblyMethods).Names(),
		},
		Authoring: authoring,
	}
	if catalog != nil {
		s.References.Entries = len(catalog.Entries())
	}
	sort.Strings(s.References.Methods)
	return s
}

func (s *StartupSummary) Print() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("%*s\n", 40+len("GENOME REPORT SERVER")/2, "GENOME REPORT SERVER")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Println("[REPORTS]")
	fmt.Printf("  Directory:      %s\n", s.Report.Dir)
	fmt.Printf("  Template:       %s\n", s.Report.Template)
	fmt.Printf("  Color scheme:   %s\n", s.Report.ColorScheme)
	fmt.Printf("  PDF:            %t (%s, margin %s)\n", s.Report.IncludePDF, s.Report.PDFFormat, s.Report.PDFMargin)
	fmt.Printf("  Linked cites:   %t\n", s.Report.LinkCitations)
	fmt.Println()

	fmt.Println("[AUTHORING]")
	fmt.Printf("  Title:          %s\n", s.Authoring.Title)
	fmt.Printf("  Organization:   %s\n", orDash(s.Authoring.Organization))
	fmt.Printf("  Author:         %s\n", orDash(s.Authoring.Author.Name))
	fmt.Println()

	fmt.Println("[REFERENCES]")
	fmt.Printf("  File:           %s\n", orDash(s.References.Path))
	fmt.Printf("  Entries:        %d\n", s.References.Entries)
	fmt.Printf("  Assembly methods: %s\n", formatList(s.References.Methods))
	fmt.Println()

	fmt.Println("[SERVER]")
	fmt.Printf("  Listen:         %s\n", s.Server.Addr)
	if s.Server.LedgerEnabled {
		fmt.Printf("  Run ledger:     %s\n", s.Server.LedgerPath)
	} else {
		fmt.Println("  Run ledger:     (disabled)")
	}
	fmt.Println(strings.Repeat("=", 80))
}

func orBuiltin(path string) string {
	if strings.TrimSpace(path) == "" {
		return "(built-in)"
	}
	return path
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
