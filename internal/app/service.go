package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"genomereport/internal/chart"
	"genomereport/internal/dataapi"
	"genomereport/internal/gto"
	"genomereport/internal/ledger"
	"genomereport/internal/logger"
	"genomereport/internal/report"
	"genomereport/internal/workspace"
)

// ChartRequest renders the subsystem pie for one genome object.
type ChartRequest struct {
	InputPath       string
	OutputSVG       string
	OutputHTML      string
	ColorSchemePath string
	// IncludeValues overrides chart.include_values when set.
	IncludeValues   *bool
}

type ChartResult struct {
	GenomeID string
	Slices   []chart.Slice
	SVGPath  string
	HTMLPath string
}

type FetchResult struct {
	Paths    workspace.Paths
	Document *dataapi.Document
}

// RunRequest drives fetch, chart and report for one genome in its workspace.
type RunRequest struct {
	GenomeID        string
	Token           string
	ColorSchemePath string
	IncludePDF      bool
}

type RunResult struct {
	Paths  workspace.Paths
	Chart  ChartResult
	Report report.Result
}

// Report assembles a report from explicit paths. genomeID only labels the
// ledger entry and may be empty.
func (a *App) Report(ctx context.Context, genomeID string, req report.Request) (report.Result, error) {
	done := a.track(ctx, genomeID, ledger.KindReport)
	res, err := a.buildReport(ctx, req)
	done(ledger.Outcome{
		HTMLPath: res.HTMLPath,
		PDFPath:  res.PDFPath,
		DataPath: req.InputPath,
		Details:  reportDetails(res),
		Err:      err,
	})
	return res, err
}

// Chart writes the static SVG pie and, when asked, the interactive page.
func (a *App) Chart(ctx context.Context, req ChartRequest) (ChartResult, error) {
	res, err := a.renderChart(req)
	done := a.track(ctx, res.GenomeID, ledger.KindChart)
	done(ledger.Outcome{
		DataPath: req.InputPath,
		Details:  map[string]any{"slices": len(res.Slices), "svg": res.SVGPath, "html": res.HTMLPath},
		Err:      err,
	})
	return res, err
}

// Fetch downloads one genome into its workspace data file.
func (a *App) Fetch(ctx context.Context, genomeID, token string) (FetchResult, error) {
	lock, err := a.ws.Lock(genomeID)
	if err != nil {
		return FetchResult{}, err
	}
	defer unlock(lock)

	done := a.track(ctx, genomeID, ledger.KindFetch)
	res, err := a.fetch(ctx, genomeID, token)
	done(ledger.Outcome{DataPath: res.Paths.Data, Err: err})
	return res, err
}

// Run fetches a genome, draws its subsystem chart and assembles its report,
// all under the genome's workspace lock.
func (a *App) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	var out RunResult
	if err := a.references(); err != nil {
		return out, err
	}
	lock, err := a.ws.Lock(req.GenomeID)
	if err != nil {
		return out, err
	}
	defer unlock(lock)

	done := a.track(ctx, req.GenomeID, ledger.KindRun)
	out, err = a.run(ctx, req)
	if err == nil {
		logger.InfoBlock(fmt.Sprintf("genome %s done\n  chart:  %s (%d slices)\n  report: %s\n  citations: %d",
			req.GenomeID, out.Chart.SVGPath, len(out.Chart.Slices), out.Report.HTMLPath, len(out.Report.Citations)))
	}
	done(ledger.Outcome{
		HTMLPath: out.Report.HTMLPath,
		PDFPath:  out.Report.PDFPath,
		DataPath: out.Paths.Data,
		Details:  reportDetails(out.Report),
		Err:      err,
	})
	return out, err
}

func (a *App) run(ctx context.Context, req RunRequest) (RunResult, error) {
	var out RunResult
	fetched, err := a.fetch(ctx, req.GenomeID, req.Token)
	if err != nil {
		return out, err
	}
	out.Paths = fetched.Paths
	p := fetched.Paths

	out.Chart, err = a.renderChart(ChartRequest{
		InputPath:       p.Data,
		OutputSVG:       p.SubsystemSVG,
		OutputHTML:      p.SubsystemHTML,
		ColorSchemePath: a.colorScheme(req.ColorSchemePath),
	})
	if err != nil {
		return out, err
	}

	out.Report, err = a.buildReport(ctx, report.Request{
		InputPath:        p.Data,
		OutputHTML:       p.ReportHTML,
		OutputPDF:        p.ReportPDF,
		SubsystemSVGPath: p.SubsystemSVG,
		CircularSVGPath:  existing(p.CircularSVG),
		ColorSchemePath:  a.colorScheme(req.ColorSchemePath),
		IncludePDF:       req.IncludePDF || a.cfg.Report.IncludePDF,
	})
	return out, err
}

// RebuildReport regenerates a genome's report from data already in its
// workspace.
func (a *App) RebuildReport(ctx context.Context, genomeID string, includePDF bool) (report.Result, error) {
	p, err := a.ws.Paths(genomeID)
	if err != nil {
		return report.Result{}, err
	}
	if _, err := os.Stat(p.Data); err != nil {
		return report.Result{}, fmt.Errorf("no data for genome %s: %w", genomeID, err)
	}
	lock, err := a.ws.Lock(genomeID)
	if err != nil {
		return report.Result{}, err
	}
	defer unlock(lock)

	return a.Report(ctx, genomeID, report.Request{
		InputPath:        p.Data,
		OutputHTML:       p.ReportHTML,
		OutputPDF:        p.ReportPDF,
		SubsystemSVGPath: existing(p.SubsystemSVG),
		CircularSVGPath:  existing(p.CircularSVG),
		ColorSchemePath:  a.colorScheme(""),
		IncludePDF:       includePDF,
	})
}

// History lists recorded runs, newest first.
func (a *App) History(ctx context.Context, f ledger.Filter) ([]ledger.Run, error) {
	return a.ledger.List(ctx, f)
}

func (a *App) buildReport(ctx context.Context, req report.Request) (report.Result, error) {
	if err := a.references(); err != nil {
		return report.Result{}, err
	}
	if req.ColorSchemePath == "" {
		req.ColorSchemePath = a.colorScheme("")
	}
	return a.assembler.Build(ctx, req)
}

func (a *App) fetch(ctx context.Context, genomeID, token string) (FetchResult, error) {
	var res FetchResult
	p, err := a.ws.Ensure(genomeID)
	if err != nil {
		return res, err
	}
	res.Paths = p
	logger.Infof("fetching genome %s", genomeID)
	doc, err := a.client.WithToken(token).Aggregate(ctx, genomeID)
	if err != nil {
		return res, err
	}
	data, err := doc.Marshal()
	if err != nil {
		return res, fmt.Errorf("encode genome %s: %w", genomeID, err)
	}
	if err := workspace.WriteFileAtomic(p.Data, data, 0o644); err != nil {
		return res, err
	}
	logger.Infof("wrote %s", p.Data)
	res.Document = doc
	return res, nil
}

func (a *App) renderChart(req ChartRequest) (ChartResult, error) {
	var res ChartResult
	if strings.TrimSpace(req.InputPath) == "" || strings.TrimSpace(req.OutputSVG) == "" {
		return res, errors.New("chart: input and output paths are required")
	}
	g, err := gto.Load(req.InputPath)
	if err != nil {
		return res, err
	}
	res.GenomeID = g.ID()
	palette, err := chart.PaletteOrDefault(req.ColorSchemePath)
	if err != nil {
		return res, fmt.Errorf("load color scheme: %w", err)
	}
	res.Slices = chart.Build(g.Section(gto.SubsystemSummary), chart.BuildOptions{
		Palette:     palette,
		ValueField:  a.cfg.Chart.ValueField,
		DropUnnamed: a.cfg.Chart.DropUnnamed,
	})
	opts := a.chartOpts
	if req.IncludeValues != nil {
		opts.IncludeValues = *req.IncludeValues
	}
	svg, err := chart.RenderSVG(res.Slices, opts)
	if err != nil {
		return res, err
	}
	if err := workspace.WriteFileAtomic(req.OutputSVG, []byte(svg), 0o644); err != nil {
		return res, err
	}
	res.SVGPath = req.OutputSVG
	logger.Infof("wrote subsystem chart %s (%d slices)", req.OutputSVG, len(res.Slices))

	if strings.TrimSpace(req.OutputHTML) == "" {
		return res, nil
	}
	title := "Subsystem superclasses"
	if name := g.Name(); name != "" {
		title += ": " + name
	}
	page, err := chart.RenderInteractive(res.Slices, chart.InteractiveOptions{
		Title:         title,
		IncludeValues: opts.IncludeValues,
	})
	if err != nil {
		return res, err
	}
	if err := workspace.WriteFileAtomic(req.OutputHTML, page, 0o644); err != nil {
		return res, err
	}
	res.HTMLPath = req.OutputHTML
	return res, nil
}

// track opens a ledger entry. Ledger failures are logged and never fail the
// run itself.
func (a *App) track(ctx context.Context, genomeID string, kind ledger.Kind) func(ledger.Outcome) {
	run, err := a.ledger.Start(ctx, genomeID, kind)
	if err != nil {
		logger.Warnf("ledger start %s failed: %v", kind, err)
		return func(ledger.Outcome) {}
	}
	return func(out ledger.Outcome) {
		if out.Err != nil {
			logger.Errorf("%s for %q failed: %v", kind, genomeID, out.Err)
		}
		if run.ID == "" {
			return
		}
		if err := a.ledger.Finish(context.WithoutCancel(ctx), run.ID, out); err != nil {
			logger.Warnf("ledger finish %s failed: %v", run.ID, err)
		}
	}
}

func (a *App) colorScheme(override string) string {
	if p := strings.TrimSpace(override); p != "" {
		return p
	}
	return a.cfg.Report.ColorSchemePath
}

func reportDetails(res report.Result) map[string]any {
	if res.HTMLPath == "" {
		return nil
	}
	keys := make([]string, 0, len(res.Citations))
	for _, c := range res.Citations {
		keys = append(keys, c.Key)
	}
	return map[string]any{
		"citations": keys,
		"markers":   map[string]int(res.Counts),
		"slices":    len(res.Slices),
	}
}

// existing returns path when it names a file, else "".
func existing(path string) string {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warnf("stat %s: %v", path, err)
		}
		return ""
	}
	return path
}

func unlock(l *workspace.Lock) {
	if err := l.Unlock(); err != nil {
		logger.Warnf("release workspace lock: %v", err)
	}
}
