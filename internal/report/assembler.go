package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/html"

	"genomereport/internal/chart"
	"genomereport/internal/gto"
	"genomereport/internal/logger"
	"genomereport/internal/render/pdf"
	"genomereport/internal/workspace"
	"genomereport/internal/xref"
)

// References supplies the citation key → display text table.
type References interface {
	Entries() map[string]string
}

// Options are fixed for the lifetime of an Assembler.
type Options struct {
	// TemplatePath is re-read on every Build; empty uses the built-in template.
	TemplatePath  string
	References    References
	Methods       xref.Methods
	Renderer      pdf.Renderer
	Authoring     Authoring
	LinkCitations bool
	Chart         chart.RenderOptions
	ValueField    string
	DropUnnamed   bool
	Now           func() time.Time
}

// Request names the files for one report.
type Request struct {
	InputPath  string
	OutputHTML string
	// OutputPDF defaults to OutputHTML with a .pdf extension.
	OutputPDF        string
	SubsystemSVGPath string
	CircularSVGPath  string
	ColorSchemePath  string
	IncludePDF       bool
}

type Result struct {
	HTMLPath     string
	PDFPath      string
	Citations    []xref.Citation
	Counts       xref.Counts
	Slices       []chart.Slice
	SubsystemSVG string
}

type Assembler struct {
	opts Options
}

func NewAssembler(opts Options) *Assembler {
	if opts.Methods == nil {
		opts.Methods = xref.NewMethods(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if strings.TrimSpace(opts.Authoring.Title) == "" {
		opts.Authoring.Title = DefaultAuthoring().Title
	}
	return &Assembler{opts: opts}
}

// Build runs the whole pipeline for req. Any failure aborts the run and
// leaves previously written outputs untouched.
func (a *Assembler) Build(ctx context.Context, req Request) (Result, error) {
	var res Result
	if a == nil {
		return res, errors.New("report: nil assembler")
	}
	if strings.TrimSpace(req.InputPath) == "" {
		return res, errors.New("report: input path is required")
	}
	if strings.TrimSpace(req.OutputHTML) == "" {
		return res, errors.New("report: output path is required")
	}

	logger.Infof("reading genome object %s", req.InputPath)
	g, err := gto.Load(req.InputPath)
	if err != nil {
		return res, err
	}

	palette, err := chart.PaletteOrDefault(req.ColorSchemePath)
	if err != nil {
		return res, fmt.Errorf("load color scheme: %w", err)
	}
	res.Slices = chart.Build(g.Section(gto.SubsystemSummary), chart.BuildOptions{
		Palette:     palette,
		ValueField:  a.opts.ValueField,
		DropUnnamed: a.opts.DropUnnamed,
	})

	subsystemSVG, err := a.subsystemChart(req.SubsystemSVGPath, res.Slices)
	if err != nil {
		return res, err
	}
	res.SubsystemSVG = subsystemSVG
	circularSVG, err := readOptional("circular view", req.CircularSVGPath)
	if err != nil {
		return res, err
	}

	tctx := NewContext(g, Inputs{
		Authoring:    a.opts.Authoring,
		Subsystems:   res.Slices,
		SubsystemSVG: subsystemSVG,
		CircularSVG:  circularSVG,
		Now:          a.opts.Now(),
	})

	logger.Infof("reading template")
	tmpl, err := LoadTemplate(a.opts.TemplatePath)
	if err != nil {
		return res, err
	}
	logger.Infof("filling template")
	var filled bytes.Buffer
	if err := tmpl.Execute(&filled, tctx); err != nil {
		return res, fmt.Errorf("fill template: %w", err)
	}

	doc, err := html.Parse(&filled)
	if err != nil {
		return res, fmt.Errorf("parse filled template: %w", err)
	}
	logger.Infof("adding table/figure numbers")
	res.Counts = xref.Number(doc)

	logger.Infof("resolving references")
	resolver := xref.Resolver{
		References: a.references(),
		Methods:    a.opts.Methods,
		Link:       a.opts.LinkCitations,
	}
	if res.Citations, err = resolver.Resolve(doc); err != nil {
		return res, fmt.Errorf("resolve references: %w", err)
	}

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return res, fmt.Errorf("render html: %w", err)
	}
	logger.Infof("writing html %s", req.OutputHTML)
	if err := workspace.WriteFileAtomic(req.OutputHTML, out.Bytes(), 0o644); err != nil {
		return res, err
	}
	res.HTMLPath = req.OutputHTML

	if !req.IncludePDF {
		return res, nil
	}
	if a.opts.Renderer == nil {
		return res, errors.New("report: pdf requested but no renderer configured")
	}
	pdfPath := req.OutputPDF
	if strings.TrimSpace(pdfPath) == "" {
		pdfPath = strings.TrimSuffix(req.OutputHTML, filepath.Ext(req.OutputHTML)) + ".pdf"
	}
	logger.Infof("generating pdf %s", pdfPath)
	data, err := a.opts.Renderer.Render(ctx, out.Bytes())
	if err != nil {
		return res, fmt.Errorf("render pdf: %w", err)
	}
	if err := workspace.WriteFileAtomic(pdfPath, data, 0o644); err != nil {
		return res, err
	}
	res.PDFPath = pdfPath
	return res, nil
}

func (a *Assembler) subsystemChart(path string, slices []chart.Slice) (string, error) {
	if strings.TrimSpace(path) != "" {
		return readOptional("subsystem chart", path)
	}
	svg, err := chart.RenderSVG(slices, a.opts.Chart)
	if err != nil {
		return "", fmt.Errorf("render subsystem chart: %w", err)
	}
	return svg, nil
}

func (a *Assembler) references() map[string]string {
	if a.opts.References == nil {
		logger.Warnf("no references configured; citations will have empty entries")
		return map[string]string{}
	}
	return a.opts.References.Entries()
}

func readOptional(what, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s %s: %w", what, path, err)
	}
	return string(raw), nil
}
