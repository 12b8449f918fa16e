package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"genomereport/internal/chart"
	"genomereport/internal/config"
	"genomereport/internal/dataapi"
	"genomereport/internal/ledger"
	"genomereport/internal/logger"
	"genomereport/internal/render/pdf"
	"genomereport/internal/report"
	"genomereport/internal/transport/httpapi"
	"genomereport/internal/workspace"
	"genomereport/internal/xref"
)

type AppBuilder struct {
	cfg *config.Config

	clientFn    func(config.APIConfig) *dataapi.Client
	catalogFn   func(string) (*xref.Catalog, error)
	ledgerFn    func(config.LedgerConfig) (ledger.Store, error)
	rendererFn  func(config.PDFConfig) pdf.Renderer
	authoringFn func(string) (report.Authoring, error)
	serverFn    func(config.HTTPConfig, string, httpapi.ReportService, ledger.Store, httpapi.CatalogView) (*httpapi.Server, error)
}

type AppBuilderOption func(*AppBuilder)

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:         cfg,
		clientFn:    buildClient,
		catalogFn:   loadCatalog,
		ledgerFn:    openLedger,
		rendererFn:  buildRenderer,
		authoringFn: report.LoadAuthoring,
		serverFn:    buildHTTPServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// WithRenderer replaces the headless browser, mostly for tests.
func WithRenderer(r pdf.Renderer) AppBuilderOption {
	return func(b *AppBuilder) {
		b.rendererFn = func(config.PDFConfig) pdf.Renderer { return r }
	}
}

func WithLedger(store ledger.Store) AppBuilderOption {
	return func(b *AppBuilder) {
		b.ledgerFn = func(config.LedgerConfig) (ledger.Store, error) { return store, nil }
	}
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	authoring, err := b.authoringFn(cfg.Report.AuthoringPath)
	if err != nil {
		return nil, err
	}

	// A references file that fails to load only matters to commands that
	// assemble reports; they return catalogErr.
	catalog, catalogErr := b.catalogFn(cfg.Report.ReferencesPath)
	if catalogErr != nil {
		logger.Warnf("references unavailable: %v", catalogErr)
	}

	store, err := b.ledgerFn(cfg.Ledger)
	if err != nil {
		return nil, err
	}

	renderer := b.rendererFn(cfg.PDF)
	chartOpts := chart.RenderOptions{
		Width:         cfg.Chart.Width,
		Height:        cfg.Chart.Height,
		Padding:       cfg.Chart.Padding,
		IncludeValues: cfg.Chart.IncludeValues,
		LegendTitle:   cfg.Chart.LegendTitle,
	}
	opts := report.Options{
		TemplatePath:  cfg.Report.TemplatePath,
		Methods:       xref.NewMethods(cfg.References.AssemblyMethods),
		Renderer:      renderer,
		Authoring:     authoring,
		LinkCitations: cfg.Report.LinkCitations,
		Chart:         chartOpts,
		ValueField:    cfg.Chart.ValueField,
		DropUnnamed:   cfg.Chart.DropUnnamed,
	}
	if catalog != nil {
		opts.References = catalog
	}

	a := &App{
		cfg:        cfg,
		ws:         workspace.New(cfg.Report.Dir),
		client:     b.clientFn(cfg.API),
		assembler:  report.NewAssembler(opts),
		catalog:    catalog,
		catalogErr: catalogErr,
		ledger:     store,
		chartOpts:  chartOpts,
	}

	var view httpapi.CatalogView
	if catalog != nil {
		view = catalog
	}
	a.server, err = b.serverFn(cfg.HTTP, cfg.Report.Dir, a, store, view)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a.Summary = newStartupSummary(cfg, catalog, authoring)
	return a, nil
}

func buildClient(cfg config.APIConfig) *dataapi.Client {
	return dataapi.NewClient(dataapi.Options{
		DataURL: cfg.DataURL,
		WikiURL: cfg.WikiURL,
		Token:   cfg.Token,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}

// loadCatalog treats an unset path as an empty table; a set path must load.
func loadCatalog(path string) (*xref.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		logger.Warnf("report.references_path not set; bibliography entries will be empty")
		return xref.NewStaticCatalog(nil), nil
	}
	return xref.NewCatalog(path)
}

func openLedger(cfg config.LedgerConfig) (ledger.Store, error) {
	store, err := ledger.Open(cfg.Enabled, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open run ledger: %w", err)
	}
	if cfg.Enabled {
		logger.Infof("✓ run ledger at %s", cfg.Path)
	}
	return store, nil
}

func buildRenderer(cfg config.PDFConfig) pdf.Renderer {
	return pdf.NewChromeRenderer(pdf.Options{
		Format:          cfg.Format,
		Margin:          cfg.Margin,
		PrintBackground: cfg.PrintBackground,
		Timeout:         time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
}

func buildHTTPServer(cfg config.HTTPConfig, reportDir string, reports httpapi.ReportService, runs ledger.Store, refs httpapi.CatalogView) (*httpapi.Server, error) {
	server, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:       cfg.Addr,
		ReportDir:  reportDir,
		Reports:    reports,
		Runs:       runs,
		References: refs,
	})
	if err != nil {
		return nil, fmt.Errorf("init preview server: %w", err)
	}
	return server, nil
}
