package app

import (
	"context"
	"errors"
	"fmt"

	"genomereport/internal/chart"
	"genomereport/internal/config"
	"genomereport/internal/dataapi"
	"genomereport/internal/ledger"
	"genomereport/internal/logger"
	"genomereport/internal/report"
	"genomereport/internal/transport/httpapi"
	"genomereport/internal/workspace"
	"genomereport/internal/xref"

	"golang.org/x/sync/errgroup"
)

// App wires configuration, the data client, the report assembler and the
// run ledger behind the CLI commands and the preview server.
type App struct {
	cfg        *config.Config
	ws         *workspace.Workspace
	client     *dataapi.Client
	assembler  *report.Assembler
	catalog    *xref.Catalog
	catalogErr error
	ledger     ledger.Store
	server     *httpapi.Server
	chartOpts  chart.RenderOptions
	Summary    *StartupSummary
}

// NewApp builds the application without starting anything.
func NewApp(cfg *config.Config, opts ...AppBuilderOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg, opts...)
}

// Serve runs the preview server and, for file-backed references, the
// catalog watcher until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.server == nil {
		return fmt.Errorf("preview server not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("preview server error: %w", err)
		}
		return nil
	})

	if a.catalog != nil && a.catalog.Path() != "" {
		a.catalog.OnChange(func(s xref.Snapshot) {
			logger.Infof("references reloaded: %d entries (v%d)", len(s.Entries), s.Version)
		})
		group.Go(func() error {
			err := a.catalog.Watch(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("references watcher error: %w", err)
			}
			return nil
		})
	}

	return group.Wait()
}

// Workspace exposes the genome directory layout.
func (a *App) Workspace() *workspace.Workspace {
	if a == nil {
		return nil
	}
	return a.ws
}

func (a *App) Close() error {
	if a == nil || a.ledger == nil {
		return nil
	}
	return a.ledger.Close()
}

func (a *App) references() error {
	if a.catalogErr != nil {
		return fmt.Errorf("load references: %w", a.catalogErr)
	}
	return nil
}
