// Package httpapi serves generated reports and a small JSON API over them.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"genomereport/internal/ledger"
	"genomereport/internal/logger"
	"genomereport/internal/report"
	"genomereport/internal/xref"

	"github.com/gin-gonic/gin"
)

// ReportService rebuilds a genome's report from its workspace data file.
type ReportService interface {
	RebuildReport(ctx context.Context, genomeID string, includePDF bool) (report.Result, error)
}

// CatalogView exposes the currently loaded references.
type CatalogView interface {
	Snapshot() xref.Snapshot
}

type ServerConfig struct {
	Addr       string
	ReportDir  string
	Reports    ReportService
	Runs       ledger.Store
	References CatalogView
}

type Server struct {
	addr   string
	router *gin.Engine
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Reports == nil {
		return nil, errors.New("http server requires a report service")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = ":8080"
	}
	if strings.TrimSpace(cfg.ReportDir) == "" {
		cfg.ReportDir = "reports"
	}
	if cfg.Runs == nil {
		cfg.Runs = ledger.NopStore{}
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.Static("/reports", cfg.ReportDir)

	r := &Router{Reports: cfg.Reports, Runs: cfg.Runs, References: cfg.References}
	r.Register(router.Group("/api"))

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return nil
	}
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("preview server listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
