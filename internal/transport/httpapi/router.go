package httpapi

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"genomereport/internal/ledger"
	"genomereport/internal/logger"
	"genomereport/internal/report"
	"genomereport/internal/workspace"
	"genomereport/internal/xref"

	"github.com/gin-gonic/gin"
)

const maxRunsLimit = 500

type Router struct {
	Reports    ReportService
	Runs       ledger.Store
	References CatalogView
}

func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/runs", r.handleRuns)
	group.GET("/runs/:id", r.handleRunByID)
	group.GET("/references", r.handleReferences)
	group.POST("/genomes/:id/report", r.handleRebuild)
}

type reportResponse struct {
	GenomeID  string          `json:"genome_id"`
	HTMLPath  string          `json:"html_path"`
	PDFPath   string          `json:"pdf_path,omitempty"`
	HTMLURL   string          `json:"html_url"`
	Citations []xref.Citation `json:"citations"`
	Tables    int             `json:"tables"`
	Figures   int             `json:"figures"`
}

func (r *Router) handleRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}
	runs, err := r.Runs.List(c.Request.Context(), ledger.Filter{
		GenomeID: strings.TrimSpace(c.Query("genome")),
		Limit:    limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []ledger.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (r *Router) handleRunByID(c *gin.Context) {
	run, err := r.Runs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func (r *Router) handleReferences(c *gin.Context) {
	if r.References == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": xref.ErrCatalogUnavailable.Error()})
		return
	}
	snap := r.References.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"version":   snap.Version,
		"loaded_at": snap.LoadedAt,
		"count":     len(snap.Entries),
	})
}

func (r *Router) handleRebuild(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	includePDF, _ := strconv.ParseBool(c.DefaultQuery("pdf", "false"))
	res, err := r.Reports.RebuildReport(c.Request.Context(), id, includePDF)
	if err != nil {
		logger.Warnf("rebuild report for %s failed: %v", id, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, newReportResponse(id, res))
}

func newReportResponse(id string, res report.Result) reportResponse {
	cites := res.Citations
	if cites == nil {
		cites = []xref.Citation{}
	}
	return reportResponse{
		GenomeID:  id,
		HTMLPath:  res.HTMLPath,
		PDFPath:   res.PDFPath,
		HTMLURL:   "/reports/" + id + "/" + workspace.ReportHTMLName,
		Citations: cites,
		Tables:    res.Counts[xref.TagTableNum],
		Figures:   res.Counts[xref.TagFigNum],
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, workspace.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, workspace.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
