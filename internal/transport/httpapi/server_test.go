package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"genomereport/internal/ledger"
	"genomereport/internal/report"
	"genomereport/internal/workspace"
	"genomereport/internal/xref"
)

type mockReports struct {
	mock.Mock
}

func (m *mockReports) RebuildReport(ctx context.Context, genomeID string, includePDF bool) (report.Result, error) {
	args := m.Called(ctx, genomeID, includePDF)
	res, _ := args.Get(0).(report.Result)
	return res, args.Error(1)
}

func newTestServer(t *testing.T, reports ReportService) (*Server, ledger.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := ledger.NewGormStore(filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reportDir := filepath.Join(dir, "reports")
	srv, err := NewServer(ServerConfig{
		Addr:       "127.0.0.1:0",
		ReportDir:  reportDir,
		Reports:    reports,
		Runs:       store,
		References: xref.NewStaticCatalog(map[string]string{"A": "Alpha", "B": "Beta"}),
	})
	require.NoError(t, err)
	return srv, store, reportDir
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServerRequiresReports(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockReports{})
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRunsEndpoints(t *testing.T) {
	srv, store, _ := newTestServer(t, &mockReports{})
	ctx := context.Background()
	first, err := store.Start(ctx, "83332.12", ledger.KindReport)
	require.NoError(t, err)
	require.NoError(t, store.Finish(ctx, first.ID, ledger.Outcome{HTMLPath: "a.html"}))
	_, err = store.Start(ctx, "511145.12", ledger.KindFetch)
	require.NoError(t, err)

	rec := do(t, srv.Handler(), http.MethodGet, "/api/runs?genome=83332.12")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Runs []ledger.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, ledger.StatusSucceeded, body.Runs[0].Status)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/runs/"+first.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	var run ledger.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "a.html", run.HTMLPath)

	rec = do(t, srv.Handler(), http.MethodGet, "/api/runs/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReferences(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockReports{})
	rec := do(t, srv.Handler(), http.MethodGet, "/api/references")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["count"])
	assert.EqualValues(t, 1, body["version"])
}

func TestRebuildReport(t *testing.T) {
	reports := &mockReports{}
	reports.On("RebuildReport", mock.Anything, "83332.12", true).Return(report.Result{
		HTMLPath:  "reports/83332.12/genome-report.html",
		PDFPath:   "reports/83332.12/genome-report.pdf",
		Citations: []xref.Citation{{Number: 1, Key: "A", Text: "Alpha", Known: true}},
		Counts:    xref.Counts{xref.TagTableNum: 4, xref.TagFigNum: 2},
	}, nil).Once()
	srv, _, _ := newTestServer(t, reports)

	rec := do(t, srv.Handler(), http.MethodPost, "/api/genomes/83332.12/report?pdf=true")
	require.Equal(t, http.StatusOK, rec.Code)
	var body reportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/reports/83332.12/genome-report.html", body.HTMLURL)
	assert.Equal(t, 4, body.Tables)
	assert.Equal(t, 2, body.Figures)
	assert.Len(t, body.Citations, 1)
	reports.AssertExpectations(t)
}

func TestRebuildReportErrors(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"invalid id": {fmt.Errorf("%w %q", workspace.ErrInvalidID, "x"), http.StatusBadRequest},
		"locked":     {fmt.Errorf("%w: x", workspace.ErrLocked), http.StatusConflict},
		"no data":    {fmt.Errorf("read data: %w", os.ErrNotExist), http.StatusNotFound},
		"other":      {fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			reports := &mockReports{}
			reports.On("RebuildReport", mock.Anything, "x", false).Return(report.Result{}, tc.err)
			srv, _, _ := newTestServer(t, reports)
			rec := do(t, srv.Handler(), http.MethodPost, "/api/genomes/x/report")
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestServesReportFiles(t *testing.T) {
	srv, _, reportDir := newTestServer(t, &mockReports{})
	dir := filepath.Join(reportDir, "83332.12")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "genome-report.html"), []byte("<html>ok</html>"), 0o644))

	rec := do(t, srv.Handler(), http.MethodGet, "/reports/83332.12/genome-report.html")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestStartStopsOnCancel(t *testing.T) {
	srv, _, _ := newTestServer(t, &mockReports{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
