// Package ledger records fetch and report runs in SQLite.
package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a run ID is unknown.
var ErrNotFound = errors.New("run not found")

type Kind string

const (
	KindFetch  Kind = "fetch"
	KindChart  Kind = "chart"
	KindReport Kind = "report"
	KindRun    Kind = "run"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded invocation.
type Run struct {
	ID         string         `json:"id"`
	GenomeID   string         `json:"genome_id"`
	Kind       Kind           `json:"kind"`
	Status     Status         `json:"status"`
	HTMLPath   string         `json:"html_path,omitempty"`
	PDFPath    string         `json:"pdf_path,omitempty"`
	DataPath   string         `json:"data_path,omitempty"`
	Error      string         `json:"error,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
}

// Outcome closes a run.
type Outcome struct {
	HTMLPath string
	PDFPath  string
	DataPath string
	Details  map[string]any
	Err      error
}

// Filter narrows List. Limit <= 0 means the default of 50.
type Filter struct {
	GenomeID string
	Limit    int
}

// Store persists runs.
type Store interface {
	Start(ctx context.Context, genomeID string, kind Kind) (Run, error)
	Finish(ctx context.Context, id string, out Outcome) error
	Get(ctx context.Context, id string) (Run, error)
	List(ctx context.Context, f Filter) ([]Run, error)
	Close() error
}

const defaultListLimit = 50

// NopStore is used when the ledger is disabled.
type NopStore struct{}

func (NopStore) Start(_ context.Context, genomeID string, kind Kind) (Run, error) {
	return Run{GenomeID: genomeID, Kind: kind, Status: StatusRunning, StartedAt: time.Now()}, nil
}

func (NopStore) Finish(context.Context, string, Outcome) error { return nil }

func (NopStore) Get(context.Context, string) (Run, error) { return Run{}, ErrNotFound }

func (NopStore) List(context.Context, Filter) ([]Run, error) { return nil, nil }

func (NopStore) Close() error { return nil }
