package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type runModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	GenomeID   string `gorm:"size:64;index"`
	Kind       string `gorm:"size:16"`
	Status     string `gorm:"size:16;index"`
	HTMLPath   string
	PDFPath    string
	DataPath   string
	Error      string
	Details    datatypes.JSON
	StartedAt  time.Time `gorm:"index"`
	FinishedAt *time.Time
}

func (runModel) TableName() string { return "report_runs" }

// GormStore implements Store on Gorm + SQLite.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Open returns a GormStore at path, or NopStore when disabled.
func Open(enabled bool, path string) (Store, error) {
	if !enabled {
		return NopStore{}, nil
	}
	store, err := NewGormStore(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("ledger: database path is required")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ledger: create dir: %w", err)
		}
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&runModel{}); err != nil {
		return nil, fmt.Errorf("ledger: migrate: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return &GormStore{db: db, now: time.Now}, nil
}

func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) Start(ctx context.Context, genomeID string, kind Kind) (Run, error) {
	m := runModel{
		ID:        uuid.NewString(),
		GenomeID:  strings.TrimSpace(genomeID),
		Kind:      string(kind),
		Status:    string(StatusRunning),
		StartedAt: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return Run{}, fmt.Errorf("ledger: start run: %w", err)
	}
	return m.toRun(), nil
}

func (s *GormStore) Finish(ctx context.Context, id string, out Outcome) error {
	finished := s.now().UTC()
	updates := map[string]any{
		"status":      string(StatusSucceeded),
		"html_path":   out.HTMLPath,
		"pdf_path":    out.PDFPath,
		"data_path":   out.DataPath,
		"error":       "",
		"finished_at": finished,
	}
	if out.Err != nil {
		updates["status"] = string(StatusFailed)
		updates["error"] = out.Err.Error()
	}
	if len(out.Details) > 0 {
		raw, err := json.Marshal(out.Details)
		if err != nil {
			return fmt.Errorf("ledger: encode details: %w", err)
		}
		updates["details"] = datatypes.JSON(raw)
	}
	res := s.db.WithContext(ctx).Model(&runModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("ledger: finish run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id string) (Run, error) {
	var m runModel
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("ledger: get run: %w", err)
	}
	return m.toRun(), nil
}

// List returns runs newest first.
func (s *GormStore) List(ctx context.Context, f Filter) ([]Run, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	q := s.db.WithContext(ctx).Model(&runModel{})
	if g := strings.TrimSpace(f.GenomeID); g != "" {
		q = q.Where("genome_id = ?", g)
	}
	var models []runModel
	if err := q.Order("started_at DESC").Order("id DESC").Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	out := make([]Run, 0, len(models))
	for _, m := range models {
		out = append(out, m.toRun())
	}
	return out, nil
}

func (m runModel) toRun() Run {
	r := Run{
		ID:         m.ID,
		GenomeID:   m.GenomeID,
		Kind:       Kind(m.Kind),
		Status:     Status(m.Status),
		HTMLPath:   m.HTMLPath,
		PDFPath:    m.PDFPath,
		DataPath:   m.DataPath,
		Error:      m.Error,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
	if len(m.Details) > 0 {
		var details map[string]any
		if err := json.Unmarshal(m.Details, &details); err == nil {
			r.Details = details
		}
	}
	return r
}

var _ Store = (*GormStore)(nil)
var _ Store = NopStore{}
