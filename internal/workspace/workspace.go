// Package workspace lays out the per-genome output directory.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"genomereport/internal/logger"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another run holds the genome directory.
var ErrLocked = errors.New("genome directory is locked by another run")

var ErrInvalidID = errors.New("invalid genome id")

const (
	ReportHTMLName = "genome-report.html"
	ReportPDFName  = "genome-report.pdf"
)

var genomeIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Paths names every file a run may produce for one genome.
type Paths struct {
	Dir           string
	Data          string
	SubsystemSVG  string
	SubsystemHTML string
	CircularSVG   string
	ReportHTML    string
	ReportPDF     string
	Lock          string
}

// Workspace roots genome directories under one report directory.
type Workspace struct {
	root string
}

func New(root string) *Workspace {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "reports"
	}
	return &Workspace{root: root}
}

func (w *Workspace) Root() string {
	return w.root
}

// ValidateID rejects IDs that could escape the report directory.
func ValidateID(id string) error {
	if !genomeIDPattern.MatchString(id) || strings.Contains(id, "..") {
		return fmt.Errorf("%w %q", ErrInvalidID, id)
	}
	return nil
}

// Paths returns the file layout for id without touching the filesystem.
func (w *Workspace) Paths(id string) (Paths, error) {
	id = strings.TrimSpace(id)
	if err := ValidateID(id); err != nil {
		return Paths{}, err
	}
	dir := filepath.Join(w.root, id)
	return Paths{
		Dir:           dir,
		Data:          filepath.Join(dir, id+"-data.json"),
		SubsystemSVG:  filepath.Join(dir, id+"-subsystem.svg"),
		SubsystemHTML: filepath.Join(dir, id+"-subsystem.html"),
		CircularSVG:   filepath.Join(dir, id+"-circular.svg"),
		ReportHTML:    filepath.Join(dir, ReportHTMLName),
		ReportPDF:     filepath.Join(dir, ReportPDFName),
		Lock:          filepath.Join(dir, ".lock"),
	}, nil
}

// Ensure creates the genome directory if needed and returns its layout.
func (w *Workspace) Ensure(id string) (Paths, error) {
	p, err := w.Paths(id)
	if err != nil {
		return Paths{}, err
	}
	if _, err := os.Stat(p.Dir); errors.Is(err, os.ErrNotExist) {
		logger.Infof("creating genome dir %s", p.Dir)
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create genome dir %s: %w", p.Dir, err)
	}
	return p, nil
}

// Lock is held for the duration of one run on a genome.
type Lock struct {
	fl *flock.Flock
}

// Lock takes the genome's advisory lock without waiting.
func (w *Workspace) Lock(id string) (*Lock, error) {
	p, err := w.Ensure(id)
	if err != nil {
		return nil, err
	}
	fl := flock.New(p.Lock)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", p.Lock, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, id)
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Unlock() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

// WriteFileAtomic writes data next to path and renames it into place, so
// readers never observe a partial file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
