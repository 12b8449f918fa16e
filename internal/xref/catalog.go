package xref

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"genomereport/internal/logger"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/gjson"
)

// ErrCatalogUnavailable wraps failures to read or parse the references file.
var ErrCatalogUnavailable = errors.New("references catalog unavailable")

// Snapshot is an immutable view of the references file.
type Snapshot struct {
	Version  int64
	LoadedAt time.Time
	Entries  map[string]string
}

// ChangeListener is called after each successful reload.
type ChangeListener func(Snapshot)

// Catalog holds the citation key → text table loaded from a JSON file.
type Catalog struct {
	path string

	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []ChangeListener
}

// NewCatalog loads path. It fails with ErrCatalogUnavailable when the file
// is missing or is not a JSON object.
func NewCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: no references path configured", ErrCatalogUnavailable)
	}
	c := &Catalog{path: path}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewStaticCatalog wraps an in-memory table.
func NewStaticCatalog(entries map[string]string) *Catalog {
	c := &Catalog{}
	c.snapshot = Snapshot{Version: 1, LoadedAt: time.Now(), Entries: cloneEntries(entries)}
	return c
}

func (c *Catalog) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Snapshot returns a copy of the current entries.
func (c *Catalog) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{Entries: map[string]string{}}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := c.snapshot
	snap.Entries = cloneEntries(snap.Entries)
	return snap
}

// Entries is shorthand for Snapshot().Entries.
func (c *Catalog) Entries() map[string]string {
	return c.Snapshot().Entries
}

// OnChange registers fn to run after every reload.
func (c *Catalog) OnChange(fn ChangeListener) {
	if c == nil || fn == nil {
		return
	}
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Watch reloads the catalog whenever its file is written or replaced, until
// ctx is done. A failed reload keeps the previous snapshot.
func (c *Catalog) Watch(ctx context.Context) error {
	if c == nil || c.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch references: %w", err)
	}
	defer watcher.Close()
	// editors replace files by rename, so watch the directory
	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch references dir %s: %w", dir, err)
	}
	target := filepath.Clean(c.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != target {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}
			if err := c.reload(); err != nil {
				logger.Errorf("references reload failed: %v", err)
				continue
			}
			c.notifyListeners()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("references watcher: %v", err)
		}
	}
}

func (c *Catalog) reload() error {
	entries, err := readReferences(c.path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.snapshot = Snapshot{
		Version:  c.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Entries:  entries,
	}
	c.mu.Unlock()
	logger.Infof("references catalog loaded %d entries from %s", len(entries), filepath.Base(c.path))
	return nil
}

func (c *Catalog) notifyListeners() {
	snap := c.Snapshot()
	c.mu.RLock()
	listeners := append([]ChangeListener(nil), c.listeners...)
	c.mu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func readReferences(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	entries, err := ParseReferences(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, path, err)
	}
	return entries, nil
}

// ParseReferences reads a JSON object of citation key → display text.
func ParseReferences(data []byte) (map[string]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("references must be a JSON object")
	}
	out := map[string]string{}
	root.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = value.String()
		return true
	})
	return out, nil
}

func cloneEntries(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
