package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsLayout(t *testing.T) {
	w := New("out")
	p, err := w.Paths("520456.3")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("out", "520456.3"), p.Dir)
	assert.Equal(t, filepath.Join("out", "520456.3", "520456.3-data.json"), p.Data)
	assert.Equal(t, filepath.Join("out", "520456.3", "520456.3-subsystem.svg"), p.SubsystemSVG)
	assert.Equal(t, filepath.Join("out", "520456.3", "genome-report.html"), p.ReportHTML)
	assert.Equal(t, filepath.Join("out", "520456.3", "genome-report.pdf"), p.ReportPDF)
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("83332.12"))
	for _, bad := range []string{"", "../etc", "a/b", ".hidden", "a..b"} {
		assert.ErrorIs(t, ValidateID(bad), ErrInvalidID, bad)
	}
}

func TestEnsureCreatesDir(t *testing.T) {
	w := New(t.TempDir())
	p, err := w.Ensure("1.1")
	require.NoError(t, err)
	info, err := os.Stat(p.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLockIsExclusive(t *testing.T) {
	w := New(t.TempDir())
	first, err := w.Lock("1.1")
	require.NoError(t, err)

	_, err = w.Lock("1.1")
	assert.ErrorIs(t, err, ErrLocked)

	other, err := w.Lock("2.2")
	require.NoError(t, err)
	require.NoError(t, other.Unlock())

	require.NoError(t, first.Unlock())
	again, err := w.Lock("1.1")
	require.NoError(t, err)
	assert.NoError(t, again.Unlock())
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "report.html")

	require.NoError(t, WriteFileAtomic(path, []byte("one"), 0o644))
	require.NoError(t, WriteFileAtomic(path, []byte("two"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
