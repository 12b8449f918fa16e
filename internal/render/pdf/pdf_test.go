package pdf

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperSize(t *testing.T) {
	w, h, err := PaperSize("Letter")
	require.NoError(t, err)
	assert.Equal(t, 8.5, w)
	assert.Equal(t, 11.0, h)

	_, _, err = PaperSize("tabloid")
	assert.Error(t, err)
}

func TestMarginInches(t *testing.T) {
	cases := map[string]float64{
		"35px":   35.0 / 96,
		"0.5in":  0.5,
		"2.54cm": 1,
		"25.4mm": 1,
	}
	for in, want := range cases {
		got, err := MarginInches(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-9, in)
	}
	_, err := MarginInches("wide")
	assert.Error(t, err)
}

func TestNewChromeRendererDefaults(t *testing.T) {
	r := NewChromeRenderer(Options{PrintBackground: true})
	assert.Equal(t, "letter", r.opts.Format)
	assert.Equal(t, "35px", r.opts.Margin)
	assert.Equal(t, 2*time.Minute, r.opts.Timeout)
}

func TestRenderRejectsBadInputBeforeLaunch(t *testing.T) {
	_, err := NewChromeRenderer(Options{}).Render(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewChromeRenderer(Options{Format: "tabloid"}).Render(context.Background(), []byte("<p>x</p>"))
	assert.Error(t, err)
}

func requireChrome(t *testing.T) {
	t.Helper()
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("no Chrome/Chromium on PATH")
}

func TestRenderLargeDocument(t *testing.T) {
	requireChrome(t)
	var doc strings.Builder
	doc.WriteString("<html><body><svg xmlns=\"http://www.w3.org/2000/svg\" width=\"400\" height=\"400\">")
	for doc.Len() < 3<<20 {
		doc.WriteString(`<path d="M0,-95A95,95,0,0,1,0,95L0,0Z" fill="#1f77b4"></path>`)
	}
	doc.WriteString("</svg><p>end</p></body></html>")
	require.Greater(t, doc.Len(), 2<<20)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	out, err := NewChromeRenderer(Options{Timeout: time.Minute}).Render(ctx, []byte(doc.String()))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
