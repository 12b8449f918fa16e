// Package pdf prints HTML documents to PDF through a headless browser.
package pdf

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Renderer turns an HTML document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
}

// Options are the print settings.
type Options struct {
	Format          string
	Margin          string
	PrintBackground bool
	Timeout         time.Duration
}

// DefaultOptions prints letter pages with 35px margins and backgrounds.
func DefaultOptions() Options {
	return Options{Format: "letter", Margin: "35px", PrintBackground: true, Timeout: 2 * time.Minute}
}

// paper sizes in inches
var paperSizes = map[string][2]float64{
	"letter": {8.5, 11},
	"legal":  {8.5, 14},
	"a4":     {8.27, 11.69},
}

// PaperSize returns width and height in inches.
func PaperSize(format string) (float64, float64, error) {
	size, ok := paperSizes[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return 0, 0, fmt.Errorf("pdf: unsupported paper format %q", format)
	}
	return size[0], size[1], nil
}

var lengthPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(px|in|cm|mm)$`)

// MarginInches converts a CSS length such as 35px into inches at 96 dpi.
func MarginInches(margin string) (float64, error) {
	m := lengthPattern.FindStringSubmatch(strings.TrimSpace(margin))
	if m == nil {
		return 0, fmt.Errorf("pdf: invalid margin %q", margin)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("pdf: invalid margin %q: %w", margin, err)
	}
	switch m[2] {
	case "px":
		return v / 96, nil
	case "cm":
		return v / 2.54, nil
	case "mm":
		return v / 25.4, nil
	default:
		return v, nil
	}
}

// ChromeRenderer drives a local Chrome/Chromium through chromedp.
type ChromeRenderer struct {
	opts Options
}

func NewChromeRenderer(opts Options) *ChromeRenderer {
	def := DefaultOptions()
	if strings.TrimSpace(opts.Format) == "" {
		opts.Format = def.Format
	}
	if strings.TrimSpace(opts.Margin) == "" {
		opts.Margin = def.Margin
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	return &ChromeRenderer{opts: opts}
}

// Render loads doc into a fresh tab and prints it.
func (r *ChromeRenderer) Render(ctx context.Context, doc []byte) ([]byte, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("pdf: empty document")
	}
	width, height, err := PaperSize(r.opts.Format)
	if err != nil {
		return nil, err
	}
	margin, err := MarginInches(r.opts.Margin)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, r.opts.Timeout)
	defer cancelTimeout()

	var out []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate("about:blank"),
		loadDocument(doc),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithPrintBackground(r.opts.PrintBackground).
				Do(ctx)
			if err != nil {
				return err
			}
			out = buf
			return nil
		}),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return out, nil
}

// loadDocument replaces the current frame's document with doc, so size is
// not bounded by URL limits.
func loadDocument(doc []byte) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return fmt.Errorf("frame tree: %w", err)
		}
		return page.SetDocumentContent(tree.Frame.ID, string(doc)).Do(ctx)
	})
}
