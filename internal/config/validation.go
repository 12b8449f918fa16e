package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var cssLength = regexp.MustCompile(`^\d+(\.\d+)?(px|in|cm|mm)$`)

// validate performs basic sanity checks after defaults are applied.
func validate(c *Config) error {
	if err := c.API.validate(); err != nil {
		return err
	}
	if err := c.PDF.validate(); err != nil {
		return err
	}
	if err := c.Chart.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Report.Dir) == "" {
		return fmt.Errorf("report.dir cannot be empty")
	}
	if c.Ledger.Enabled && strings.TrimSpace(c.Ledger.Path) == "" {
		return fmt.Errorf("ledger.path is required when the ledger is enabled")
	}
	return nil
}

func (a *APIConfig) validate() error {
	for name, raw := range map[string]string{"api.data_url": a.DataURL, "api.wiki_url": a.WikiURL} {
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", name, raw)
		}
	}
	if a.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must be >= 0")
	}
	return nil
}

func (p *PDFConfig) validate() error {
	switch p.Format {
	case "letter", "a4", "legal":
	default:
		return fmt.Errorf("pdf.format must be one of letter, a4, legal (got %q)", p.Format)
	}
	if !cssLength.MatchString(strings.TrimSpace(p.Margin)) {
		return fmt.Errorf("pdf.margin must be a length such as 35px or 0.5in (got %q)", p.Margin)
	}
	if p.TimeoutSeconds < 0 {
		return fmt.Errorf("pdf.timeout_seconds must be >= 0")
	}
	return nil
}

func (c *ChartConfig) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("chart.width and chart.height must be positive")
	}
	if c.Padding < 0 || 2*c.Padding >= c.Width || 2*c.Padding >= c.Height {
		return fmt.Errorf("chart.padding %d does not fit a %dx%d chart", c.Padding, c.Width, c.Height)
	}
	return nil
}
