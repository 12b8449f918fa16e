package config

import (
	"path/filepath"
	"strings"
)

const (
	defaultLogLevel        = "info"
	defaultDataURL         = "https://www.bv-brc.org/api"
	defaultWikiURL         = "https://en.wikipedia.org/w/api.php"
	defaultAPITimeout      = 60
	defaultReportDir       = "reports"
	defaultPDFFormat       = "letter"
	defaultPDFMargin       = "35px"
	defaultPDFTimeout      = 120
	defaultChartWidth      = 200
	defaultChartHeight     = 200
	defaultChartPadding    = 10
	defaultChartValueField = "gene_count"
	defaultLedgerFile      = "runs.db"
	defaultHTTPAddr        = ":8087"
)

// Default returns a configuration with every default applied, as if an empty file was loaded.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults(make(keySet))
	return &cfg
}

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.API.applyDefaults(keys)
	c.Report.applyDefaults(keys)
	c.PDF.applyDefaults(keys)
	c.Chart.applyDefaults(keys)
	c.References.normalize()
	c.Ledger.applyDefaults(keys, c.Report.Dir)
	c.HTTP.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.log_level", &a.LogLevel, defaultLogLevel),
	)
}

func (a *APIConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("api.data_url", &a.DataURL, defaultDataURL),
		stringFieldDefault("api.wiki_url", &a.WikiURL, defaultWikiURL),
		fieldDefault{
			key:   "api.timeout_seconds",
			need:  func() bool { return a.TimeoutSeconds <= 0 },
			apply: func() { a.TimeoutSeconds = defaultAPITimeout },
		},
	)
	a.DataURL = strings.TrimRight(strings.TrimSpace(a.DataURL), "/")
}

func (r *ReportConfig) applyDefaults(keys keySet) {
	if r == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("report.dir", &r.Dir, defaultReportDir),
		boolFieldDefault("report.link_citations", &r.LinkCitations, true),
	)
}

func (p *PDFConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("pdf.format", &p.Format, defaultPDFFormat),
		stringFieldDefault("pdf.margin", &p.Margin, defaultPDFMargin),
		boolFieldDefault("pdf.print_background", &p.PrintBackground, true),
		fieldDefault{
			key:   "pdf.timeout_seconds",
			need:  func() bool { return p.TimeoutSeconds == 0 },
			apply: func() { p.TimeoutSeconds = defaultPDFTimeout },
		},
	)
	p.Format = strings.ToLower(strings.TrimSpace(p.Format))
}

func (c *ChartConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "chart.width",
			need:  func() bool { return c.Width <= 0 },
			apply: func() { c.Width = defaultChartWidth },
		},
		fieldDefault{
			key:   "chart.height",
			need:  func() bool { return c.Height <= 0 },
			apply: func() { c.Height = defaultChartHeight },
		},
		fieldDefault{
			key:   "chart.padding",
			need:  func() bool { return c.Padding <= 0 },
			apply: func() { c.Padding = defaultChartPadding },
		},
		stringFieldDefault("chart.value_field", &c.ValueField, defaultChartValueField),
		boolFieldDefault("chart.include_values", &c.IncludeValues, true),
		boolFieldDefault("chart.drop_unnamed", &c.DropUnnamed, true),
	)
}

func (r *ReferencesConfig) normalize() {
	if r == nil || len(r.AssemblyMethods) == 0 {
		return
	}
	out := make(map[string]string, len(r.AssemblyMethods))
	for method, key := range r.AssemblyMethods {
		method = strings.ToLower(strings.TrimSpace(method))
		key = strings.TrimSpace(key)
		if method == "" || key == "" {
			continue
		}
		out[method] = key
	}
	r.AssemblyMethods = out
}

func (l *LedgerConfig) applyDefaults(keys keySet, reportDir string) {
	if l == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("ledger.enabled", &l.Enabled, true),
		stringFieldDefault("ledger.path", &l.Path, joinPath(reportDir, defaultLedgerFile)),
	)
}

func (h *HTTPConfig) applyDefaults(keys keySet) {
	if h == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("http.addr", &h.Addr, defaultHTTPAddr),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func joinPath(dir, name string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
