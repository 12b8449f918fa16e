package config

import "strings"

// Config is the full genome-report configuration.
type Config struct {
	App        AppConfig        `toml:"app"`
	API        APIConfig        `toml:"api"`
	Report     ReportConfig     `toml:"report"`
	PDF        PDFConfig        `toml:"pdf"`
	Chart      ChartConfig      `toml:"chart"`
	References ReferencesConfig `toml:"references"`
	Ledger     LedgerConfig     `toml:"ledger"`
	HTTP       HTTPConfig       `toml:"http"`
}

type AppConfig struct {
	LogLevel    string `toml:"log_level"`
	LogPath     string `toml:"log_path"`
	APIDumpPath string `toml:"api_dump_path"`
}

// APIConfig points at the genome data service and the wiki used for organism blurbs.
type APIConfig struct {
	DataURL        string `toml:"data_url"`
	WikiURL        string `toml:"wiki_url"`
	Token          string `toml:"token"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ReportConfig controls where reports are written and which inputs feed the template.
type ReportConfig struct {
	Dir             string `toml:"dir"`
	TemplatePath    string `toml:"template_path"`
	ReferencesPath  string `toml:"references_path"`
	ColorSchemePath string `toml:"color_scheme_path"`
	AuthoringPath   string `toml:"authoring_path"`
	IncludePDF      bool   `toml:"include_pdf"`
	LinkCitations   bool   `toml:"link_citations"`
}

// PDFConfig mirrors the print options handed to the headless browser.
type PDFConfig struct {
	Format          string `toml:"format"`
	Margin          string `toml:"margin"`
	PrintBackground bool   `toml:"print_background"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

type ChartConfig struct {
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	Padding       int    `toml:"padding"`
	LegendTitle   string `toml:"legend_title"`
	IncludeValues bool   `toml:"include_values"`
	ValueField    string `toml:"value_field"`
	DropUnnamed   bool   `toml:"drop_unnamed"`
}

// ReferencesConfig extends the built-in assembly method → citation key table.
// Method names are matched case-insensitively.
type ReferencesConfig struct {
	AssemblyMethods map[string]string `toml:"assembly_methods"`
}

type LedgerConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type HTTPConfig struct {
	Addr string `toml:"addr"`
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
