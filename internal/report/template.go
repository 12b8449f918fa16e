package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"strings"
)

//go:embed templates/genome-report.html
var defaultTemplate string

// LoadTemplate parses the report template at path with the report helpers
// installed. An empty path uses the built-in template.
func LoadTemplate(path string) (*template.Template, error) {
	src := defaultTemplate
	name := "genome-report"
	if p := strings.TrimSpace(path); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", p, err)
		}
		src = string(raw)
	}
	tmpl, err := template.New(name).Funcs(FuncMap()).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return tmpl, nil
}
