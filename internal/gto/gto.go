// Package gto loads Genome Typed Objects, the aggregated per-genome JSON
// record the report is built from.
package gto

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"genomereport/internal/logger"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// ErrNoQuality is returned when neither genome_quality_measure nor quality is present.
var ErrNoQuality = errors.New("gto: genome_quality_measure (or quality) is required")

//go:embed schema.json
var schemaJSON string

var (
	schemaOnce     sync.Once
	schemaCompiled *jsonschema.Schema
	schemaErr      error
)

// Sections under the quality object.
const (
	FeatureSummary       = "feature_summary"
	ProteinSummary       = "protein_summary"
	SpecialtyGeneSummary = "specialty_gene_summary"
	SubsystemSummary     = "subsystem_summary"
	AMRGeneSummary       = "amr_gene_summary"
)

var requiredSections = []string{SubsystemSummary, FeatureSummary, ProteinSummary, SpecialtyGeneSummary}

// Genome wraps one parsed GTO. Field access goes through gjson so absent or
// oddly typed fields read as zero values instead of failing.
type Genome struct {
	raw     gjson.Result
	quality gjson.Result
	source  string
}

// Load reads and validates the GTO at path.
func Load(path string) (*Genome, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gto: input path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genome object %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse genome object %s: %w", path, err)
	}
	g.source = path
	return g, nil
}

// Parse validates data against the embedded schema and wraps it.
func Parse(data []byte) (*Genome, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("gto: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("gto: top level must be an object")
	}
	quality := root.Get("genome_quality_measure")
	if !quality.Exists() {
		quality = root.Get("quality")
	}
	if !quality.Exists() {
		return nil, ErrNoQuality
	}
	if err := validate(data); err != nil {
		return nil, err
	}
	g := &Genome{raw: root, quality: quality}
	for _, section := range requiredSections {
		if !quality.Get(section).Exists() {
			logger.Warnf("genome object has no %s; rendering it empty", section)
		}
	}
	return g, nil
}

func validate(data []byte) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("gto.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schemaCompiled, schemaErr = compiler.Compile("gto.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("gto: compile schema: %w", schemaErr)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("gto: decode: %w", err)
	}
	if err := schemaCompiled.Validate(doc); err != nil {
		return fmt.Errorf("gto: %w", err)
	}
	return nil
}

// Source is the file the genome was loaded from, if any.
func (g *Genome) Source() string {
	if g == nil {
		return ""
	}
	return g.source
}

func (g *Genome) Raw() gjson.Result {
	if g == nil {
		return gjson.Result{}
	}
	return g.raw
}

// Quality is the genome_quality_measure (or quality) object.
func (g *Genome) Quality() gjson.Result {
	if g == nil {
		return gjson.Result{}
	}
	return g.quality
}

// Section returns one named summary under the quality object.
func (g *Genome) Section(name string) gjson.Result {
	return g.Quality().Get(name)
}

// Get reads an arbitrary gjson path from the top level.
func (g *Genome) Get(path string) gjson.Result {
	return g.Raw().Get(path)
}

func (g *Genome) ID() string {
	return strings.TrimSpace(g.Get("id").String())
}

func (g *Genome) Name() string {
	if name := strings.TrimSpace(g.Get("scientific_name").String()); name != "" {
		return name
	}
	return strings.TrimSpace(g.Get("meta.genome_name").String())
}

// Classifications is the top-level classifications array, possibly empty.
func (g *Genome) Classifications() gjson.Result {
	return g.Get("classifications")
}

// Map returns the whole document as plain Go values for templates.
func (g *Genome) Map() map[string]any {
	if g == nil {
		return map[string]any{}
	}
	out, ok := g.raw.Value().(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return out
}
