package report

import (
	"html/template"
	"strings"
	"time"

	"genomereport/internal/chart"
	"genomereport/internal/gto"
	"genomereport/internal/summary"
)

// Context is everything the template sees. It is built once per run and
// not modified afterwards.
type Context struct {
	Title        string
	Organization string
	Author       Author
	Notes        string
	ReportDate   string
	GeneratedAt  time.Time

	ID     string
	Name   string
	Genome map[string]any
	Meta   map[string]any

	Features        []summary.Row
	Proteins        []summary.Row
	SpecialtyGenes  []summary.FacetRow
	AMR             summary.AMR
	AMRGenes        []summary.AMRGeneRow
	Subsystems      []chart.Slice
	ProteinFamilies []any
	Wiki            map[string]any
	AssemblyMethod  string

	SubsystemSVG template.HTML
	CircularSVG  template.HTML
}

// Inputs are the pieces of a Context that do not come from the genome object.
type Inputs struct {
	Authoring    Authoring
	Subsystems   []chart.Slice
	SubsystemSVG string
	CircularSVG  string
	Now          time.Time
}

// NewContext derives the template context from a genome object. Missing
// optional sections become empty values.
func NewContext(g *gto.Genome, in Inputs) Context {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	doc := g.Map()
	c := Context{
		Title:        in.Authoring.Title,
		Organization: in.Authoring.Organization,
		Author:       in.Authoring.Author,
		Notes:        in.Authoring.Notes,
		ReportDate:   now.Format("2006/01/02"),
		GeneratedAt:  now,

		ID:     g.ID(),
		Name:   g.Name(),
		Genome: doc,
		Meta:   asMap(doc["meta"]),

		Features:       summary.Features(g.Section(gto.FeatureSummary)),
		Proteins:       summary.Proteins(g.Section(gto.ProteinSummary)),
		SpecialtyGenes: summary.SpecialtyGenes(g.Section(gto.SpecialtyGeneSummary)),
		AMR:            summary.Phenotypes(g.Classifications()),
		AMRGenes:       summary.AMRGenes(g.Section(gto.AMRGeneSummary)),
		Subsystems:     in.Subsystems,
		Wiki:           asMap(doc["wiki"]),
		AssemblyMethod: assemblyMethod(g),

		SubsystemSVG: template.HTML(in.SubsystemSVG),
		CircularSVG:  template.HTML(in.CircularSVG),
	}
	if fams, ok := doc["protein_families"].([]any); ok {
		c.ProteinFamilies = fams
	}
	if c.Subsystems == nil {
		c.Subsystems = []chart.Slice{}
	}
	return c
}

func assemblyMethod(g *gto.Genome) string {
	for _, path := range []string{"assembly_method", "meta.assembly_method", "genome_quality_measure.assembly_method"} {
		if m := strings.TrimSpace(g.Get(path).String()); m != "" {
			// "SPAdes v3.12" → "SPAdes"
			if name, _, ok := strings.Cut(m, " "); ok {
				return name
			}
			return m
		}
	}
	return ""
}

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
