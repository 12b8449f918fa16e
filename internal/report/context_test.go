package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genomereport/internal/gto"
)

func TestNewContextFillsDefaults(t *testing.T) {
	g, err := gto.Parse([]byte(`{"genome_quality_measure": {"feature_summary": {"cds": 10, "rRNA": 0}}}`))
	require.NoError(t, err)

	c := NewContext(g, Inputs{Authoring: DefaultAuthoring(), Now: fixedNow()})
	assert.Equal(t, "Genome Report", c.Title)
	assert.Equal(t, "2024/05/06", c.ReportDate)
	require.Len(t, c.Features, 6)
	assert.Equal(t, "CDS", c.Features[0].Name)
	assert.EqualValues(t, 10, c.Features[0].Count)
	for _, row := range c.Features[1:] {
		assert.Zero(t, row.Count)
	}
	assert.Len(t, c.Proteins, 7)
	assert.Empty(t, c.SpecialtyGenes)
	assert.True(t, c.AMR.Empty())
	assert.NotNil(t, c.Meta)
	assert.NotNil(t, c.Wiki)
	assert.NotNil(t, c.Subsystems)
	assert.Empty(t, c.AssemblyMethod)
}

func TestNewContextReadsGenome(t *testing.T) {
	g, err := gto.Parse([]byte(sampleGenome))
	require.NoError(t, err)

	c := NewContext(g, Inputs{Authoring: Authoring{Title: "T", Organization: "Org"}, SubsystemSVG: "<svg></svg>", Now: fixedNow()})
	assert.Equal(t, "520456.3", c.ID)
	assert.Equal(t, "Example bacterium", c.Name)
	assert.Equal(t, "SPAdes", c.AssemblyMethod)
	assert.Equal(t, "Org", c.Organization)
	assert.EqualValues(t, "<svg></svg>", c.SubsystemSVG)
	assert.Equal(t, []string{"ampicillin"}, c.AMR.Resistant)
	require.Len(t, c.SpecialtyGenes, 2)
	assert.Equal(t, "Antibiotic Resistance", c.SpecialtyGenes[0].Type)
}

func TestLoadAuthoring(t *testing.T) {
	a, err := LoadAuthoring("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAuthoring(), a)

	dir := t.TempDir()
	path := writeFile(t, dir, "authoring.yaml", "title: Isolate report\norganization: Lab\nauthor:\n  name: Sam\n  email: sam@example.org\n")
	a, err = LoadAuthoring(path)
	require.NoError(t, err)
	assert.Equal(t, "Isolate report", a.Title)
	assert.Equal(t, "Sam", a.Author.Name)

	bad := writeFile(t, dir, "bad.yaml", "title: x\nsubtitle: y\n")
	_, err = LoadAuthoring(bad)
	assert.Error(t, err)

	_, err = LoadAuthoring(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
