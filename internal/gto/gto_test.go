package gto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "id": "520456.3",
  "scientific_name": "Example bacterium",
  "genome_quality_measure": {
    "feature_summary": {"cds": 10, "rRNA": 0},
    "protein_summary": {"hypothetical": 4},
    "specialty_gene_summary": {"Virulence Factor: VFDB": 3},
    "subsystem_summary": {"Metabolism": {"gene_count": 20}}
  },
  "classifications": [{"name": "ampicillin", "sensitivity": "resistant"}]
}`

func TestParseReadsSections(t *testing.T) {
	g, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, "520456.3", g.ID())
	assert.Equal(t, "Example bacterium", g.Name())
	assert.EqualValues(t, 10, g.Section(FeatureSummary).Get("cds").Int())
	assert.Len(t, g.Classifications().Array(), 1)
	assert.Equal(t, "520456.3", g.Map()["id"])
}

func TestParseAcceptsQualityAlias(t *testing.T) {
	g, err := Parse([]byte(`{"quality": {"feature_summary": {"cds": 2}}}`))
	require.NoError(t, err)
	assert.EqualValues(t, 2, g.Section(FeatureSummary).Get("cds").Int())
	assert.False(t, g.Section(SubsystemSummary).Exists())
}

func TestParseRejectsMissingQuality(t *testing.T) {
	_, err := Parse([]byte(`{"id": "1"}`))
	assert.ErrorIs(t, err, ErrNoQuality)
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	assert.Error(t, err)

	_, err = Parse([]byte(`[1,2]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"genome_quality_measure": {"feature_summary": {"cds": {"x": 1}}}}`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gto.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	g, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, g.Source())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
