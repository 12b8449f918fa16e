package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestBuildSortsDescendingAndStable(t *testing.T) {
	src := gjson.Parse(`{
		"Energy": {"subsystem_count": 3, "gene_count": 40},
		"Metabolism": {"subsystem_count": 9, "gene_count": 120},
		"DNA Processing": {"subsystem_count": 2, "gene_count": 40},
		"Miscellaneous": 5
	}`)
	slices := Build(src, BuildOptions{ValueField: "gene_count"})

	require.Len(t, slices, 4)
	assert.Equal(t, "Metabolism", slices[0].Name)
	assert.Equal(t, "Energy", slices[1].Name)
	assert.Equal(t, "DNA Processing", slices[2].Name)
	assert.Equal(t, "Miscellaneous", slices[3].Name)
	assert.Equal(t, 120.0, slices[0].Value)
	for i := 1; i < len(slices); i++ {
		assert.GreaterOrEqual(t, slices[i-1].Value, slices[i].Value)
	}
}

func TestBuildSumsNestedCountsWithoutValueField(t *testing.T) {
	slices := Build(gjson.Parse(`{"A": {"x": 2, "y": 3, "label": "skip"}}`), BuildOptions{})
	require.Len(t, slices, 1)
	assert.Equal(t, 5.0, slices[0].Value)
}

func TestBuildColors(t *testing.T) {
	src := gjson.Parse(`{"Named": 1, "Other": 2, "Third": 3}`)
	slices := Build(src, BuildOptions{Palette: Palette{"Named": "#000000"}})

	colors := map[string]string{}
	for _, s := range slices {
		colors[s.Name] = s.Color
	}
	assert.Equal(t, "#000000", colors["Named"])
	assert.Equal(t, schemeCategory10[1], colors["Other"])
	assert.Equal(t, schemeCategory10[2], colors["Third"])
}

func TestBuildDropsUnnamed(t *testing.T) {
	src := gjson.Parse(`{"": 10, "A": 1}`)

	kept := Build(src, BuildOptions{})
	assert.Len(t, kept, 2)

	dropped := Build(src, BuildOptions{DropUnnamed: true})
	require.Len(t, dropped, 1)
	assert.Equal(t, "A", dropped[0].Name)
}

func TestBuildZeroTotalIsEmpty(t *testing.T) {
	slices := Build(gjson.Parse(`{"A": 0, "B": {"gene_count": 0}}`), BuildOptions{ValueField: "gene_count"})
	assert.NotNil(t, slices)
	assert.Empty(t, slices)

	assert.Empty(t, Build(gjson.Result{}, BuildOptions{}))
}

func TestBuildIgnoresNegativeValues(t *testing.T) {
	slices := Build(gjson.Parse(`{"A": -3, "B": 2}`), BuildOptions{})
	require.Len(t, slices, 2)
	assert.Equal(t, 0.0, slices[1].Value)
}

func TestLoadPalette(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colors.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Metabolism": "#123456", "Empty": ""}`), 0o644))

	p, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, Palette{"Metabolism": "#123456"}, p)

	_, err = ParsePalette([]byte(`[]`))
	assert.Error(t, err)
	_, err = LoadPalette(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestDefaultPaletteIsCopy(t *testing.T) {
	p := DefaultPalette()
	p["Metabolism"] = "changed"
	assert.NotEqual(t, "changed", DefaultPalette()["Metabolism"])
}

func TestPaletteOrDefault(t *testing.T) {
	p, err := PaletteOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette(), p)

	_, err = PaletteOrDefault(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
