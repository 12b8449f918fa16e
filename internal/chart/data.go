// Package chart builds pie chart slices from grouped counts and renders
// them as static SVG or an interactive page.
package chart

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"genomereport/internal/logger"

	"github.com/tidwall/gjson"
)

// Slice is one wedge of a pie chart.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// Palette maps exact category names to colors.
type Palette map[string]string

// schemeCategory10 colors categories that the palette does not name,
// cycled by input position.
var schemeCategory10 = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

var defaultPalette = Palette{
	"Cellular Processes":                  "#1f77b4",
	"Cell Envelope":                       "#aec7e8",
	"DNA Processing":                      "#ff7f0e",
	"Energy":                              "#ffbb78",
	"Membrane Transport":                  "#2ca02c",
	"Metabolism":                          "#98df8a",
	"Miscellaneous":                       "#d62728",
	"Protein Processing":                  "#ff9896",
	"Regulation And Cell Signaling":       "#9467bd",
	"RNA Processing":                      "#c5b0d5",
	"Stress Response, Defense, Virulence": "#8c564b",
}

// DefaultPalette returns a copy of the built-in subsystem superclass colors.
func DefaultPalette() Palette {
	out := make(Palette, len(defaultPalette))
	for k, v := range defaultPalette {
		out[k] = v
	}
	return out
}

// PaletteOrDefault loads path, or falls back to DefaultPalette with a
// warning when no scheme is given.
func PaletteOrDefault(path string) (Palette, error) {
	if strings.TrimSpace(path) == "" {
		logger.Warnf("no color scheme given, using default subsystem colors")
		return DefaultPalette(), nil
	}
	return LoadPalette(path)
}

// LoadPalette reads a JSON object of name → color.
func LoadPalette(path string) (Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read color scheme %s: %w", path, err)
	}
	return ParsePalette(data)
}

func ParsePalette(data []byte) (Palette, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("color scheme is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("color scheme must be a JSON object")
	}
	out := Palette{}
	root.ForEach(func(key, value gjson.Result) bool {
		if color := strings.TrimSpace(value.String()); color != "" {
			out[key.String()] = color
		}
		return true
	})
	return out, nil
}

// BuildOptions controls how grouped counts become slices.
type BuildOptions struct {
	Palette Palette
	// ValueField names the counter to use when a category holds an object,
	// e.g. gene_count. When absent the object's numeric children are summed.
	ValueField  string
	DropUnnamed bool
}

// Build flattens src (category → number or nested counts) into slices in
// descending value order; equal values keep input order. A zero total
// yields no slices.
func Build(src gjson.Result, opt BuildOptions) []Slice {
	var (
		slices []Slice
		index  = map[string]int{}
		pos    int
	)
	src.ForEach(func(key, value gjson.Result) bool {
		name := strings.TrimSpace(key.String())
		v := categoryValue(value, opt.ValueField)
		if at, ok := index[name]; ok {
			slices[at].Value += v
			return true
		}
		index[name] = len(slices)
		slices = append(slices, Slice{Name: name, Value: v, Color: colorFor(name, pos, opt.Palette)})
		pos++
		return true
	})
	if opt.DropUnnamed {
		kept := slices[:0]
		for _, s := range slices {
			if s.Name != "" {
				kept = append(kept, s)
			}
		}
		slices = kept
	}
	if Total(slices) == 0 {
		return []Slice{}
	}
	sort.SliceStable(slices, func(i, j int) bool { return slices[i].Value > slices[j].Value })
	return slices
}

// Total sums slice values; NaN, infinite and negative values count as zero.
func Total(slices []Slice) float64 {
	var total float64
	for _, s := range slices {
		total += nonNegative(s.Value)
	}
	return total
}

func categoryValue(v gjson.Result, field string) float64 {
	switch {
	case v.Type == gjson.Number:
		return nonNegative(v.Num)
	case v.IsObject():
		if field != "" {
			if f := v.Get(field); f.Type == gjson.Number {
				return nonNegative(f.Num)
			}
		}
		var sum float64
		v.ForEach(func(_, child gjson.Result) bool {
			if child.Type == gjson.Number {
				sum += nonNegative(child.Num)
			}
			return true
		})
		return sum
	case v.IsArray():
		// [name, count] pairs from facet responses
		arr := v.Array()
		if len(arr) == 2 && arr[1].Type == gjson.Number {
			return nonNegative(arr[1].Num)
		}
	}
	return 0
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func colorFor(name string, pos int, palette Palette) string {
	if c, ok := palette[name]; ok && c != "" {
		return c
	}
	return schemeCategory10[pos%len(schemeCategory10)]
}
