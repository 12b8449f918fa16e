package xref

import (
	"sort"
	"strings"
)

// builtinMethods maps assembly program names to their citation keys.
var builtinMethods = map[string]string{
	"a5-miseq":  "Coil2015",
	"abyss":     "Simpson2009",
	"canu":      "Koren2017",
	"flye":      "Kolmogorov2019",
	"idba":      "Peng2012",
	"idba-ud":   "Peng2012",
	"megahit":   "Li2015",
	"miniasm":   "Li2016",
	"racon":     "Vaser2017",
	"pilon":     "Walker2014",
	"spades":    "Bankevich2012",
	"unicycler": "Wick2017",
	"velvet":    "Zerbino2008",
}

// Methods resolves assembly method names to citation keys, case-insensitively.
type Methods map[string]string

// NewMethods layers extra (method → key) over the built-in table.
func NewMethods(extra map[string]string) Methods {
	m := make(Methods, len(builtinMethods)+len(extra))
	for k, v := range builtinMethods {
		m[k] = v
	}
	for k, v := range extra {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		m[k] = v
	}
	return m
}

func (m Methods) Lookup(method string) (string, bool) {
	key, ok := m[strings.ToLower(strings.TrimSpace(method))]
	return key, ok && key != ""
}

// Names lists known methods in sorted order.
func (m Methods) Names() []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
