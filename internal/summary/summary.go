// Package summary turns the loosely typed counter objects of a genome object
// into sorted display rows.
package summary

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Row is one labelled counter.
type Row struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Label maps a source field to its display name.
type Label struct {
	Key  string
	Name string
}

var FeatureLabels = []Label{
	{Key: "cds", Name: "CDS"},
	{Key: "partial_cds", Name: "Partial CDS"},
	{Key: "rRNA", Name: "rRNA"},
	{Key: "tRNA", Name: "tRNA"},
	{Key: "misc_RNA", Name: "Miscellaneous RNA"},
	{Key: "repeat_region", Name: "Repeat Regions"},
}

var ProteinLabels = []Label{
	{Key: "hypothetical", Name: "Hypothetical proteins"},
	{Key: "function", Name: "Proteins with functional assignments"},
	{Key: "ec_assignment", Name: "Proteins with EC number assignments"},
	{Key: "go_assignment", Name: "Proteins with GO assignments"},
	{Key: "pathway_assignment", Name: "Proteins with Pathway assignments"},
	{Key: "plfam_assignment", Name: "Proteins with PATRIC genus-specific family (PLfam) assignments"},
	{Key: "pgfam_assignment", Name: "Proteins with PATRIC cross-genus family (PGfam) assignments"},
}

// Counts reads every labelled field from src, defaulting to 0, and sorts the
// rows by count descending. Ties keep label order.
func Counts(src gjson.Result, labels []Label) []Row {
	rows := make([]Row, 0, len(labels))
	for _, l := range labels {
		rows = append(rows, Row{Name: l.Name, Count: Count(src.Get(l.Key))})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	return rows
}

func Features(featureSummary gjson.Result) []Row {
	return Counts(featureSummary, FeatureLabels)
}

func Proteins(proteinSummary gjson.Result) []Row {
	return Counts(proteinSummary, ProteinLabels)
}

// Count coerces a counter value. Missing, null, NaN, negative and
// non-numeric values read as 0.
func Count(v gjson.Result) int64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return int64(math.Round(f))
}
