package xref

import (
	"fmt"

	"golang.org/x/net/html"
)

// Marker tags numbered by Number.
const (
	TagTableRef = "table-ref"
	TagTableNum = "table-num"
	TagFigRef   = "fig-ref"
	TagFigNum   = "fig-num"
)

var numberFormats = []struct {
	tag    string
	format string
}{
	{TagTableRef, "Table %d"},
	{TagTableNum, "Table %d."},
	{TagFigRef, "Figure %d"},
	{TagFigNum, "Figure %d"},
}

// Counts reports how many markers of each tag were numbered.
type Counts map[string]int

// Number replaces the content of every table/figure marker with its label.
// Each tag keeps its own counter, so table-ref and table-num are numbered
// independently in document order.
func Number(root *html.Node) Counts {
	counts := Counts{}
	for _, f := range numberFormats {
		nodes := collect(root, f.tag)
		for i, n := range nodes {
			setText(n, fmt.Sprintf(f.format, i+1))
		}
		counts[f.tag] = len(nodes)
	}
	return counts
}
