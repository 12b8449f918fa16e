package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// category20 pairs a dark and light variant of ten hues; slices without a
// color take the entry at their position, wrapping past the end.
var category20 = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

const (
	sliceOpacity  = "0.8"
	legendRow     = 20
	legendSwatch  = 12
	legendGap     = 10
	legendTextDX  = 18
	legendTextDY  = 10
	fullTurn      = 2 * math.Pi
	angleEpsilon  = 1e-9
	numberDecimal = 3
)

// RenderOptions sizes the pie and configures the legend.
type RenderOptions struct {
	Width         int
	Height        int
	Padding       int
	IncludeValues bool
	LegendTitle   string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.Width <= 0 {
		o.Width = 200
	}
	if o.Height <= 0 {
		o.Height = 200
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	return o
}

// PositionColor is the fallback color for the slice at index i.
func PositionColor(i int) string {
	if i < 0 {
		i = -i
	}
	return category20[i%len(category20)]
}

// RenderSVG draws slices in the given order as a pie with a legend below it.
// Identical input produces identical output; a zero total draws empty
// segments and a full legend. Unusable values draw as zero.
func RenderSVG(slices []Slice, opt RenderOptions) (string, error) {
	opt = opt.withDefaults()
	radius := float64(min(opt.Width-opt.Padding, opt.Height-opt.Padding)) / 2
	if radius <= 0 {
		return "", fmt.Errorf("chart: padding %d leaves no room for a %dx%d pie", opt.Padding, opt.Width, opt.Height)
	}

	legendTop := opt.Height + legendGap
	rows := len(slices)
	if opt.LegendTitle != "" {
		rows++
	}
	totalHeight := legendTop + rows*legendRow

	svg := element("svg",
		"xmlns", "http://www.w3.org/2000/svg",
		"class", "pie",
		"width", strconv.Itoa(opt.Width),
		"height", strconv.Itoa(totalHeight),
		"viewBox", fmt.Sprintf("0 0 %d %d", opt.Width, totalHeight),
	)

	pie := element("g", "transform", fmt.Sprintf("translate(%s,%s)", num(float64(opt.Width)/2), num(float64(opt.Height)/2)))
	svg.AppendChild(pie)

	total := Total(slices)
	start := 0.0
	for i, s := range slices {
		sweep := 0.0
		if total > 0 {
			sweep = nonNegative(s.Value) / total * fullTurn
		}
		end := start + sweep
		path := element("path",
			"d", arcPath(start, end, radius),
			"fill", sliceColor(s, i),
			"opacity", sliceOpacity,
			"stroke", "white",
		)
		group := element("g")
		group.AppendChild(path)
		pie.AppendChild(group)
		start = end
	}

	legend := element("g", "class", "legend", "transform", fmt.Sprintf("translate(0,%d)", legendTop))
	svg.AppendChild(legend)
	y := 0
	if opt.LegendTitle != "" {
		title := element("text", "class", "legend-title", "x", "0", "y", strconv.Itoa(legendTextDY+2))
		title.AppendChild(text(opt.LegendTitle))
		legend.AppendChild(title)
		y += legendRow
	}
	for i, s := range slices {
		key := element("g", "class", "key", "transform", fmt.Sprintf("translate(0,%d)", y))
		key.AppendChild(element("rect",
			"class", "key-box",
			"width", strconv.Itoa(legendSwatch),
			"height", strconv.Itoa(legendSwatch),
			"fill", sliceColor(s, i),
		))
		label := element("text", "class", "name", "x", strconv.Itoa(legendTextDX), "y", strconv.Itoa(legendTextDY))
		label.AppendChild(text(Label(s, opt.IncludeValues)))
		key.AppendChild(label)
		legend.AppendChild(key)
		y += legendRow
	}

	var b strings.Builder
	if err := html.Render(&b, svg); err != nil {
		return "", fmt.Errorf("chart: render svg: %w", err)
	}
	return b.String(), nil
}

// Label is the legend text for a slice.
func Label(s Slice, includeValue bool) string {
	if !includeValue {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, num(s.Value))
}

func sliceColor(s Slice, i int) string {
	if c := strings.TrimSpace(s.Color); c != "" {
		return c
	}
	return PositionColor(i)
}

// arcPath follows the d3 arc convention: angles run clockwise from twelve
// o'clock around the origin.
func arcPath(start, end, r float64) string {
	sweep := end - start
	if sweep <= angleEpsilon {
		return ""
	}
	rs := num(r)
	if sweep >= fullTurn-angleEpsilon {
		return fmt.Sprintf("M0,%sA%s,%s,0,1,1,0,%sA%s,%s,0,1,1,0,%sZ",
			num(-r), rs, rs, rs, rs, rs, num(-r))
	}
	large := 0
	if sweep > math.Pi {
		large = 1
	}
	x0, y0 := r*math.Sin(start), -r*math.Cos(start)
	x1, y1 := r*math.Sin(end), -r*math.Cos(end)
	return fmt.Sprintf("M%s,%sA%s,%s,0,%d,1,%s,%sL0,0Z",
		num(x0), num(y0), rs, rs, large, num(x1), num(y1))
}

func num(v float64) string {
	scale := math.Pow10(numberDecimal)
	v = math.Round(v*scale) / scale
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
