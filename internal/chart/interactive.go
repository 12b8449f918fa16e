package chart

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const interactiveChartID = "subsystem-pie"

// InteractiveOptions configures the standalone echarts page.
type InteractiveOptions struct {
	Title         string
	Width         int
	Height        int
	IncludeValues bool
}

// RenderInteractive writes a self-contained HTML page with an echarts pie of
// slices. The chart ID is fixed so repeated renders are identical.
func RenderInteractive(slices []Slice, opt InteractiveOptions) ([]byte, error) {
	if opt.Width <= 0 {
		opt.Width = 900
	}
	if opt.Height <= 0 {
		opt.Height = 600
	}
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID:   interactiveChartID,
			PageTitle: opt.Title,
			Width:     fmt.Sprintf("%dpx", opt.Width),
			Height:    fmt.Sprintf("%dpx", opt.Height),
		}),
		charts.WithTitleOpts(opts.Title{Title: opt.Title, Left: "left"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Orient: "vertical", Left: "right", Top: "middle"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)
	data := make([]opts.PieData, 0, len(slices))
	for i, s := range slices {
		data = append(data, opts.PieData{
			Name:      Label(s, opt.IncludeValues),
			Value:     s.Value,
			ItemStyle: &opts.ItemStyle{Color: sliceColor(s, i), Opacity: opts.Float(0.8)},
		})
	}
	pie.AddSeries("subsystems", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: "60%"}),
	)
	var buf bytes.Buffer
	if err := pie.Render(&buf); err != nil {
		return nil, fmt.Errorf("chart: render interactive page: %w", err)
	}
	return buf.Bytes(), nil
}
