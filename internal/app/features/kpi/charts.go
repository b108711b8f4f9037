// internal/app/features/kpi/charts.go
package kpi

import (
	"bytes"
	"html/template"
	"io"

	kpistore "github.com/dalemusser/groomhub/internal/app/store/kpi"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const chartHeight = "320px"

func chartOptions(title string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

// barChartHTML renders a monthly bar chart as an embeddable fragment.
func barChartHTML(title, seriesName string, points []kpistore.MonthPoint) (template.HTML, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(chartOptions(title)...)
	bar.SetXAxis(monthLabels(points))
	bar.AddSeries(seriesName, toBarData(points))
	return renderChart(bar)
}

// lineChartHTML renders a monthly line chart as an embeddable fragment.
func lineChartHTML(title, seriesName string, points []kpistore.MonthPoint) (template.HTML, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(chartOptions(title)...)
	line.SetXAxis(monthLabels(points))
	line.AddSeries(seriesName, toLineData(points))
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func monthLabels(points []kpistore.MonthPoint) []string {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Month
	}
	return labels
}

func toBarData(points []kpistore.MonthPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, p := range points {
		data[i] = opts.BarData{Name: p.Month, Value: p.Value}
	}
	return data
}

func toLineData(points []kpistore.MonthPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		data[i] = opts.LineData{Name: p.Month, Value: p.Value}
	}
	return data
}

func renderChart(renderable interface{ Render(io.Writer) error }) (template.HTML, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
