package stats

import (
	"fmt"
	"image/color"
	"io"
	"slices"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/nibzard/gridmark/internal/grid"
)

var (
	yesColor = color.RGBA{R: 46, G: 160, B: 67, A: 255}
	noColor  = color.RGBA{R: 207, G: 34, B: 46, A: 255}
)

// ChartFormats lists the image formats Chart can write.
var ChartFormats = []string{"png", "svg", "pdf"}

// Chart draws side-by-side yes and no bars for every column of g and writes
// the image to w in the given format.
func Chart(w io.Writer, g grid.Grid, format string, width, height vg.Length) error {
	format, err := ParseChartFormat(format)
	if err != nil {
		return err
	}

	summary := Summarize(g)
	if len(summary.Cols) == 0 {
		return fmt.Errorf("grid has no columns to chart")
	}

	yes := make(plotter.Values, len(summary.Cols))
	no := make(plotter.Values, len(summary.Cols))
	names := make([]string, len(summary.Cols))
	for i, col := range summary.Cols {
		yes[i] = float64(col.Counts.Yes)
		no[i] = float64(col.Counts.No)
		names[i] = fmt.Sprintf("col %d", col.Index)
	}

	p := plot.New()
	p.Title.Text = "Responses per column"
	p.Y.Label.Text = "cells"
	p.Y.Min = 0

	barWidth := vg.Points(14)
	yesBars, err := plotter.NewBarChart(yes, barWidth)
	if err != nil {
		return fmt.Errorf("build yes bars: %w", err)
	}
	yesBars.Color = yesColor
	yesBars.LineStyle.Width = vg.Length(0)
	yesBars.Offset = -barWidth / 2

	noBars, err := plotter.NewBarChart(no, barWidth)
	if err != nil {
		return fmt.Errorf("build no bars: %w", err)
	}
	noBars.Color = noColor
	noBars.LineStyle.Width = vg.Length(0)
	noBars.Offset = barWidth / 2

	p.Add(yesBars, noBars)
	p.Legend.Add("yes", yesBars)
	p.Legend.Add("no", noBars)
	p.Legend.Top = true
	p.NominalX(names...)

	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// ParseChartFormat normalizes a format name or file extension such as
// ".svg" and rejects formats Chart cannot write.
func ParseChartFormat(format string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if !slices.Contains(ChartFormats, format) {
		return "", fmt.Errorf("unsupported chart format %q (expected %s)", format, strings.Join(ChartFormats, "|"))
	}
	return format, nil
}
