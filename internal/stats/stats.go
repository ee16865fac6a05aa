// Package stats summarizes grid responses and renders them as charts.
package stats

import (
	"gonum.org/v1/gonum/stat"

	"github.com/nibzard/gridmark/internal/grid"
)

// Line summarizes one row or column.
type Line struct {
	Index  int
	Counts grid.Counts
	Mean   float64 // mean cell value, in [-1, 1] for valid grids
	StdDev float64 // sample standard deviation; 0 with fewer than two cells
}

// Summary holds per-row and per-column tallies.
type Summary struct {
	Rows  []Line
	Cols  []Line
	Total grid.Counts
}

// Summarize tallies g by row and by column. Short rows contribute only the
// cells they have.
func Summarize(g grid.Grid) *Summary {
	width := 0
	for _, row := range g {
		if len(row) > width {
			width = len(row)
		}
	}

	summary := &Summary{
		Rows:  make([]Line, len(g)),
		Cols:  make([]Line, width),
		Total: g.Counts(),
	}

	for r, row := range g {
		summary.Rows[r] = summarizeLine(r, row)
	}

	for c := 0; c < width; c++ {
		column := make([]grid.Cell, 0, len(g))
		for _, row := range g {
			if c < len(row) {
				column = append(column, row[c])
			}
		}
		summary.Cols[c] = summarizeLine(c, column)
	}

	return summary
}

func summarizeLine(index int, cells []grid.Cell) Line {
	line := Line{Index: index}
	values := make([]float64, len(cells))
	for i, cell := range cells {
		line.Counts.Add(cell)
		values[i] = float64(cell)
	}
	switch len(values) {
	case 0:
	case 1:
		line.Mean = values[0]
	default:
		line.Mean, line.StdDev = stat.MeanStdDev(values, nil)
	}
	return line
}
