package cmd

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"gonum.org/v1/plot/vg"

	"github.com/nibzard/gridmark/internal/config"
	"github.com/nibzard/gridmark/internal/grid"
	"github.com/nibzard/gridmark/internal/stats"
)

const defaultChartFile = "grid.png"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

// statsCommand prints per-column and per-row tallies.
func statsCommand(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark stats", flag.ContinueOnError)
	rowsToo := fs.Bool("rows", true, "Include per-row tallies")
	if err := fs.Parse(args); err != nil {
		return err
	}
	gridPath, err := gridPathArg(cfg, fs.Args())
	if err != nil {
		return err
	}

	g, err := grid.Load(gridPath)
	if err != nil {
		return err
	}
	summary := stats.Summarize(g)

	fmt.Fprintf(out, "Grid: %s (%d rows x %d cols)\n", gridPath, g.Rows(), g.Cols())
	fmt.Fprintf(out, "Total: %d yes, %d no, %d skip", summary.Total.Yes, summary.Total.No, summary.Total.Skip)
	if summary.Total.Other > 0 {
		fmt.Fprintf(out, ", %d other", summary.Total.Other)
	}
	fmt.Fprintln(out)

	if len(summary.Cols) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Columns:")
		fmt.Fprintln(out, linesTable("Col", summary.Cols, summary.Total.Other > 0))
	}
	if *rowsToo && len(summary.Rows) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Rows:")
		fmt.Fprintln(out, linesTable("Row", summary.Rows, summary.Total.Other > 0))
	}
	return nil
}

func linesTable(label string, lines []stats.Line, withOther bool) string {
	headers := []string{label, "Yes", "No", "Skip"}
	if withOther {
		headers = append(headers, "Other")
	}
	headers = append(headers, "Mean", "StdDev")

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
		})

	for _, line := range lines {
		cells := []string{
			strconv.Itoa(line.Index),
			strconv.Itoa(line.Counts.Yes),
			strconv.Itoa(line.Counts.No),
			strconv.Itoa(line.Counts.Skip),
		}
		if withOther {
			cells = append(cells, strconv.Itoa(line.Counts.Other))
		}
		cells = append(cells,
			strconv.FormatFloat(line.Mean, 'f', 2, 64),
			strconv.FormatFloat(line.StdDev, 'f', 2, 64),
		)
		t.Row(cells...)
	}
	return t.Render()
}

// chartCommand renders a yes/no bar chart per column.
func chartCommand(cfg *config.Config, logger *log.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark chart", flag.ContinueOnError)
	output := fs.String("o", defaultChartFile, "Output file; format from extension (png|svg|pdf)")
	width := fs.Float64("width", 6, "Image width in inches")
	height := fs.Float64("height", 4, "Image height in inches")
	if err := fs.Parse(args); err != nil {
		return err
	}
	gridPath, err := gridPathArg(cfg, fs.Args())
	if err != nil {
		return err
	}
	if *width <= 0 || *height <= 0 {
		return fmt.Errorf("chart size must be positive, got %gx%g", *width, *height)
	}

	path := resolvePath(cfg, *output)
	format, err := stats.ParseChartFormat(filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("chart output %s: %w", path, err)
	}

	g, err := grid.Load(gridPath)
	if err != nil {
		return err
	}

	err = grid.WriteFileAtomic(path, func(w io.Writer) error {
		return stats.Chart(w, g, format, vg.Length(*width)*vg.Inch, vg.Length(*height)*vg.Inch)
	})
	if err != nil {
		return err
	}
	logger.Debug("chart written", "path", path, "format", format)
	fmt.Fprintf(out, "Wrote chart to %s\n", path)
	return nil
}
