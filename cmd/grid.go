package cmd

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/nibzard/gridmark/internal/config"
	"github.com/nibzard/gridmark/internal/grid"
	"github.com/nibzard/gridmark/internal/session"
)

// initCommand creates a grid of zeros without prompting.
func initCommand(cfg *config.Config, logger *log.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing grid file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) != 2 {
		return fmt.Errorf("usage: gridmark init [-force] <rows> <cols>")
	}
	rows, err := grid.ParseIndex("rows", remaining[0])
	if err != nil {
		return err
	}
	cols, err := grid.ParseIndex("columns", remaining[1])
	if err != nil {
		return err
	}

	store := grid.NewStore(cfg.GridFile)
	exists, err := store.Exists()
	if err != nil {
		return err
	}
	if exists && !*force {
		return fmt.Errorf("grid file %s already exists (use -force to overwrite)", store.Path)
	}

	if _, err := store.Initialize(rows, cols); err != nil {
		return fmt.Errorf("initialize grid: %w", err)
	}
	logger.Info("grid initialized", "path", store.Path, "rows", rows, "cols", cols)
	fmt.Fprintf(out, "Grid initialized with %dx%d grid of zeros\n", rows, cols)
	return nil
}

// showCommand prints the grid the same way the prompt loop does.
func showCommand(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark show", flag.ContinueOnError)
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
	fmt.Fprintln(out, session.GridHeader)
	for _, row := range g {
		fmt.Fprintln(out, grid.FormatRow(row))
	}
	return nil
}

// setCommand applies a single update.
func setCommand(cfg *config.Config, logger *log.Logger, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark set", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) != 3 {
		return fmt.Errorf("usage: gridmark set <row> <col> <yes|no|skip>")
	}
	row, err := grid.ParseIndex("row", remaining[0])
	if err != nil {
		return err
	}
	col, err := grid.ParseIndex("column", remaining[1])
	if err != nil {
		return err
	}

	update, err := grid.NewStore(cfg.GridFile).Update(row, col, remaining[2])
	if err != nil {
		return err
	}
	logger.Info("cell updated", "row", row, "col", col, "from", update.Previous, "to", update.Value)
	fmt.Fprintf(out, "Set (%d, %d) to %s (was %s)\n", row, col, update.Value.Label(), update.Previous.Label())
	return nil
}

// exportCommand writes the grid in another format.
func exportCommand(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark export", flag.ContinueOnError)
	formatName := fs.String("format", string(grid.FormatCSV), "Output format (csv|json|yaml)")
	output := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	gridPath, err := gridPathArg(cfg, fs.Args())
	if err != nil {
		return err
	}

	format, err := grid.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	g, err := grid.Load(gridPath)
	if err != nil {
		return err
	}

	if *output == "" {
		return grid.Export(out, g, format)
	}

	path := resolvePath(cfg, *output)
	err = grid.WriteFileAtomic(path, func(w io.Writer) error {
		return grid.Export(w, g, format)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Exported %s to %s\n", format, path)
	return nil
}

// resolvePath makes p absolute against the working directory.
func resolvePath(cfg *config.Config, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.WorkDir, p)
}
