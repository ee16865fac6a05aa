package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/nibzard/gridmark/internal/config"
	"github.com/nibzard/gridmark/internal/grid"
	"github.com/nibzard/gridmark/internal/logging"
)

// doctorCommand checks config and grid file validity.
func doctorCommand(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	gridPath, err := gridPathArg(cfg, fs.Args())
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "gridmark doctor")
	fmt.Fprintln(out, "===============")
	fmt.Fprintln(out)

	allOK := true

	// Config
	fmt.Fprintln(out, "Config:")
	if len(cfg.Files) == 0 {
		fmt.Fprintln(out, "  ✅ Using defaults (no config file found)")
	}
	for _, file := range cfg.Files {
		fmt.Fprintf(out, "  ✅ Loaded %s\n", file)
	}
	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		fmt.Fprintf(out, "  ⚠️  Log format: %s (expected text|json|logfmt, using text)\n", cfg.LogFormat)
	}
	if *verbose {
		fmt.Fprintf(out, "  Log level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "  Working directory: %s\n", cfg.WorkDir)
	}
	fmt.Fprintln(out)

	// Grid file
	fmt.Fprintf(out, "Grid file: %s\n", gridPath)
	info, err := os.Stat(gridPath)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(out, "  ⚠️  Not found (run will prompt for dimensions)")
	case err != nil:
		fmt.Fprintf(out, "  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Fprintln(out, "  ❌ Error: path is a directory")
		allOK = false
	default:
		fmt.Fprintln(out, "  ✅ OK")
		if !checkGrid(out, gridPath, *verbose) {
			allOK = false
		}
	}
	fmt.Fprintln(out)

	// Journal directory
	if cfg.Journal {
		logDir, err := logging.FindLogDir(cfg.JournalDir, cfg.WorkDir)
		if err != nil {
			fmt.Fprintf(out, "Journal directory: %s\n", cfg.JournalDir)
			fmt.Fprintf(out, "  ❌ Error: %v\n", err)
			allOK = false
		} else {
			fmt.Fprintf(out, "Journal directory: %s\n", logDir)
			if _, err := os.Stat(logDir); err != nil {
				if os.IsNotExist(err) {
					fmt.Fprintln(out, "  ⚠️  Not found (will be created on run)")
				} else {
					fmt.Fprintf(out, "  ❌ Error: %v\n", err)
					allOK = false
				}
			} else {
				fmt.Fprintln(out, "  ✅ OK")
			}
		}
	} else {
		fmt.Fprintln(out, "Journal: disabled")
	}
	fmt.Fprintln(out)

	if allOK {
		fmt.Fprintln(out, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(out, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// checkGrid loads and validates the grid file, reporting each problem.
func checkGrid(out io.Writer, path string, verbose bool) bool {
	g, err := grid.Load(path)
	if err != nil {
		fmt.Fprintf(out, "  ❌ Load error: %v\n", err)
		return false
	}

	result := grid.Validate(g)
	if result.Valid {
		fmt.Fprintln(out, "  ✅ Valid")
	} else {
		fmt.Fprintln(out, "  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "     - %v\n", e)
		}
	}
	if verbose {
		counts := g.Counts()
		fmt.Fprintf(out, "  Size: %d rows x %d cols\n", g.Rows(), g.Cols())
		fmt.Fprintf(out, "  Cells: %d yes, %d no, %d skip\n", counts.Yes, counts.No, counts.Skip)
	}
	return result.Valid
}
