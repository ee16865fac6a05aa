// Package cmd implements the CLI command structure for gridmark.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/nibzard/gridmark/internal/config"
	"github.com/nibzard/gridmark/internal/grid"
	"github.com/nibzard/gridmark/internal/logging"
	"github.com/nibzard/gridmark/internal/session"
	"github.com/nibzard/gridmark/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the gridmark CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("gridmark", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(os.Stdout)
	}

	logger := newLogger(cfg)

	// If no args or first arg is a flag, use "run" as default
	subcommand := "run"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "run":
		return runCommand(ctx, cfg, logger, remainingArgs, os.Stdin, os.Stdout)
	case "tui":
		return tuiCommand(ctx, cfg, logger, remainingArgs)
	case "init":
		return initCommand(cfg, logger, remainingArgs, os.Stdout)
	case "show":
		return showCommand(cfg, remainingArgs, os.Stdout)
	case "set":
		return setCommand(cfg, logger, remainingArgs, os.Stdout)
	case "stats":
		return statsCommand(cfg, remainingArgs, os.Stdout)
	case "chart":
		return chartCommand(cfg, logger, remainingArgs, os.Stdout)
	case "export":
		return exportCommand(cfg, remainingArgs, os.Stdout)
	case "doctor":
		return doctorCommand(cfg, remainingArgs, os.Stdout)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs, os.Stdout)
	case "config":
		return configCommand(cfg, remainingArgs, os.Stdout)
	case "version", "--version", "-v":
		return versionCommand(os.Stdout)
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		// An existing file is taken as the grid file for run
		if fi, err := os.Stat(subcommand); err == nil && !fi.IsDir() {
			cfg.GridFile = resolvePath(cfg, subcommand)
			return runCommand(ctx, cfg, logger, remainingArgs, os.Stdin, os.Stdout)
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	return logging.NewLogger(os.Stderr, logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		Caller:     cfg.LogCaller,
	})
}

// runCommand executes the interactive prompt loop.
func runCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark run", flag.ContinueOnError)
	noJournal := fs.Bool("no-journal", !cfg.Journal, "Do not record this session")
	if err := fs.Parse(args); err != nil {
		return err
	}

	gridPath, err := gridPathArg(cfg, fs.Args())
	if err != nil {
		return err
	}
	store := grid.NewStore(gridPath)

	opts := []session.Option{session.WithLogger(logger)}
	if !*noJournal {
		journal, err := logging.NewJournal(cfg.JournalDir, cfg.WorkDir)
		if err != nil {
			logger.Warn("session journal disabled", "err", err)
		} else {
			defer journal.Close()
			logger.Debug("session journal", "path", journal.LogPath, "session", journal.SessionID)
			opts = append(opts, session.WithRecorder(journal))
		}
	}

	return session.New(store, in, out, opts...).Run(ctx)
}

// tuiCommand launches the grid editor.
func tuiCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("gridmark tui", flag.ContinueOnError)
	noJournal := fs.Bool("no-journal", !cfg.Journal, "Do not record edits")
	if err := fs.Parse(args); err != nil {
		return err
	}

	gridPath, err := gridPathArg(cfg, fs.Args())
	if err != nil {
		return err
	}
	store := grid.NewStore(gridPath)
	exists, err := store.Exists()
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("grid file %s not found (create it with 'gridmark init <rows> <cols>')", gridPath)
	}

	var opts []ui.TUIOption
	if !*noJournal {
		journal, err := logging.NewJournal(cfg.JournalDir, cfg.WorkDir)
		if err != nil {
			logger.Warn("session journal disabled", "err", err)
		} else {
			defer journal.Close()
			opts = append(opts, ui.WithRecorder(journal))
		}
	}

	return ui.RunTUI(ctx, store, opts...)
}

// configCommand prints the example config, or the effective one with -effective.
func configCommand(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark config", flag.ContinueOnError)
	effective := fs.Bool("effective", false, "Print the effective configuration instead of the example")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if !*effective {
		fmt.Fprint(out, config.ExampleConfig())
		return nil
	}

	for _, file := range cfg.Files {
		fmt.Fprintf(out, "# loaded from %s\n", file)
	}
	return toml.NewEncoder(out).Encode(cfg)
}

// versionCommand prints version information.
func versionCommand(out io.Writer) error {
	fmt.Fprintf(out, "gridmark version %s\n", Version)
	return nil
}

// gridPathArg returns the grid file, optionally overridden by a single
// positional argument.
func gridPathArg(cfg *config.Config, remaining []string) (string, error) {
	if len(remaining) > 1 {
		return "", fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		return resolvePath(cfg, remaining[0]), nil
	}
	return cfg.GridFile, nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "gridmark - mark cells of a grid as yes, no or skip")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gridmark [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run [file]                  Interactive prompt loop (default command)")
	fmt.Fprintln(w, "  tui [file]                  Launch the terminal grid editor")
	fmt.Fprintln(w, "  init <rows> <cols>          Create a grid of zeros")
	fmt.Fprintln(w, "  show                        Print the current grid")
	fmt.Fprintln(w, "  set <row> <col> <response>  Set one cell (yes|no|skip)")
	fmt.Fprintln(w, "  stats                       Per-row and per-column tallies")
	fmt.Fprintln(w, "  chart                       Render a yes/no bar chart per column")
	fmt.Fprintln(w, "  export                      Write the grid as csv, json or yaml")
	fmt.Fprintln(w, "  doctor                      Check config and grid file validity")
	fmt.Fprintln(w, "  tail                        Print the latest session journal")
	fmt.Fprintln(w, "  config                      Print an example config file")
	fmt.Fprintln(w, "  version                     Show version information")
	fmt.Fprintln(w, "  help                        Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run and Tui Options:")
	fmt.Fprintln(w, "  -no-journal")
	fmt.Fprintln(w, "        Do not record the session")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Init Options:")
	fmt.Fprintln(w, "  -force")
	fmt.Fprintln(w, "        Overwrite an existing grid file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Chart Options:")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Output file; format from extension png|svg|pdf (default \"grid.png\")")
	fmt.Fprintln(w, "  -width float, -height float")
	fmt.Fprintln(w, "        Image size in inches (default 6x4)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options:")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format (csv|json|yaml) (default \"csv\")")
	fmt.Fprintln(w, "  -o string")
	fmt.Fprintln(w, "        Output file (default stdout)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the journal (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config Options:")
	fmt.Fprintln(w, "  -effective")
	fmt.Fprintln(w, "        Print the effective configuration")
}
