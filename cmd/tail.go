package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/nibzard/gridmark/internal/config"
	"github.com/nibzard/gridmark/internal/logging"
)

// tailCommand prints the latest session journal.
func tailCommand(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("gridmark tail", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the journal (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the journal (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logDir, err := logging.FindLogDir(cfg.JournalDir, cfg.WorkDir)
	if err != nil {
		return fmt.Errorf("finding journal directory: %w", err)
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest journal: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(out, "No journal files found.")
		return nil
	}

	fmt.Fprintf(out, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(out, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(out)

	return logging.TailLog(ctx, out, logPath, *n, *follow)
}
