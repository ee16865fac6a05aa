package config

import "flag"

// parseFlags defines the global flags on fs and parses args.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("gridmark", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.GridFile, "grid", cfg.GridFile, "Path to grid CSV file")
	fs.StringVar(&cfg.JournalDir, "journal-dir", cfg.JournalDir, "Session journal directory")
	fs.BoolVar(&cfg.Journal, "journal", cfg.Journal, "Record interactive sessions to a JSONL journal")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text|json|logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller location in log output")

	return fs.Parse(args)
}
