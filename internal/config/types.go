package config

// Default values.
const (
	DefaultGridFile   = "grid.csv"
	DefaultJournalDir = "~/.gridmark"
	DefaultJournal    = true
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Config holds the full configuration for gridmark.
type Config struct {
	// Backing CSV file (relative to the working directory)
	GridFile string `toml:"grid_file"`

	// Session journal
	Journal    bool   `toml:"journal"`
	JournalDir string `toml:"journal_dir"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Working directory (computed)
	WorkDir string `toml:"-"`

	// Config files that were applied, in load order (computed)
	Files []string `toml:"-"`
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.GridFile = DefaultGridFile
	cfg.Journal = DefaultJournal
	cfg.JournalDir = DefaultJournalDir
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}
