package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# gridmark configuration file
# Values can be overridden by environment variables (GRIDMARK_*) or CLI flags

# Grid file (relative to the working directory)
grid_file = "grid.csv"

# Record each interactive session to a JSONL journal
journal = true

# Journal directory (supports ~ expansion)
journal_dir = "~/.gridmark"

# Logging: debug, info, warn or error
log_level = "info"

# Log format: text, json or logfmt
log_format = "text"

log_timestamps = false
log_caller = false
`
}
