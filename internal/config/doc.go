// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.gridmark/gridmark.toml or OS-specific config directory)
// 3. Project config file (gridmark.toml or .gridmark.toml in the working directory)
// 4. Environment variables (GRIDMARK_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.gridmark/gridmark.toml (preferred)
// - Windows: %APPDATA%\gridmark\gridmark.toml
// - macOS: ~/Library/Application Support/gridmark/gridmark.toml
// - Linux/BSD: $XDG_CONFIG_HOME/gridmark/gridmark.toml or ~/.config/gridmark/gridmark.toml
//
// Project-level config locations (overrides user config):
// - ./gridmark.toml (preferred)
// - ./.gridmark.toml
package config
