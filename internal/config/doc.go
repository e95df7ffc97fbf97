// Package config loads dbcedit settings.
//
// Settings come from three layers, lowest priority first:
//
//  1. Built-in defaults (see Default)
//  2. A TOML file, normally ~/.config/dbcedit/config.toml
//  3. Environment variables prefixed with DBCEDIT_
//
// Environment variables map onto dotted keys by splitting off the first
// underscore-separated word as the section: DBCEDIT_HISTORY_MAX_ENTRIES
// sets history.max_entries.
//
// A TOML file looks like:
//
//	[history]
//	max_entries = 500
//
//	[logging]
//	level = "debug"
//	development = true
//
//	[watch]
//	enabled = true
//	debounce = "250ms"
//
//	[script]
//	call_limit = 10000
//	timeout = "2s"
//	single_undo = true
package config
