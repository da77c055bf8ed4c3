// Package config loads runtime settings for the candidate portal CLI.
// Values are layered: defaults, then an optional JSON file, then
// command-line flags, with later sources taking precedence.
package config
