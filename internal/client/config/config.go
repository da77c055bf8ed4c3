package config

import "time"

// Config holds runtime settings for the candidate portal CLI.
//
// Fields:
//   - ServerBaseURL: base address of the portal API, including any path
//     prefix (e.g. "http://localhost:5000/api").
//   - RequestTimeout: per-request HTTP timeout.
//   - DatabasePath: path of the local SQLite file holding the stored
//     credential between runs.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	DatabasePath   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:5000/api"
	c.RequestTimeout = 15 * time.Second
	c.DatabasePath = "candidat.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file was given) and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
