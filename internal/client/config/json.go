package config

import (
	"encoding/json"
	"os"

	"github.com/oranmed/candidat/internal/flagx"
	"github.com/oranmed/candidat/internal/timex"
)

// JSONConfig is the DTO for the optional config file. timex.Duration lets
// the timeout be written either as "15s" or as integer nanoseconds.
type JSONConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	DatabasePath   string         `json:"database_path"`
}

// parseJSON overlays cfg with values from the JSON file named by the
// -c/-config flag. When no file was given it is a no-op; read or decode
// failures panic, as a misspelled config should not silently fall back to
// defaults. Only fields present in the file override the current value.
func parseJSON(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JSONConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
}
