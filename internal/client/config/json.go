package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// are accepted as strings like "30s" so config files stay readable.
type jsonConfig struct {
	APIBaseURL     string `json:"api_base_url"`
	DatabasePath   string `json:"database_path"`
	RequestTimeout string `json:"request_timeout"`
	LogLevel       string `json:"log_level"`
}

// configPath resolves the JSON config file location: the -config/-c flag
// wins over the JOBTRACKR_CONFIG environment variable. Empty means
// "no file".
func configPath(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		for _, name := range []string{"-config", "--config", "-c"} {
			if arg == name && i+1 < len(args) {
				return args[i+1]
			}
			if strings.HasPrefix(arg, name+"=") {
				return strings.TrimPrefix(arg, name+"=")
			}
		}
	}
	return os.Getenv("JOBTRACKR_CONFIG")
}

// applyJSON overlays cfg with values from the JSON file at path. A missing
// path is not an error; a present but unreadable file is.
func applyJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout != "" {
		d, err := time.ParseDuration(jc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("parse request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
