package config

import (
	"flag"
	"io"
	"time"
)

// applyFlags overlays selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   base URL of the backend API
//	-d string   path to the local client database
//	-t int      request timeout in seconds
//	-l string   log level (debug|info|warn|error)
//	-config     path to a JSON config file (consumed by configPath)
//
// Defaults come from the already-overlaid cfg, so flags that are absent
// leave earlier sources untouched.
func applyFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configFile string
	fs.StringVar(&cfg.APIBaseURL, "s", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local client database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	timeoutSec := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&configFile, "config", "", "path to a JSON config file")
	fs.StringVar(&configFile, "c", "", "path to a JSON config file (short)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.RequestTimeout = time.Duration(*timeoutSec) * time.Second
	return nil
}
