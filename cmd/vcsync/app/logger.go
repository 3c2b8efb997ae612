package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/sieteunoseis/vcsync/pkg/logging"
)

// NewLogger creates a configured logger from the app's global flags.
// Log level precedence (highest to lowest):
//  1. --log-level flag (explicit always wins)
//  2. -v/--verbose flag (shortcut for debug)
//  3. -q/--quiet flag (shortcut for warn)
//  4. LOG_LEVEL environment variable
//  5. Default (info)
func NewLogger(a *App) zerolog.Logger {
	level := determineLogLevel(a)

	cfg := &logging.Config{
		Level:     level,
		Format:    envOrDefault("LOG_FORMAT", "auto"),
		Output:    envOrDefault("LOG_OUTPUT", "stderr"),
		NoColor:   a.noColor || os.Getenv("NO_COLOR") != "",
		AddCaller: level == "debug" || level == "trace",
	}
	return logging.NewLoggerFromConfig(cfg)
}

// determineLogLevel resolves the level using the precedence rules above.
func determineLogLevel(a *App) string {
	if a.logLevel != "" {
		if _, err := zerolog.ParseLevel(a.logLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q, using \"info\"\n", a.logLevel)
			return "info"
		}
		return a.logLevel
	}
	if a.verbose && a.quiet {
		fmt.Fprintln(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet")
		return "warn"
	}
	if a.verbose {
		return "debug"
	}
	if a.quiet {
		return "warn"
	}
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		return env
	}
	return "info"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
