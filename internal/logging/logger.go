package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, pretty
}

// DefaultConfig logs info and above in human-readable form.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "pretty"}
}

// Setup configures the global logger. A nil writer means stderr, which keeps
// stdout free for the compiled payload.
func Setup(cfg Config, w io.Writer) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if w == nil {
		w = os.Stderr
	}

	switch cfg.Format {
	case "pretty", "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return nil
}

// For returns a logger tagged with the component name.
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
