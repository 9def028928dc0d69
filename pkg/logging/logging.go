package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Level is a log level. Besides the slog levels it includes LevelSilent.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError

	// LevelSilent is above every level a record can have, so nothing is written.
	LevelSilent = slog.Level(100)
)

// Format is the output format of a logger.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// LevelNames lists the level names accepted by ParseLevel, lowest first.
var LevelNames = []string{"debug", "info", "warn", "error", "silent"}

// Config configures New.
type Config struct {
	Level  Level
	Format Format
	// Output defaults to os.Stderr.
	Output    io.Writer
	AddSource bool
}

// New returns a logger writing records at or above cfg.Level to cfg.Output.
func New(cfg Config) *slog.Logger {
	if cfg.Level >= LevelSilent {
		return Nop()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(cfg.Output, opts))
	}
	return slog.New(slog.NewTextHandler(cfg.Output, opts))
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Component returns a child logger tagged with the component name, such as
// "mock", "files" or "admin". A nil parent yields Nop.
func Component(parent *slog.Logger, name string) *slog.Logger {
	if parent == nil {
		return Nop()
	}
	return parent.With("component", name)
}

// ParseLevel parses a level name, ignoring case. "warning" is accepted as an
// alias of "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent":
		return LevelSilent, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q (want one of %s)", s, strings.Join(LevelNames, ", "))
}

// ParseFormat parses a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q (want text or json)", s)
}
