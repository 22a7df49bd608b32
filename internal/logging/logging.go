// Package logging builds the leveled logger shared by the client components
// and the reference server.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cookfile-viewer/backend/internal/config"
)

const header = `${time_rfc3339} ${level} ${prefix}`

// ParseLevel maps a config level name to a gommon level. Unknown names are INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// New creates a logger named prefix. When cfg.File is set the output is a
// size-rotated file, otherwise stderr.
func New(prefix string, cfg config.LoggingConfig) *log.Logger {
	l := log.New(prefix)
	l.SetHeader(header)
	l.SetLevel(ParseLevel(cfg.Level))
	l.SetOutput(Output(cfg))
	return l
}

// Output returns the writer selected by cfg.
func Output(cfg config.LoggingConfig) io.Writer {
	if cfg.File == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	l := log.New("-")
	l.SetOutput(io.Discard)
	l.SetLevel(log.OFF)
	return l
}
