// Package applog initialises the global slog logger for the application.
// Call Init once at startup; all other packages use log/slog directly.
package applog

import (
	"io"
	"log/slog"
	"os"
)

var debugMode bool

// Init sets up the global slog logger on stderr so that command output on
// stdout stays pipeable. If debug is true, the minimum level is Debug.
func Init(debug bool) {
	debugMode = debug
	slog.SetDefault(New(os.Stderr, debug))
}

// New builds a text logger writing to w.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// IsDebug reports whether debug mode is active.
func IsDebug() bool {
	return debugMode
}
