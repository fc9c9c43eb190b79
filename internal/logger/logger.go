// SPDX-License-Identifier: Apache-2.0

// Package logger provides a thin wrapper around zerolog.Logger used by the
// configuration resolver. The library stays silent unless the embedding
// application hands in a logger, so [Nop] is the default everywhere.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger. Embedding exposes the full
// zerolog API while leaving room for helper constructors.
type Logger struct {
	zerolog.Logger
}

// New constructs a debug-level JSON logger on stderr with a "component"
// field, used by the CLI when verbose output is requested.
func New(component string) *Logger {
	l := zerolog.New(os.Stderr).Level(zerolog.DebugLevel).With().
		Str("component", component).
		Timestamp().
		Logger()
	return &Logger{l}
}

// Wrap adopts an externally configured zerolog.Logger.
func Wrap(l zerolog.Logger) *Logger {
	return &Logger{l}
}

// Nop returns a *Logger that discards all output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}
