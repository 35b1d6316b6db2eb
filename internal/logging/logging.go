/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures zerolog for the process.
func Setup(environment string) zerolog.Logger {
	return SetupWithWriter(environment, nil)
}

// SetupWithWriter configures zerolog with an additional writer (e.g., for log buffer).
// Human-readable output goes to stderr so stdout stays free for scan results.
// The additional writer receives the raw JSON lines.
func SetupWithWriter(environment string, additionalWriter io.Writer) zerolog.Logger {
	return newLogger(environment, os.Stderr, additionalWriter)
}

func newLogger(environment string, console io.Writer, additionalWriter io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var writer io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05", NoColor: !isTerminal(console)}
	if additionalWriter != nil {
		writer = zerolog.MultiLevelWriter(writer, additionalWriter)
	}

	logger := zerolog.New(writer).With().Timestamp().Logger().Level(LevelFor(environment))
	log.Logger = logger
	return logger
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// LevelFor maps an environment name to a log level.
func LevelFor(environment string) zerolog.Level {
	switch environment {
	case "development":
		return zerolog.DebugLevel
	case "quiet":
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
