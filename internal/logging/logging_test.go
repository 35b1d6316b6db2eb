package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevelFor(t *testing.T) {
	tests := map[string]zerolog.Level{
		"development": zerolog.DebugLevel,
		"production":  zerolog.InfoLevel,
		"":            zerolog.InfoLevel,
		"quiet":       zerolog.WarnLevel,
	}
	for env, want := range tests {
		if got := LevelFor(env); got != want {
			t.Errorf("LevelFor(%q) = %v, want %v", env, got, want)
		}
	}
}

func TestNewLoggerFansOutToAdditionalWriter(t *testing.T) {
	var console, extra bytes.Buffer
	logger := newLogger("production", &console, &extra)

	logger.Debug().Msg("hidden")
	logger.Info().Str("component", "test").Msg("visible")

	if strings.Contains(extra.String(), "hidden") {
		t.Fatal("debug line written at info level")
	}
	if !strings.Contains(extra.String(), `"message":"visible"`) {
		t.Fatalf("additional writer got %q, want JSON line", extra.String())
	}
	if !strings.Contains(console.String(), "visible") {
		t.Fatalf("console got %q", console.String())
	}
}

func TestConsoleWithoutTerminalHasNoColor(t *testing.T) {
	var console bytes.Buffer
	logger := newLogger("production", &console, nil)
	logger.Warn().Msg("plain")

	if strings.Contains(console.String(), "\x1b[") {
		t.Fatalf("console output contains color codes: %q", console.String())
	}
	if isTerminal(&console) {
		t.Fatal("buffer reported as terminal")
	}
}
