package testutil

import (
	"bytes"
	"log/slog"
)

// NopLogger returns a logger that discards all output
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// CaptureLogger returns a debug-level logger writing JSON lines into the
// returned buffer, for tests that assert on log output
func CaptureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
