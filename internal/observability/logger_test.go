package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, NewRedactor())

	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	if logger.Slog() == nil {
		t.Error("expected non-nil underlying logger")
	}
	if logger.redactor == nil {
		t.Error("expected non-nil redactor")
	}
}

func TestLogger_WithConnectionID(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, nil)
	ctx := ContextWithConnectionID(context.Background(), "test-conn-123")

	loggerWithID := logger.WithConnectionID(ctx)
	loggerWithID.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "test-conn-123") {
		t.Errorf("expected connection ID in output, got %s", output)
	}
}

func TestLogger_WithConnectionID_Empty(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, nil)
	ctx := context.Background() // No connection ID

	loggerWithID := logger.WithConnectionID(ctx)

	// Should return same logger instance
	if loggerWithID != logger {
		t.Error("expected same logger when no connection ID")
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, nil)
	loggerWithFields := logger.WithFields("cmd", "SET", "db", "0")
	loggerWithFields.Info("test")

	output := buf.String()
	if !strings.Contains(output, "SET") {
		t.Errorf("expected cmd in output, got %s", output)
	}
	if !strings.Contains(output, "db") {
		t.Errorf("expected db in output, got %s", output)
	}
}

func TestLogger_RedactedInfo(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, NewRedactor())
	logger.RedactedInfo("dispatching AUTH hunter2")

	output := buf.String()
	if strings.Contains(output, "hunter2") {
		t.Errorf("expected AUTH password to be redacted, got %s", output)
	}
	if !strings.Contains(output, "AUTH [REDACTED]") {
		t.Errorf("expected redaction marker, got %s", output)
	}
}

func TestLogger_RedactedError(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, NewRedactor())
	logger.RedactedError("auth failed: requirepass supersecret")

	output := buf.String()
	if strings.Contains(output, "supersecret") {
		t.Errorf("expected requirepass value to be redacted in error")
	}
}

func TestLogger_RedactedDebug(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelDebug,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, NewRedactor())
	logger.RedactedDebug("debug: email test@example.com")

	output := buf.String()
	if strings.Contains(output, "test@example.com") {
		t.Errorf("expected email to be redacted")
	}
}

func TestLogger_RedactedWarn(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelWarn,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, NewRedactor())
	logger.RedactedWarn("warning: phone +1-555-123-4567")

	output := buf.String()
	if strings.Contains(output, "555-123-4567") {
		t.Errorf("expected phone to be redacted")
	}
}

func TestLogger_RedactArgs(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, NewRedactor())
	logger.RedactedInfo("request", "key", "5f4dcc3b5aa765d61d8327deb882cf995f4dcc3b")

	output := buf.String()
	if strings.Contains(output, "5f4dcc3b5aa765d6") {
		t.Errorf("expected key arg to be redacted")
	}
}

func TestLogger_RedactArgs_Error(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, NewRedactor())
	err := errors.New("failed with hash 5f4dcc3b5aa765d61d8327deb882cf995f4dcc3b")
	logger.RedactedError("operation failed", "error", err)

	output := buf.String()
	if strings.Contains(output, "5f4dcc3b5aa765d6") {
		t.Errorf("expected error message to be redacted")
	}
}

func TestLogger_NoRedactor(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, nil) // No redactor
	logger.RedactedInfo("dispatching AUTH hunter2")

	output := buf.String()
	// Without redactor, should not redact
	if !strings.Contains(output, "hunter2") {
		t.Errorf("expected no redaction without redactor")
	}
}

func TestLogger_Slog(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: true,
	}

	logger := NewLogger(cfg, nil)
	slogger := logger.Slog()

	if slogger == nil {
		t.Error("expected non-nil slog.Logger")
	}
}

func TestLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     &buf,
		JSONFormat: false, // Text format
	}

	logger := NewLogger(cfg, nil)
	logger.Info("test message")

	output := buf.String()
	if strings.Contains(output, "{") {
		t.Errorf("expected text format, got JSON-like output: %s", output)
	}
}
