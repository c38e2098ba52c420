package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	handler := newConsoleHandler(&buf, levelVar)
	logger := slog.New(handler).With(String(FieldComponent, "store"))

	logger.Info("sidecar written", String(FieldAssetKey, "videos/a.mp4"), Int("bytes", 42))

	line := buf.String()
	if !strings.Contains(line, " INFO store: sidecar written") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "asset_key=videos/a.mp4") {
		t.Fatalf("expected asset_key attr, got %q", line)
	}
	if !strings.Contains(line, "bytes=42") {
		t.Fatalf("expected bytes attr, got %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	handler := newConsoleHandler(&buf, new(slog.LevelVar))
	slog.New(handler).Info("msg", String("path", "a b.mp4"), String("empty", ""))

	line := buf.String()
	if !strings.Contains(line, `path="a b.mp4"`) {
		t.Fatalf("expected quoted value, got %q", line)
	}
	if !strings.Contains(line, `empty=""`) {
		t.Fatalf("expected quoted empty value, got %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	handler := newConsoleHandler(&buf, levelVar)

	logger := slog.New(handler)
	logger.Info("hidden")
	logger.Warn("visible")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatal("info line should be suppressed at warn level")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Fatal("warn line should be emitted")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNoopHandlerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger should report disabled")
	}
	// Must not panic.
	logger.Error("dropped", Error(nil), Duration("d", time.Second))
}
