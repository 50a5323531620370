package app

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTabHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		session string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			session: "session-123",
			level:   slog.LevelInfo,
			message: "listing day",
			want:    "2024-06-15T14:30:45Z\tINFO\tsession-123\tlisting day\n",
		},
		{
			name:    "debug level",
			session: "session-456",
			level:   slog.LevelDebug,
			message: "cache hit",
			want:    "2024-06-15T14:30:45Z\tDEBUG\tsession-456\tcache hit\n",
		},
		{
			name:    "with record attrs",
			session: "session-789",
			level:   slog.LevelInfo,
			message: "downloaded",
			attrs:   []slog.Attr{slog.String("key", "ABI-L2-MCMIPC/2022/152/00/a.nc"), slog.Int("bytes", 42)},
			want:    "2024-06-15T14:30:45Z\tINFO\tsession-789\tdownloaded\tkey=ABI-L2-MCMIPC/2022/152/00/a.nc\tbytes=42\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &tabHandler{w: &buf, session: tt.session, level: slog.LevelDebug}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestTabHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &tabHandler{w: &buf, session: "session-1"}

	// Add pre-set attrs
	h2 := h.WithAttrs([]slog.Attr{slog.String("satellite", "noaa-goes16")}).(*tabHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "query", 0)
	r.AddAttrs(slog.String("product", "ABI-L2-MCMIPC"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "satellite=noaa-goes16") {
		t.Errorf("expected pre-set attr satellite=noaa-goes16, got: %q", got)
	}
	if !strings.Contains(got, "product=ABI-L2-MCMIPC") {
		t.Errorf("expected record attr product=ABI-L2-MCMIPC, got: %q", got)
	}
}

func TestTabHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &tabHandler{w: &buf, session: "session-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*tabHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestTabHandler_Enabled(t *testing.T) {
	info := &tabHandler{level: slog.LevelInfo}
	if info.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(DEBUG) = true at info threshold, want false")
	}
	for _, level := range []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !info.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = false at info threshold, want true", level)
		}
	}

	debug := &tabHandler{level: slog.LevelDebug}
	if !debug.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(DEBUG) = false at debug threshold, want true")
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := newLogger(dir, "session-1", false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if logger == nil {
		t.Fatal("newLogger() returned nil logger")
	}
	if f == nil {
		t.Fatal("newLogger() returned nil file")
	}
	if _, err := os.Stat(filepath.Join(dir, "goesfetch.log")); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug enabled without verbose")
	}
}

func TestNewLogger_Verbose(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := newLogger(dir, "session-1", true)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug not enabled with verbose")
	}
}
