package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug": LogLevelDebug,
		"info":  LogLevelInfo,
		"warn":  LogLevelWarn,
		"error": LogLevelError,
		"ERROR": LogLevelError,
		"bogus": LogLevelInfo,
		"":      LogLevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSlogLoggerTo_WritesRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLoggerTo(&buf, LogLevelInfo, "text", false)

	logger.Debug("hidden")
	logger.Info("session created", "session_key", "cli:DEMO-1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record written at info level")
	}
	if !strings.Contains(out, "session created") || !strings.Contains(out, "cli:DEMO-1") {
		t.Errorf("missing info record, got %q", out)
	}
}

func TestSessionLogger_CarriesContext(t *testing.T) {
	var buf bytes.Buffer
	sl := NewSessionLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	sl.WithComponent("engine").WithSession("cli:DEMO-1", "inv-9").Info("starting invocation")

	out := buf.String()
	for _, want := range []string{"engine", "cli:DEMO-1", "inv-9", "starting invocation"} {
		if !strings.Contains(out, want) {
			t.Errorf("record missing %q: %s", want, out)
		}
	}
}

func TestSessionLogger_LogTransition(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	sl := NewSessionLogger(slog.New(handler))

	sl.LogTransition("start", "pending", "active", nil)
	sl.LogTransition("user-replies", "completed", "completed", errors.New("invalid transition"))

	out := buf.String()
	if !strings.Contains(out, "pending") || !strings.Contains(out, "active") {
		t.Errorf("transition record incomplete: %s", out)
	}
	if !strings.Contains(out, "invalid transition") {
		t.Errorf("refused transition not recorded: %s", out)
	}
}
