package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		got := parseLogLevel(tc.in)
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, "info", "json").Info("server.start", "addr", ":5000")
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("json output not parseable: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "server.start" || rec["addr"] != ":5000" {
		t.Fatalf("unexpected record: %v", rec)
	}

	buf.Reset()
	newLogger(&buf, "info", "text").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug must be filtered at info level: %q", buf.String())
	}

	buf.Reset()
	newLogger(&buf, "debug", "console").Debug("http.request", "method", "GET", "path", "/api/posts", "status", 200)
	line := buf.String()
	for _, want := range []string{"DEBUG", "http.request", "method=GET", "path=/api/posts", "status=200"} {
		if !strings.Contains(line, want) {
			t.Fatalf("console line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("color must be off by default: %q", line)
	}
}

func TestConsoleHandler_GroupsAndQuoting(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newConsoleHandler(&buf, nil, false)).WithGroup("req").With("id", "abc")
	log.Info("msg", "agent", "curl 8.0", "empty", "")

	line := buf.String()
	for _, want := range []string{"req.id=abc", `req.agent="curl 8.0"`, `req.empty=""`} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}
