package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: level, Format: "json"}, "padflow", &buf)
	return l, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l := New(&Config{Level: "invalid-level", Format: "json"}, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestJSONOutput_Fields(t *testing.T) {
	l, buf := newJSONLogger(t, "debug")
	l.WithComponent("runner").Info("tick done", Fields(FieldTick, 3, FieldWave, 1))

	lines := decodeLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if line["message"] != "tick done" {
		t.Errorf("unexpected message: %v", line["message"])
	}
	if line[FieldComponent] != "runner" {
		t.Errorf("expected component=runner, got %v", line[FieldComponent])
	}
	if line[FieldTick] != float64(3) {
		t.Errorf("expected tick=3, got %v", line[FieldTick])
	}
	if line["service"] != "padflow" {
		t.Errorf("expected service=padflow, got %v", line["service"])
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newJSONLogger(t, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown")

	if got := len(decodeLines(t, buf)); got != 2 {
		t.Fatalf("expected 2 lines at warn level, got %d", got)
	}
}

func TestWithFieldsAndError(t *testing.T) {
	l, buf := newJSONLogger(t, "info")
	l.WithFields(map[string]interface{}{FieldElement: "src"}).WithError(errors.New("boom")).Error("failed")

	line := decodeLines(t, buf)[0]
	if line[FieldElement] != "src" {
		t.Errorf("expected element=src, got %v", line[FieldElement])
	}
	if line["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", line["error"])
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("discarded", Fields("k", "v"))
}

func TestSetGlobalLogger(t *testing.T) {
	prev := globalLogger
	defer func() { globalLogger = prev }()

	l := NewNop()
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	prev := globalLogger
	defer func() { globalLogger = prev }()

	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestInit_UsesServiceName(t *testing.T) {
	prev := globalLogger
	defer func() { globalLogger = prev }()

	Init(Config{Level: "info", Format: "json", ServiceName: "padflow"})
	if GetGlobalLogger().service != "padflow" {
		t.Fatalf("expected service padflow, got %q", GetGlobalLogger().service)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp to be enabled")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"pretty", Config{Level: "debug", Format: "pretty"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestConsoleLoggerNoColor(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "padflow", &buf)
	l.Info("hello")

	out := buf.String()
	if !strings.Contains(out, "[PAD][INF]") {
		t.Fatalf("expected service and level tags, got %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Fatalf("expected no color codes, got %q", out)
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored-key-not-string", "dangling")
	if m["a"] != 1 || m["b"] != "two" {
		t.Fatalf("unexpected fields: %v", m)
	}
	if len(m) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(m))
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("src", errors.New("bad"))
	if ef[FieldElement] != "src" || ef[FieldError] != "bad" {
		t.Fatalf("unexpected error fields: %v", ef)
	}
	df := DurationFields("tick", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Fatalf("expected 1500ms, got %v", df[FieldDuration])
	}
}

func TestRegisterAndGet(t *testing.T) {
	defer Reset()

	l := NewNop()
	Register("runner", l)
	if Get("runner") != l {
		t.Fatal("expected registered logger")
	}
	if Get("unregistered") == nil {
		t.Fatal("expected fallback logger")
	}
}

func TestRegisterDefaults(t *testing.T) {
	prev := globalLogger
	defer func() { globalLogger = prev }()
	defer Reset()

	var buf bytes.Buffer
	SetGlobalLogger(NewWithWriter(&Config{Level: "info", Format: "json"}, "padflow", &buf))
	RegisterDefaults()

	for _, name := range Components {
		Get(name).Info("hello")
	}
	lines := decodeLines(t, &buf)
	if len(lines) != len(Components) {
		t.Fatalf("expected %d lines, got %d", len(Components), len(lines))
	}
	for i, name := range Components {
		if lines[i][FieldComponent] != name {
			t.Errorf("line %d: expected component %q, got %v", i, name, lines[i][FieldComponent])
		}
	}

	// Registered loggers keep their sink until defaults are re-registered.
	var next bytes.Buffer
	SetGlobalLogger(NewWithWriter(&Config{Level: "info", Format: "json"}, "padflow", &next))
	Get(ComponentDAG).Info("old sink")
	if next.Len() != 0 {
		t.Fatal("expected registered logger to keep writing to the old sink")
	}
	RegisterDefaults(ComponentDAG)
	Get(ComponentDAG).Info("new sink")
	if next.Len() == 0 {
		t.Fatal("expected re-registered logger to write to the new sink")
	}

	Reset()
	Get(ComponentSink).Info("fallback")
	if got := decodeLines(t, &next); len(got) != 2 || got[1][FieldComponent] != ComponentSink {
		t.Fatalf("expected fallback line tagged %q, got %v", ComponentSink, got)
	}
}

func TestOutputWriter(t *testing.T) {
	if outputWriter("stderr") != os.Stderr {
		t.Error("expected stderr")
	}
	if outputWriter("anything") != os.Stdout {
		t.Error("expected stdout fallback")
	}
}
