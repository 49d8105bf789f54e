package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const definition = `
name: numbers
elements:
  - name: src
    component: counter
    params: {count: 3}
  - name: up
    component: passthrough
    links:
      in: src:out
  - name: sink
    component: jsonl
    params:
      path: %OUT%
    links:
      in: up:out
`

func writeDefinition(t *testing.T) (def, out string) {
	t.Helper()
	dir := t.TempDir()
	out = filepath.Join(dir, "out.jsonl")
	def = filepath.Join(dir, "numbers.yaml")
	if err := os.WriteFile(def, []byte(strings.ReplaceAll(definition, "%OUT%", out)), 0o644); err != nil {
		t.Fatal(err)
	}
	return def, out
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "padflow ") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRunCmd(t *testing.T) {
	def, out := writeDefinition(t)

	if _, err := execute(t, "run", "-f", def); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 3 {
		t.Errorf("expected 3 records, got %d:\n%s", n, data)
	}
}

func TestRunCmd_WithInspect(t *testing.T) {
	def, _ := writeDefinition(t)

	if _, err := execute(t, "run", "-f", def, "--inspect", "127.0.0.1:0"); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunCmd_EnvFileLimitsTicks(t *testing.T) {
	def, _ := writeDefinition(t)
	env := filepath.Join(t.TempDir(), "padflow.env")
	if err := os.WriteFile(env, []byte("PADFLOW_RUNNER_MAX_TICKS=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// The env file exports into the process; t.Setenv restores it afterwards.
	t.Setenv("PADFLOW_RUNNER_MAX_TICKS", "")
	os.Unsetenv("PADFLOW_RUNNER_MAX_TICKS")

	_, err := execute(t, "--env-file", env, "run", "-f", def)
	if err == nil || !strings.Contains(err.Error(), "tick") {
		t.Fatalf("expected tick limit error, got %v", err)
	}
}

func TestRunCmd_Errors(t *testing.T) {
	if _, err := execute(t, "run"); err == nil {
		t.Error("expected missing flag error")
	}
	if _, err := execute(t, "run", "-f", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected missing file error")
	}
}

func TestGraphCmd(t *testing.T) {
	def, _ := writeDefinition(t)

	out, err := execute(t, "graph", "-f", def)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, `digraph "numbers"`) {
		t.Errorf("unexpected output %q", out)
	}

	mmd := filepath.Join(t.TempDir(), "g.mmd")
	if _, err := execute(t, "graph", "-f", def, "-o", mmd); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(mmd)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "flowchart LR") {
		t.Errorf("unexpected file %q", data)
	}

	out, err = execute(t, "graph", "-f", def, "--format", "mermaid")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "flowchart LR") {
		t.Errorf("unexpected output %q", out)
	}
}
