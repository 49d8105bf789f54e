package elements

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/padflow/dag"
)

func TestSlice_EagerEOS(t *testing.T) {
	sink := NewCollect("sink")
	p := newTestPipeline(t, NewSlice("src", []int{1, 2, 3}), sink)
	link(t, p, map[string]string{"sink:in": "src:out"})

	res := run(t, p)

	if res.Ticks != 3 {
		t.Errorf("expected 3 ticks, got %d", res.Ticks)
	}
	if got, want := sink.Values(InPad), []any{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !sink.Done() {
		t.Error("expected sink done")
	}
}

func TestSlice_Empty(t *testing.T) {
	sink := NewCollect("sink")
	p := newTestPipeline(t, NewSlice[string]("src", nil), sink)
	link(t, p, map[string]string{"sink:in": "src:out"})

	res := run(t, p)

	if res.Ticks != 1 {
		t.Errorf("expected 1 tick, got %d", res.Ticks)
	}
	if got := sink.Values(InPad); len(got) != 0 {
		t.Errorf("expected no values, got %v", got)
	}
}

func TestFunc_ExhaustedAddsATick(t *testing.T) {
	src := NewFunc("src", func(_ context.Context, tick int) (any, error) {
		if tick > 4 {
			return nil, dag.ErrExhausted
		}
		return tick * 10, nil
	})
	sink := NewCollect("sink")
	p := newTestPipeline(t, src, sink)
	link(t, p, map[string]string{"sink:in": "src:out"})

	res := run(t, p)

	if res.Ticks != 5 {
		t.Errorf("expected 5 ticks, got %d", res.Ticks)
	}
	if got, want := sink.Values(InPad), []any{10, 20, 30, 40}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLines_Reader(t *testing.T) {
	sink := NewCollect("sink")
	p := newTestPipeline(t, NewLines("src", strings.NewReader("a\nb\nc\n")), sink)
	link(t, p, map[string]string{"sink:in": "src:out"})

	run(t, p)

	if got, want := sink.Values(InPad), []any{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLines_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	if err := os.WriteFile(path, []byte("one\ntwo"), 0o600); err != nil {
		t.Fatal(err)
	}
	src := NewLinesFile("src", path)
	sink := NewCollect("sink")
	p := newTestPipeline(t, src, sink)
	link(t, p, map[string]string{"sink:in": "src:out"})

	run(t, p)

	if got, want := sink.Values(InPad), []any{"one", "two"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if src.closer != nil {
		t.Error("expected file closed by Stop")
	}
}

func TestLines_MissingFile(t *testing.T) {
	p := newTestPipeline(t, NewLinesFile("src", filepath.Join(t.TempDir(), "nope")), NewNull("sink"))
	link(t, p, map[string]string{"sink:in": "src:out"})

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
}
