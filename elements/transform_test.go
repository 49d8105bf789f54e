package elements

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/errors"
)

func TestMap(t *testing.T) {
	sink := NewCollect("sink")
	p := newTestPipeline(t,
		NewSlice("src", []string{"a", "b"}),
		NewMap("upper", upper),
		sink,
	)
	link(t, p, map[string]string{"upper:in": "src:out", "sink:in": "upper:out"})

	res := run(t, p)

	if res.Ticks != 2 {
		t.Errorf("expected 2 ticks, got %d", res.Ticks)
	}
	if got, want := sink.Values(InPad), []any{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMap_TypeMismatch(t *testing.T) {
	p := newTestPipeline(t, NewSlice("src", []int{1}), NewMap("upper", upper), NewNull("sink"))
	link(t, p, map[string]string{"upper:in": "src:out", "sink:in": "upper:out"})

	_, err := p.Run(context.Background())
	if !errors.IsExecution(err) {
		t.Fatalf("expected execution error, got %v", err)
	}
	if !strings.Contains(err.Error(), "upper") {
		t.Errorf("expected element name in %q", err.Error())
	}
}

func TestMap_SkipsEmptyFrames(t *testing.T) {
	m := NewMap("m", func(context.Context, any) (any, error) {
		t.Fatal("fn must not see empty frames")
		return nil, nil
	})
	out := dag.NewOutput(1, "m", m.SourcePads())
	in := dag.NewInput(1, map[string]dag.Frame{InPad: {EOS: true}})

	if err := m.Transform(context.Background(), in, out); err != nil {
		t.Fatal(err)
	}
	if len(out.Frames()) != 0 {
		t.Errorf("expected no output, got %v", out.Frames())
	}
}

func TestCombine(t *testing.T) {
	join := func(_ context.Context, _ int, values map[string]any) (any, error) {
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprint(values[k]))
		}
		return strings.Join(parts, "+"), nil
	}
	sink := NewCollect("sink")
	p := newTestPipeline(t,
		NewSlice("a", []string{"a1", "a2", "a3"}),
		NewSlice("b", []string{"b1"}),
		NewCombine("join", []string{"a", "b"}, join),
		sink,
	)
	link(t, p, map[string]string{
		"join:a":  "a:out",
		"join:b":  "b:out",
		"sink:in": "join:out",
	})

	res := run(t, p)

	if res.Ticks != 3 {
		t.Errorf("expected 3 ticks, got %d", res.Ticks)
	}
	want := []any{"a1+b1", "a2", "a3"}
	if got := sink.Values(InPad); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
