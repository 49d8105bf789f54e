package assembly

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/elements"
	"github.com/kbukum/padflow/errors"
	"github.com/kbukum/padflow/logger"
)

// registryWithCollect adds a "collect" component that hands back the sink it built.
func registryWithCollect(sinks map[string]*elements.Collect) *Registry {
	r := NewDefaultRegistry()
	r.Register("collect", func(name string, _ map[string]any) (dag.Element, error) {
		c := elements.NewCollect(name)
		sinks[name] = c
		return c, nil
	})
	return r
}

func TestBuild_RunsDefinition(t *testing.T) {
	def, err := Parse([]byte(`
name: words
elements:
  - name: left
    component: counter
    params: {count: 2}
  - name: right
    component: counter
    params: {count: 2, start: 10, eos: lazy}
  - name: join
    component: concat
    params:
      inputs: [a, b]
      separator: "-"
    links:
      a: left:out
      b: right:out
  - name: sink
    component: collect
    links:
      in: join:out
`))
	if err != nil {
		t.Fatal(err)
	}
	sinks := map[string]*elements.Collect{}

	p, err := Build(def, registryWithCollect(sinks), nil, dag.WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Name() != "words" {
		t.Errorf("expected pipeline name words, got %q", p.Name())
	}
	res, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Ticks != 3 {
		t.Errorf("expected 3 ticks, got %d", res.Ticks)
	}
	if got, want := sinks["sink"].Values(elements.InPad), []any{"1-10", "2-11"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  *Definition
		want string
	}{
		{
			name: "missing name",
			def:  &Definition{Elements: []ElementDef{{Name: "a", Component: "discard"}}},
			want: "invalid pipeline definition",
		},
		{
			name: "unknown component",
			def:  &Definition{Name: "p", Elements: []ElementDef{{Name: "a", Component: "nope"}}},
			want: "unknown component",
		},
		{
			name: "bad params",
			def: &Definition{Name: "p", Elements: []ElementDef{
				{Name: "a", Component: "counter", Params: map[string]any{"eos": "sometimes"}},
			}},
			want: "invalid params",
		},
		{
			name: "unused params",
			def: &Definition{Name: "p", Elements: []ElementDef{
				{Name: "a", Component: "discard", Params: map[string]any{"color": "red"}},
			}},
			want: "invalid params",
		},
		{
			name: "timeout on a sink",
			def: &Definition{Name: "p", Elements: []ElementDef{
				{Name: "a", Component: "discard", Timeout: 1},
			}},
			want: "transforms only",
		},
		{
			name: "duplicate element",
			def: &Definition{Name: "p", Elements: []ElementDef{
				{Name: "a", Component: "discard"},
				{Name: "a", Component: "discard"},
			}},
			want: "already registered",
		},
		{
			name: "bad link",
			def: &Definition{Name: "p", Elements: []ElementDef{
				{Name: "a", Component: "discard", Links: map[string]string{"in": "ghost:out"}},
			}},
			want: "ghost:out",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.def, nil, nil)
			if !errors.IsConfiguration(err) {
				t.Fatalf("expected configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestBuild_WrapsTransforms(t *testing.T) {
	def := &Definition{Name: "p", Elements: []ElementDef{
		{Name: "src", Component: "counter", Params: map[string]any{"count": 1}},
		{Name: "mid", Component: "passthrough", Timeout: 1e9, Links: map[string]string{"in": "src:out"}},
		{Name: "sink", Component: "discard", Links: map[string]string{"in": "mid:out"}},
	}}

	p, err := Build(def, nil, nil, dag.WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	e, ok := p.Element("mid")
	if !ok {
		t.Fatal("expected mid element")
	}
	if _, ok := e.(*elements.Timed); !ok {
		t.Errorf("expected timeout wrapper, got %T", e)
	}
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestBuildFile_WithIncludes(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.jsonl")
	writeFile(t, filepath.Join(dir, "sources.yaml"), `
name: sources
elements:
  - name: src
    component: counter
    params: {count: 4}
`)
	writeFile(t, filepath.Join(dir, "main.yaml"), `
name: main
includes: [sources]
runner:
  max_parallel: 2
elements:
  - name: sink
    component: jsonl
    params:
      path: `+out+`
    links:
      in: src:out
`)

	p, err := BuildFile(filepath.Join(dir, "main.yaml"), nil, dag.WithLogger(logger.NewNop()))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := p.Elements(); !reflect.DeepEqual(got, []string{"src", "sink"}) {
		t.Errorf("unexpected elements %v", got)
	}
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 4 {
		t.Errorf("expected 4 lines, got %d", n)
	}
}

func TestRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	want := []string{"concat", "counter", "discard", "jsonl", "lines", "log", "passthrough", "upper"}
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("expected missing component")
	}
}

func TestTyped_WeakDecoding(t *testing.T) {
	var got CounterParams
	f := Typed(CounterParams{Step: 1, EOS: "eager"}, func(name string, p CounterParams) (dag.Element, error) {
		got = p
		return elements.NewNull(name), nil
	})

	if _, err := f("c", map[string]any{"count": "5", "start": 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := CounterParams{Count: 5, Start: 3, Step: 1, EOS: "eager"}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
