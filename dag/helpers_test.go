package dag

import (
	"context"
	"sync"

	"github.com/kbukum/padflow/logger"
)

func newTestPipeline(opts ...Option) *Pipeline {
	return New(append([]Option{WithLogger(logger.NewNop())}, opts...)...)
}

// --- test elements ---

// sliceSource emits one item per tick on pad "out". With eager set, the
// last item carries EOS; otherwise the source reports ErrExhausted.
type sliceSource struct {
	name  string
	items []any
	eager bool
	next  int
}

func (s *sliceSource) Name() string         { return s.name }
func (s *sliceSource) SourcePads() []string { return []string{"out"} }
func (s *sliceSource) SinkPads() []string   { return nil }

func (s *sliceSource) Produce(_ context.Context, out *Output) error {
	if s.next >= len(s.items) {
		return ErrExhausted
	}
	f := Frame{Data: s.items[s.next], EOS: s.eager && s.next == len(s.items)-1}
	s.next++
	return out.Push("out", f)
}

func ints(n int) []any {
	items := make([]any, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

// funcSource calls fn every tick.
type funcSource struct {
	name string
	pads []string
	fn   func(ctx context.Context, out *Output) error
}

func (s *funcSource) Name() string         { return s.name }
func (s *funcSource) SourcePads() []string { return s.pads }
func (s *funcSource) SinkPads() []string   { return nil }

func (s *funcSource) Produce(ctx context.Context, out *Output) error { return s.fn(ctx, out) }

// funcTransform calls fn for every invocation.
type funcTransform struct {
	name string
	in   []string
	out  []string
	fn   func(ctx context.Context, in *Input, out *Output) error
}

func (t *funcTransform) Name() string         { return t.name }
func (t *funcTransform) SourcePads() []string { return t.out }
func (t *funcTransform) SinkPads() []string   { return t.in }

func (t *funcTransform) Transform(ctx context.Context, in *Input, out *Output) error {
	return t.fn(ctx, in, out)
}

// mapTransform applies fn to every non-empty frame of "in" and sends it on "out".
func mapTransform(name string, fn func(any) any) *funcTransform {
	return &funcTransform{
		name: name,
		in:   []string{"in"},
		out:  []string{"out"},
		fn: func(_ context.Context, in *Input, out *Output) error {
			f, _ := in.Frame("in")
			if f.Empty() {
				return nil
			}
			return out.Send("out", fn(f.Data))
		},
	}
}

// collectSink records non-empty frames per pad and the pads seen per tick.
type collectSink struct {
	name string
	pads []string

	mu      sync.Mutex
	got     map[string][]any
	perTick map[int][]string
}

func newCollectSink(name string, pads ...string) *collectSink {
	if len(pads) == 0 {
		pads = []string{"in"}
	}
	return &collectSink{name: name, pads: pads, got: map[string][]any{}, perTick: map[int][]string{}}
}

func (s *collectSink) Name() string         { return s.name }
func (s *collectSink) SourcePads() []string { return nil }
func (s *collectSink) SinkPads() []string   { return s.pads }

func (s *collectSink) Consume(_ context.Context, in *Input) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, pad := range in.Pads() {
		f, _ := in.Frame(pad)
		if f.Empty() {
			continue
		}
		s.got[pad] = append(s.got[pad], f.Data)
		s.perTick[in.Tick()] = append(s.perTick[in.Tick()], pad)
	}
	return nil
}

func (s *collectSink) values(pad string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.got[pad]...)
}

// hooked records Start/Stop calls around a collectSink.
type hooked struct {
	*collectSink
	startErr error
	started  bool
	stopped  bool
}

func (h *hooked) Start(context.Context) error { h.started = true; return h.startErr }
func (h *hooked) Stop(context.Context) error  { h.stopped = true; return nil }

// declaring is a sink that declares its own upstream link.
type declaring struct {
	*collectSink
	links map[string]string
}

func (d *declaring) Links() map[string]string { return d.links }

// badRole has source pads but only implements Sink.
type badRole struct{ collectSink }

func (b *badRole) SourcePads() []string { return []string{"out"} }

func linear(t interface{ Fatalf(string, ...any) }, src Element, sink *collectSink, opts ...Option) *Pipeline {
	p := newTestPipeline(opts...)
	upper := mapTransform("double", func(v any) any { return v.(int) * 2 })
	if _, err := p.Insert(src, upper, sink); err != nil {
		t.Fatalf("insert: %v", err)
	}
	links := map[string]string{"double:in": PadName(src.Name(), "out")}
	links[PadName(sink.name, "in")] = "double:out"
	if _, err := p.Link(links); err != nil {
		t.Fatalf("link: %v", err)
	}
	return p
}
