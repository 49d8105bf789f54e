package elements

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kbukum/padflow/dag"
)

// OutPad is the source pad of single-output elements.
const OutPad = "out"

// Slice emits one item per tick and marks the last one EOS.
type Slice[T any] struct {
	name  string
	items []T
	next  int
}

// NewSlice creates a source over items. An empty slice ends on the first tick.
func NewSlice[T any](name string, items []T) *Slice[T] {
	return &Slice[T]{name: name, items: items}
}

func (s *Slice[T]) Name() string         { return s.name }
func (s *Slice[T]) SourcePads() []string { return []string{OutPad} }
func (s *Slice[T]) SinkPads() []string   { return nil }

func (s *Slice[T]) Produce(_ context.Context, out *dag.Output) error {
	if s.next >= len(s.items) {
		return out.End(OutPad)
	}
	item := s.items[s.next]
	s.next++
	return out.Push(OutPad, dag.Frame{Data: item, EOS: s.next == len(s.items)})
}

// ProduceFunc produces the payload for a tick. Returning dag.ErrExhausted
// ends the stream.
type ProduceFunc func(ctx context.Context, tick int) (any, error)

// Func emits whatever fn returns each tick.
type Func struct {
	name string
	fn   ProduceFunc
}

// NewFunc creates a source that calls fn once per tick.
func NewFunc(name string, fn ProduceFunc) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Name() string         { return f.name }
func (f *Func) SourcePads() []string { return []string{OutPad} }
func (f *Func) SinkPads() []string   { return nil }

func (f *Func) Produce(ctx context.Context, out *dag.Output) error {
	v, err := f.fn(ctx, out.Tick())
	if err != nil {
		return err
	}
	return out.Send(OutPad, v)
}

// Lines emits one line per tick from a reader. When opened from a path,
// the file is opened in Start and closed in Stop.
type Lines struct {
	name    string
	path    string
	r       io.Reader
	closer  io.Closer
	scanner *bufio.Scanner
}

// NewLines reads lines from r.
func NewLines(name string, r io.Reader) *Lines {
	return &Lines{name: name, r: r}
}

// NewLinesFile reads lines from the file at path.
func NewLinesFile(name, path string) *Lines {
	return &Lines{name: name, path: path}
}

func (l *Lines) Name() string         { return l.name }
func (l *Lines) SourcePads() []string { return []string{OutPad} }
func (l *Lines) SinkPads() []string   { return nil }

func (l *Lines) Start(context.Context) error {
	if l.path != "" {
		f, err := os.Open(l.path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", l.path, err)
		}
		l.r, l.closer = f, f
	}
	if l.r == nil {
		return fmt.Errorf("lines %q: no input", l.name)
	}
	l.scanner = bufio.NewScanner(l.r)
	return nil
}

func (l *Lines) Stop(context.Context) error {
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

func (l *Lines) Produce(_ context.Context, out *dag.Output) error {
	if l.scanner.Scan() {
		return out.Send(OutPad, l.scanner.Text())
	}
	if err := l.scanner.Err(); err != nil {
		return fmt.Errorf("reading lines: %w", err)
	}
	return dag.ErrExhausted
}
