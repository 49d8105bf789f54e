package elements

import (
	"context"
	"fmt"

	"github.com/kbukum/padflow/dag"
)

// InPad is the sink pad of single-input elements.
const InPad = "in"

// Map applies fn to every frame of "in" and sends the result on "out".
// Empty EOS frames are not passed to fn.
type Map[I, O any] struct {
	name string
	fn   func(context.Context, I) (O, error)
}

// NewMap creates a one-in, one-out transform.
func NewMap[I, O any](name string, fn func(context.Context, I) (O, error)) *Map[I, O] {
	return &Map[I, O]{name: name, fn: fn}
}

func (m *Map[I, O]) Name() string         { return m.name }
func (m *Map[I, O]) SourcePads() []string { return []string{OutPad} }
func (m *Map[I, O]) SinkPads() []string   { return []string{InPad} }

func (m *Map[I, O]) Transform(ctx context.Context, in *dag.Input, out *dag.Output) error {
	f, _ := in.Frame(InPad)
	if f.Empty() {
		return nil
	}
	v, err := dag.As[I](f)
	if err != nil {
		return err
	}
	res, err := m.fn(ctx, v)
	if err != nil {
		return err
	}
	return out.Send(OutPad, res)
}

// CombineFunc merges the payloads seen in one tick, keyed by pad name.
type CombineFunc func(ctx context.Context, tick int, values map[string]any) (any, error)

// Combine merges several inputs into one output. It runs whenever at
// least one input is fresh and no input is missing; ended inputs are left
// out of values.
type Combine struct {
	name   string
	inputs []string
	fn     CombineFunc
}

// NewCombine creates a transform with the given sink pads and one "out" pad.
func NewCombine(name string, inputs []string, fn CombineFunc) *Combine {
	return &Combine{name: name, inputs: inputs, fn: fn}
}

func (c *Combine) Name() string         { return c.name }
func (c *Combine) SourcePads() []string { return []string{OutPad} }
func (c *Combine) SinkPads() []string   { return c.inputs }

func (c *Combine) Transform(ctx context.Context, in *dag.Input, out *dag.Output) error {
	values := make(map[string]any, len(c.inputs))
	for _, pad := range c.inputs {
		if f, ok := in.Frame(pad); ok && !f.Empty() {
			values[pad] = f.Data
		}
	}
	if len(values) == 0 {
		return nil
	}
	v, err := c.fn(ctx, in.Tick(), values)
	if err != nil {
		return fmt.Errorf("combine: %w", err)
	}
	return out.Send(OutPad, v)
}
