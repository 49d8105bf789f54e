package dag

import (
	"fmt"
	"sort"
)

// Input holds the frames an element observes in one invocation, keyed by
// local sink pad name. Pads that ended in an earlier tick carry an empty
// EOS frame.
type Input struct {
	tick   int
	pads   []string
	frames map[string]Frame
}

// NewInput builds an Input for tests and wrappers that call elements directly.
func NewInput(tick int, frames map[string]Frame) *Input {
	pads := make([]string, 0, len(frames))
	for name := range frames {
		pads = append(pads, name)
	}
	sort.Strings(pads)
	return &Input{tick: tick, pads: pads, frames: frames}
}

// Tick returns the 1-based tick number of the invocation.
func (in *Input) Tick() int { return in.tick }

// Pads returns the local sink pad names in declaration order.
func (in *Input) Pads() []string { return in.pads }

// Frame returns the frame observed on a local sink pad.
func (in *Input) Frame(pad string) (Frame, bool) {
	f, ok := in.frames[pad]
	return f, ok
}

// AllEOS reports whether every pad has reached end-of-stream.
func (in *Input) AllEOS() bool {
	for _, f := range in.frames {
		if !f.EOS {
			return false
		}
	}
	return true
}

// Output collects the frames an element writes in one invocation.
// Each source pad accepts at most one frame per tick.
type Output struct {
	tick    int
	element string
	pads    []string
	ended   map[string]bool
	frames  map[string]Frame
}

// NewOutput builds an Output for tests and wrappers that call elements directly.
func NewOutput(tick int, element string, pads []string) *Output {
	return newOutput(tick, element, pads, nil)
}

func newOutput(tick int, element string, pads []string, ended map[string]bool) *Output {
	if ended == nil {
		ended = map[string]bool{}
	}
	return &Output{
		tick:    tick,
		element: element,
		pads:    pads,
		ended:   ended,
		frames:  make(map[string]Frame, len(pads)),
	}
}

// Tick returns the 1-based tick number of the invocation.
func (o *Output) Tick() int { return o.tick }

// Pads returns the local source pad names in declaration order.
func (o *Output) Pads() []string { return o.pads }

// Push writes a frame to a local source pad.
func (o *Output) Push(pad string, f Frame) error {
	if !o.has(pad) {
		return fmt.Errorf("dag: element %q has no source pad %q", o.element, pad)
	}
	if o.ended[pad] {
		return fmt.Errorf("dag: pad %q already reached end-of-stream", PadName(o.element, pad))
	}
	if _, dup := o.frames[pad]; dup {
		return fmt.Errorf("dag: pad %q already written in tick %d", PadName(o.element, pad), o.tick)
	}
	o.frames[pad] = f
	return nil
}

// Send pushes data as a regular frame.
func (o *Output) Send(pad string, data any) error {
	return o.Push(pad, Frame{Data: data})
}

// End pushes an empty EOS frame.
func (o *Output) End(pad string) error {
	return o.Push(pad, Frame{EOS: true})
}

// Frames returns what has been written so far, keyed by local pad name.
func (o *Output) Frames() map[string]Frame { return o.frames }

func (o *Output) has(pad string) bool {
	for _, p := range o.pads {
		if p == pad {
			return true
		}
	}
	return false
}

// endAll marks every written frame EOS and closes the remaining open pads.
func (o *Output) endAll() {
	for _, pad := range o.pads {
		if o.ended[pad] {
			continue
		}
		f := o.frames[pad]
		f.EOS = true
		o.frames[pad] = f
	}
}
