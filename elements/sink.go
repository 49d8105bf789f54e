package elements

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/logger"
)

// Collect records every non-empty frame it receives, per pad.
type Collect struct {
	name string
	pads []string

	mu     sync.Mutex
	frames map[string][]any
	eos    bool
}

// NewCollect creates a sink over pads, or a single "in" pad when none are given.
func NewCollect(name string, pads ...string) *Collect {
	if len(pads) == 0 {
		pads = []string{InPad}
	}
	return &Collect{name: name, pads: pads, frames: make(map[string][]any, len(pads))}
}

func (c *Collect) Name() string         { return c.name }
func (c *Collect) SourcePads() []string { return nil }
func (c *Collect) SinkPads() []string   { return c.pads }

func (c *Collect) Consume(_ context.Context, in *dag.Input) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, pad := range c.pads {
		if f, ok := in.Frame(pad); ok && !f.Empty() {
			c.frames[pad] = append(c.frames[pad], f.Data)
		}
	}
	c.eos = in.AllEOS()
	return nil
}

// Values returns what arrived on pad, in tick order.
func (c *Collect) Values(pad string) []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.frames[pad]...)
}

// Done reports whether every pad has delivered end-of-stream.
func (c *Collect) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eos
}

// Record is one line written by JSONLines.
type Record struct {
	Element string `json:"element"`
	Pad     string `json:"pad"`
	Tick    int    `json:"tick"`
	Data    any    `json:"data"`
	EOS     bool   `json:"eos,omitempty"`
}

// JSONLines writes every non-empty frame as a JSON object on its own line.
type JSONLines struct {
	name   string
	pads   []string
	path   string
	w      io.Writer
	closer io.Closer
	enc    *json.Encoder
}

// NewJSONLines writes to w.
func NewJSONLines(name string, w io.Writer, pads ...string) *JSONLines {
	if len(pads) == 0 {
		pads = []string{InPad}
	}
	return &JSONLines{name: name, w: w, pads: pads}
}

// NewJSONLinesFile writes to a file created in Start.
func NewJSONLinesFile(name, path string, pads ...string) *JSONLines {
	j := NewJSONLines(name, nil, pads...)
	j.path = path
	return j
}

func (j *JSONLines) Name() string         { return j.name }
func (j *JSONLines) SourcePads() []string { return nil }
func (j *JSONLines) SinkPads() []string   { return j.pads }

func (j *JSONLines) Start(context.Context) error {
	if j.path != "" {
		f, err := os.Create(j.path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", j.path, err)
		}
		j.w, j.closer = f, f
	}
	if j.w == nil {
		j.w = os.Stdout
	}
	j.enc = json.NewEncoder(j.w)
	return nil
}

func (j *JSONLines) Stop(context.Context) error {
	if j.closer == nil {
		return nil
	}
	err := j.closer.Close()
	j.closer = nil
	return err
}

func (j *JSONLines) Consume(_ context.Context, in *dag.Input) error {
	for _, pad := range j.pads {
		f, ok := in.Frame(pad)
		if !ok || f.Empty() {
			continue
		}
		rec := Record{Element: j.name, Pad: pad, Tick: in.Tick(), Data: f.Data, EOS: f.EOS}
		if err := j.enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding frame: %w", err)
		}
	}
	return nil
}

// Log writes every non-empty frame to a logger.
type Log struct {
	name  string
	log   *logger.Logger
	level string
}

// NewLog logs frames of "in" at level (debug, info or warn). A nil logger
// uses the global one.
func NewLog(name string, log *logger.Logger, level string) *Log {
	if log == nil {
		log = logger.Get(logger.ComponentSink)
	}
	return &Log{name: name, log: log, level: level}
}

func (l *Log) Name() string         { return l.name }
func (l *Log) SourcePads() []string { return nil }
func (l *Log) SinkPads() []string   { return []string{InPad} }

func (l *Log) Consume(_ context.Context, in *dag.Input) error {
	f, _ := in.Frame(InPad)
	if f.Empty() {
		return nil
	}
	fields := logger.Fields(
		logger.FieldElement, l.name,
		logger.FieldTick, in.Tick(),
		"data", f.Data,
	)
	switch l.level {
	case "debug":
		l.log.Debug("frame", fields)
	case "warn":
		l.log.Warn("frame", fields)
	default:
		l.log.Info("frame", fields)
	}
	return nil
}

// Null drops everything it receives.
type Null struct {
	name string
}

func NewNull(name string) *Null { return &Null{name: name} }

func (n *Null) Name() string                              { return n.name }
func (n *Null) SourcePads() []string                      { return nil }
func (n *Null) SinkPads() []string                        { return []string{InPad} }
func (n *Null) Consume(context.Context, *dag.Input) error { return nil }
