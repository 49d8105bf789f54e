package assembly

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/elements"
)

// CounterParams configures the "counter" source.
type CounterParams struct {
	Count int `mapstructure:"count" validate:"gte=0"`
	Start int `mapstructure:"start"`
	Step  int `mapstructure:"step"`
	// EOS selects "eager" (last frame carries EOS) or "lazy" (one extra tick).
	EOS string `mapstructure:"eos" validate:"oneof=eager lazy"`
}

// LinesParams configures the "lines" source.
type LinesParams struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ConcatParams configures the "concat" transform.
type ConcatParams struct {
	Inputs    []string `mapstructure:"inputs" validate:"required,min=1,dive,required"`
	Separator string   `mapstructure:"separator"`
}

// JSONLParams configures the "jsonl" sink. An empty path or "-" writes to stdout.
type JSONLParams struct {
	Path string `mapstructure:"path"`
}

// LogParams configures the "log" sink.
type LogParams struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn"`
}

type noParams struct{}

// RegisterBuiltins adds the stock components to r.
func RegisterBuiltins(r *Registry) {
	r.Register("counter", Typed(CounterParams{Count: 10, Start: 1, Step: 1, EOS: "eager"}, newCounter))
	r.Register("lines", Typed(LinesParams{}, func(name string, p LinesParams) (dag.Element, error) {
		return elements.NewLinesFile(name, p.Path), nil
	}))
	r.Register("upper", Typed(noParams{}, func(name string, _ noParams) (dag.Element, error) {
		return elements.NewMap(name, func(_ context.Context, s string) (string, error) {
			return strings.ToUpper(s), nil
		}), nil
	}))
	r.Register("passthrough", Typed(noParams{}, func(name string, _ noParams) (dag.Element, error) {
		return elements.NewMap(name, func(_ context.Context, v any) (any, error) { return v, nil }), nil
	}))
	r.Register("concat", Typed(ConcatParams{Separator: " "}, newConcat))
	r.Register("jsonl", Typed(JSONLParams{}, func(name string, p JSONLParams) (dag.Element, error) {
		if p.Path == "" || p.Path == "-" {
			return elements.NewJSONLines(name, os.Stdout), nil
		}
		return elements.NewJSONLinesFile(name, p.Path), nil
	}))
	r.Register("log", Typed(LogParams{Level: "info"}, func(name string, p LogParams) (dag.Element, error) {
		return elements.NewLog(name, nil, p.Level), nil
	}))
	r.Register("discard", Typed(noParams{}, func(name string, _ noParams) (dag.Element, error) {
		return elements.NewNull(name), nil
	}))
}

func newCounter(name string, p CounterParams) (dag.Element, error) {
	if p.EOS == "eager" {
		items := make([]int, p.Count)
		for i := range items {
			items[i] = p.Start + i*p.Step
		}
		return elements.NewSlice(name, items), nil
	}
	return elements.NewFunc(name, func(_ context.Context, tick int) (any, error) {
		if tick > p.Count {
			return nil, dag.ErrExhausted
		}
		return p.Start + (tick-1)*p.Step, nil
	}), nil
}

// newConcat joins the payloads of one tick in input order.
func newConcat(name string, p ConcatParams) (dag.Element, error) {
	inputs := p.Inputs
	return elements.NewCombine(name, inputs, func(_ context.Context, _ int, values map[string]any) (any, error) {
		parts := make([]string, 0, len(values))
		for _, pad := range inputs {
			if v, ok := values[pad]; ok {
				parts = append(parts, fmt.Sprint(v))
			}
		}
		return strings.Join(parts, p.Separator), nil
	}), nil
}
