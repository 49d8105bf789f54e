package assembly

import (
	"fmt"
	"path/filepath"

	"github.com/kbukum/padflow/config"
	"github.com/kbukum/padflow/dag"
	"github.com/kbukum/padflow/elements"
	"github.com/kbukum/padflow/errors"
)

// Build turns a definition into a pipeline ready to run. Includes are
// resolved through loader, which may be nil when there are none. A nil
// registry uses the built-in components. opts are applied after the
// definition's runner settings.
func Build(def *Definition, registry *Registry, loader Loader, opts ...dag.Option) (*dag.Pipeline, error) {
	if err := config.Validate(def); err != nil {
		return nil, errors.Configuration("invalid pipeline definition").WithCause(err)
	}
	if registry == nil {
		registry = NewDefaultRegistry()
	}

	defs, err := Resolve(def, loader)
	if err != nil {
		return nil, err
	}

	elems := make([]dag.Element, 0, len(defs))
	links := make(map[string]string)
	for _, ed := range defs {
		e, err := buildElement(ed, registry)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		for local, src := range ed.Links {
			links[dag.PadName(ed.Name, local)] = src
		}
	}

	p := dag.New(append(runnerOptions(def), opts...)...)
	if _, err := p.Insert(elems...); err != nil {
		return nil, err
	}
	if _, err := p.Link(links); err != nil {
		return nil, err
	}
	return p, nil
}

// BuildFile loads the definition at path and builds it. Includes are
// searched next to the file.
func BuildFile(path string, registry *Registry, opts ...dag.Option) (*dag.Pipeline, error) {
	def, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(def, registry, NewFileLoader(filepath.Dir(path)), opts...)
}

func runnerOptions(def *Definition) []dag.Option {
	opts := []dag.Option{dag.WithName(def.Name)}
	if def.Runner.MaxParallel > 0 {
		opts = append(opts, dag.WithMaxParallel(def.Runner.MaxParallel))
	}
	if def.Runner.MaxTicks > 0 {
		opts = append(opts, dag.WithMaxTicks(def.Runner.MaxTicks))
	}
	return opts
}

func buildElement(ed ElementDef, registry *Registry) (dag.Element, error) {
	factory, ok := registry.Get(ed.Component)
	if !ok {
		return nil, errors.Configuration(fmt.Sprintf("element %q: unknown component %q", ed.Name, ed.Component)).
			WithDetail(errors.DetailElement, ed.Name)
	}
	e, err := factory(ed.Name, ed.Params)
	if err != nil {
		return nil, errors.Configuration(fmt.Sprintf("element %q: invalid params", ed.Name)).
			WithCause(err).
			WithDetail(errors.DetailElement, ed.Name)
	}
	if ed.Retry == nil && ed.Timeout <= 0 {
		return e, nil
	}

	t, ok := e.(dag.Transform)
	if !ok {
		return nil, errors.Configuration(fmt.Sprintf("element %q: retry and timeout apply to transforms only", ed.Name)).
			WithDetail(errors.DetailElement, ed.Name)
	}
	if ed.Timeout > 0 {
		t = elements.Timeout(t, ed.Timeout)
	}
	if ed.Retry != nil {
		t = elements.Retry(t, *ed.Retry)
	}
	return t, nil
}
