package assembly

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kbukum/padflow/config"
	"github.com/kbukum/padflow/dag"
)

// Factory builds an element from its name and raw params.
type Factory func(name string, params map[string]any) (dag.Element, error)

// Registry maps component names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry creates a Registry holding the built-in components.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(component string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[component] = f
}

// Get retrieves a factory by component name.
func (r *Registry) Get(component string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[component]
	return f, ok
}

// List returns sorted names of all registered components.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Typed adapts a factory with a parameter struct. Params are decoded over
// a copy of defaults and checked with `validate` tags before fn runs.
func Typed[P any](defaults P, fn func(name string, p P) (dag.Element, error)) Factory {
	return func(name string, params map[string]any) (dag.Element, error) {
		p := defaults
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if err := config.Validate(&p); err != nil {
			return nil, err
		}
		return fn(name, p)
	}
}

func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("decoding params: %w", err)
	}
	return nil
}
