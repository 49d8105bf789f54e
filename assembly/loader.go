package assembly

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kbukum/padflow/errors"
)

// Loader finds definitions by name for includes.
type Loader interface {
	Load(name string) (*Definition, error)
}

// FileLoader loads definitions from YAML files on disk.
type FileLoader struct {
	dirs []string
}

// NewFileLoader creates a loader that searches dirs for {name}.yaml or
// {name}.yml, directly or one directory down.
func NewFileLoader(dirs ...string) *FileLoader {
	return &FileLoader{dirs: dirs}
}

// Load returns the first matching definition.
func (l *FileLoader) Load(name string) (*Definition, error) {
	for _, dir := range l.dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			candidates := []string{filepath.Join(dir, name+ext)}
			matches, _ := filepath.Glob(filepath.Join(dir, "*", name+ext))
			candidates = append(candidates, matches...)

			for _, path := range candidates {
				if _, err := os.Stat(path); err != nil {
					continue
				}
				return LoadFile(path)
			}
		}
	}
	return nil, errors.NotFound("pipeline definition", name)
}

// MapLoader serves definitions from memory.
type MapLoader map[string]*Definition

func (m MapLoader) Load(name string) (*Definition, error) {
	if def, ok := m[name]; ok {
		return def, nil
	}
	return nil, errors.NotFound("pipeline definition", name)
}

// Resolve flattens includes depth-first: included elements come before the
// including definition's own. A definition reached twice through different
// branches is added once.
func Resolve(def *Definition, loader Loader) ([]ElementDef, error) {
	stack := make(map[string]bool)    // current include path
	resolved := make(map[string]bool) // already flattened
	return resolve(def, loader, stack, resolved)
}

func resolve(def *Definition, loader Loader, stack, resolved map[string]bool) ([]ElementDef, error) {
	if stack[def.Name] {
		return nil, errors.Configuration(fmt.Sprintf("circular include of %q", def.Name))
	}
	stack[def.Name] = true
	defer delete(stack, def.Name)

	var out []ElementDef
	for _, name := range def.Includes {
		if resolved[name] {
			continue
		}
		if loader == nil {
			return nil, errors.Configuration(fmt.Sprintf("include %q needs a loader", name))
		}

		sub, err := loader.Load(name)
		if err != nil {
			return nil, fmt.Errorf("assembly: loading include %q: %w", name, err)
		}
		elems, err := resolve(sub, loader, stack, resolved)
		if err != nil {
			return nil, err
		}
		out = append(out, elems...)
	}

	out = append(out, def.Elements...)
	resolved[def.Name] = true
	return out, nil
}
