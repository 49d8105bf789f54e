package assembly

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/padflow/errors"
	"github.com/kbukum/padflow/resilience"
)

// Definition is a YAML pipeline description.
type Definition struct {
	// Name becomes the pipeline name.
	Name string `yaml:"name" validate:"required"`
	// Includes lists other definitions whose elements are added first.
	Includes []string `yaml:"includes,omitempty"`
	// Runner overrides scheduling limits.
	Runner RunnerDef `yaml:"runner,omitempty"`
	// Elements are inserted in order.
	Elements []ElementDef `yaml:"elements" validate:"dive"`
}

// RunnerDef holds scheduling limits. Zero keeps the pipeline default.
type RunnerDef struct {
	MaxParallel int `yaml:"max_parallel" validate:"gte=0"`
	MaxTicks    int `yaml:"max_ticks" validate:"gte=0"`
}

// ElementDef describes one element instance.
type ElementDef struct {
	// Name is the element name, unique within the pipeline.
	Name string `yaml:"name" validate:"required"`
	// Component is the registry key of the factory that builds it.
	Component string `yaml:"component" validate:"required"`
	// Params are decoded into the component's parameter struct.
	Params map[string]any `yaml:"params,omitempty"`
	// Links maps a local sink pad to a full source pad name ("element:pad").
	Links map[string]string `yaml:"links,omitempty"`
	// Retry re-runs a failing transform.
	Retry *resilience.RetryConfig `yaml:"retry,omitempty"`
	// Timeout bounds each invocation of a transform.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Parse decodes a definition. Unknown keys are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if err == io.EOF {
			return nil, errors.Configuration("empty pipeline definition")
		}
		return nil, errors.Configuration("invalid pipeline definition").WithCause(err)
	}
	return &def, nil
}

// LoadFile reads and parses the definition at path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assembly: reading %s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("assembly: parsing %s: %w", path, err)
	}
	return def, nil
}
