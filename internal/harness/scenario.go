package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one optimizer conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Input is the program text to optimize.
	Input string `yaml:"input"`

	// Pipeline overrides the default pipeline options.
	Pipeline *PipelineOptions `yaml:"pipeline,omitempty"`

	// Expect lists assertions over the optimized result.
	Expect []Assertion `yaml:"expect"`
}

// PipelineOptions mirrors the pipeline config fields a scenario may set.
type PipelineOptions struct {
	Passes               []string `yaml:"passes,omitempty"`
	MaxIterations        int      `yaml:"max_iterations,omitempty"`
	CorrectInverseSquare bool     `yaml:"correct_inverse_square,omitempty"`
}

// Assertion validates one property of the optimized program.
type Assertion struct {
	// Type specifies the assertion type:
	// - "op_count": the named op kind appears exactly Count times
	// - "rewrite_count": exactly Count rewrites fired
	// - "output_contains": the printed program contains Text
	// - "unchanged": the program printed identically before and after
	Type string `yaml:"type"`

	// Kind is the op mnemonic (used by op_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected occurrence count (op_count, rewrite_count).
	Count int `yaml:"count"`

	// Text is the expected substring (used by output_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertOpCount        = "op_count"
	AssertRewriteCount   = "rewrite_count"
	AssertOutputContains = "output_contains"
	AssertUnchanged      = "unchanged"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml scenario under dir, sorted by filename
// so test order is stable.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var scenarios []*Scenario
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Input == "" {
		return fmt.Errorf("input is required")
	}
	if len(s.Expect) == 0 {
		return fmt.Errorf("expect list is required and must be non-empty")
	}
	for i, a := range s.Expect {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertOpCount:
		if a.Kind == "" {
			return fmt.Errorf("expect[%d]: kind is required for op_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("expect[%d]: count must be non-negative", index)
		}
	case AssertRewriteCount:
		if a.Count < 0 {
			return fmt.Errorf("expect[%d]: count must be non-negative", index)
		}
	case AssertOutputContains:
		if a.Text == "" {
			return fmt.Errorf("expect[%d]: text is required for output_contains", index)
		}
	case AssertUnchanged:
		// No fields.
	case "":
		return fmt.Errorf("expect[%d]: type is required", index)
	default:
		return fmt.Errorf("expect[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
