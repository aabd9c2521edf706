package harness

import (
	"fmt"
	"strings"

	"github.com/strix-opt/strix/internal/ir"
	"github.com/strix-opt/strix/internal/pipeline"
	"github.com/strix-opt/strix/internal/rewrite"
)

// Result holds the outcome of running a scenario.
type Result struct {
	// Input is the parsed program as printed before optimization.
	Input string

	// Output is the optimized program text.
	Output string

	// Stats are the driver statistics for the run.
	Stats rewrite.Stats

	// Failures lists assertion failures in scenario order. Empty means the
	// scenario passed.
	Failures []string
}

// Passed reports whether every assertion held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes a scenario: parse, verify, optimize, then evaluate the
// scenario's assertions against the result.
func Run(scenario *Scenario) (*Result, error) {
	m, err := ir.ParseString(scenario.Input)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	if err := ir.Verify(m); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	cfg := configFor(scenario)
	patterns, err := cfg.Patterns()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	result := &Result{Input: ir.Print(m)}
	result.Stats, err = rewrite.ApplyModule(m, patterns, rewrite.Options{MaxIterations: cfg.MaxIterations})
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	result.Output = ir.Print(m)

	for i, a := range scenario.Expect {
		if failure := evalAssertion(&a, m, result); failure != "" {
			result.Failures = append(result.Failures, fmt.Sprintf("expect[%d]: %s", i, failure))
		}
	}
	return result, nil
}

// configFor merges a scenario's pipeline options over the defaults.
func configFor(scenario *Scenario) *pipeline.Config {
	cfg := pipeline.Default()
	opts := scenario.Pipeline
	if opts == nil {
		return cfg
	}
	if len(opts.Passes) > 0 {
		cfg.Passes = opts.Passes
	}
	if opts.MaxIterations > 0 {
		cfg.MaxIterations = opts.MaxIterations
	}
	cfg.CorrectInverseSquare = opts.CorrectInverseSquare
	return cfg
}

func evalAssertion(a *Assertion, m *ir.Module, result *Result) string {
	switch a.Type {
	case AssertOpCount:
		kind, ok := ir.KindByName[a.Kind]
		if !ok {
			return fmt.Sprintf("unknown op kind %q", a.Kind)
		}
		count := 0
		for _, fn := range m.Funcs {
			count += fn.CountKind(kind)
		}
		if count != a.Count {
			return fmt.Sprintf("op_count %s: want %d, got %d", a.Kind, a.Count, count)
		}
	case AssertRewriteCount:
		if result.Stats.Rewritten != a.Count {
			return fmt.Sprintf("rewrite_count: want %d, got %d", a.Count, result.Stats.Rewritten)
		}
	case AssertOutputContains:
		if !strings.Contains(result.Output, a.Text) {
			return fmt.Sprintf("output_contains: %q not found in output", a.Text)
		}
	case AssertUnchanged:
		if result.Output != result.Input {
			return "unchanged: program was modified"
		}
	}
	return ""
}
