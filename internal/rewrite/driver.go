package rewrite

import (
	"fmt"
	"slices"

	"github.com/strix-opt/strix/internal/ir"
)

// DefaultMaxIterations bounds the fixpoint loop. Strength-reduction patterns
// never produce ops they themselves match, so in practice the loop settles
// in two iterations; the quota guards against a misbehaving pattern set.
const DefaultMaxIterations = 4

// Event describes one applied rewrite, for optimization-remark recording.
type Event struct {
	// Fn is the name of the function being rewritten.
	Fn string

	// Pattern is the name of the pattern that fired.
	Pattern string

	// Before is the canonical text of the replaced operation.
	Before string

	// After is the canonical text of the replacement's root operation.
	After string

	// Seq is the 0-based order of this rewrite within the Apply call.
	Seq int
}

// Recorder receives an Event for every applied rewrite. Recording is
// observation only; it never influences rewriting.
type Recorder interface {
	Record(ev Event) error
}

// Options configures one Apply call.
type Options struct {
	// MaxIterations caps the fixpoint loop; 0 means DefaultMaxIterations.
	MaxIterations int

	// Recorder, when non-nil, observes every applied rewrite.
	Recorder Recorder
}

// Stats summarizes one Apply call.
type Stats struct {
	// Visited is the number of pattern offers made (ops × live patterns).
	Visited int

	// Rewritten is the number of ops replaced.
	Rewritten int

	// Removed is the number of dead ops swept after rewriting.
	Removed int

	// Iterations is the number of fixpoint iterations executed.
	Iterations int
}

// Apply runs the pattern set over one function until no pattern fires or the
// iteration quota is reached. Ops are visited in body order; the first
// pattern that matches an op wins and the rest are not consulted for it.
// Replaced ops become unreferenced and are swept at the end of each
// iteration, which also makes the loop idempotent: replacements are never
// candidates for the patterns that produced them.
//
// A pattern error aborts the call; the function is left exactly as the last
// successful rewrite produced it (patterns guarantee no mutation on error).
func Apply(fn *ir.Func, patterns []Pattern, opts Options) (Stats, error) {
	var stats Stats

	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	for stats.Iterations < maxIter {
		stats.Iterations++
		changed := false

		// Snapshot the body: rewrites insert ops while we iterate.
		for _, op := range slices.Clone(fn.Body) {
			if op.Kind == ir.KindReturn {
				continue
			}
			for _, p := range patterns {
				stats.Visited++
				rw := newRewriter(fn, op)
				before := ir.PrintOp(op)
				matched, err := p.MatchAndRewrite(op, rw)
				if err != nil {
					return stats, fmt.Errorf("pattern %s on %%%s: %w", p.Name(), op.Name, err)
				}
				if !matched {
					continue
				}
				if rw.replacement == nil {
					return stats, fmt.Errorf("pattern %s matched %%%s but installed no replacement", p.Name(), op.Name)
				}
				if opts.Recorder != nil {
					ev := Event{
						Fn:      fn.Name,
						Pattern: p.Name(),
						Before:  before,
						After:   replacementText(rw.replacement),
						Seq:     stats.Rewritten,
					}
					if err := opts.Recorder.Record(ev); err != nil {
						return stats, fmt.Errorf("recording remark: %w", err)
					}
				}
				stats.Rewritten++
				changed = true
				break
			}
		}

		stats.Removed += fn.RemoveDead()
		if !changed {
			break
		}
	}

	return stats, nil
}

// ApplyModule runs Apply over every function in a module, accumulating stats.
func ApplyModule(m *ir.Module, patterns []Pattern, opts Options) (Stats, error) {
	var total Stats
	for _, fn := range m.Funcs {
		stats, err := Apply(fn, patterns, opts)
		total.Visited += stats.Visited
		total.Rewritten += stats.Rewritten
		total.Removed += stats.Removed
		if stats.Iterations > total.Iterations {
			total.Iterations = stats.Iterations
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// replacementText renders the value that now stands in for the rewritten op.
// Identity rewrites replace an op with an existing value (often a function
// parameter), which has no body line of its own; those render as a bare
// reference.
func replacementText(repl *ir.Op) string {
	if repl.Kind == ir.KindParam {
		return fmt.Sprintf("%%%s : %s", repl.Name, repl.Type)
	}
	return ir.PrintOp(repl)
}
