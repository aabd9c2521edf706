package rewrite

import (
	"github.com/strix-opt/strix/internal/ir"
)

// Pattern is a single rewrite rule. Implementations must be stateless:
// the driver may invoke a pattern concurrently on distinct functions.
type Pattern interface {
	// Name identifies the pattern in stats, remarks, and pipeline config.
	Name() string

	// MatchAndRewrite inspects op and, if the pattern applies, installs a
	// replacement through rw and returns true. Returning false declines the
	// op and guarantees the program is unchanged. An error reports a
	// contract violation by the host (malformed operation shape); the
	// pattern must not have mutated anything when it errors.
	MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error)
}

// Rewriter is the capability surface handed to patterns: construction of new
// operations before the rewrite point, constant materialization with
// broadcast, and use-substitution. It wraps one candidate op for the
// duration of one MatchAndRewrite call.
type Rewriter struct {
	fn          *ir.Func
	pos         *ir.Op
	replacement *ir.Op
}

func newRewriter(fn *ir.Func, pos *ir.Op) *Rewriter {
	return &Rewriter{fn: fn, pos: pos}
}

// Create constructs a new operation inserted immediately before the rewrite
// point, preserving def-before-use ordering.
func (rw *Rewriter) Create(kind ir.Kind, t ir.Type, operands ...*ir.Op) *ir.Op {
	return rw.fn.InsertBefore(rw.pos, kind, "", t, operands...)
}

// ConstScalar materializes a scalar constant of t's element type before the
// rewrite point.
func (rw *Rewriter) ConstScalar(v float64, t ir.Type) *ir.Op {
	return rw.fn.ConstScalar(rw.pos, v, t)
}

// Broadcast expands a scalar value to t when t is a vector type; for scalar
// t the value is returned unchanged.
func (rw *Rewriter) Broadcast(scalar *ir.Op, t ir.Type) *ir.Op {
	if !t.IsVector() {
		return scalar
	}
	return rw.Create(ir.KindBroadcast, t, scalar)
}

// Replace redirects every use of the candidate op to repl. The candidate
// itself stays in place; the driver's dead-op sweep reclaims it once it is
// unreferenced, so no observer ever sees a partial rewrite.
func (rw *Rewriter) Replace(repl *ir.Op) {
	rw.fn.ReplaceAllUses(rw.pos, repl)
	rw.replacement = repl
}

// ClassifyConst classifies an operand as a compile-time constant using the
// tagged scalar/splat/not-constant variant.
func (rw *Rewriter) ClassifyConst(op *ir.Op) ir.ConstValue {
	return ir.ClassifyConst(op)
}
