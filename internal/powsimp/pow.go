package powsimp

import (
	"fmt"

	"github.com/strix-opt/strix/internal/ir"
	"github.com/strix-opt/strix/internal/rewrite"
)

// PatternName is the name the pattern registers under in pipelines, stats,
// and remarks.
const PatternName = "pow-strength-reduction"

// Options configures the pattern.
type Options struct {
	// CorrectInverseSquare guards the last table row with -2.0 instead of
	// reproducing the reference behavior, where the row repeats -1.0 and is
	// shadowed by the reciprocal rule above it. See the table comment in
	// rules.
	CorrectInverseSquare bool
}

// PowStrengthReduction rewrites pow(x, c) for recognized constant exponents
// c. It holds no mutable state; one value may serve any number of functions.
type PowStrengthReduction struct {
	rules []powRule
}

// New creates the pattern with the given options.
func New(opts Options) *PowStrengthReduction {
	return &PowStrengthReduction{rules: rules(opts)}
}

// Patterns is the registration entry point: it contributes this package's
// rules to a pattern set.
func Patterns(opts Options) []rewrite.Pattern {
	return []rewrite.Pattern{New(opts)}
}

// Name implements rewrite.Pattern.
func (*PowStrengthReduction) Name() string { return PatternName }

// powRule pairs an exact exponent value with a replacement builder. Builders
// construct the replacement chain through the rewriter and return its root;
// they never mutate the matched op itself.
type powRule struct {
	exponent float64
	build    func(rw *rewrite.Rewriter, x *ir.Op, t ir.Type) *ir.Op
}

// rules returns the priority-ordered rule table. Order is the contract:
// the first matching row wins, so a value that appears twice can only ever
// fire its first row.
//
// The last row mirrors the reference implementation, which tests -1.0 a
// second time where -2.0 was evidently intended; the reciprocal rule above
// it always matches first, leaving the sqrt reduction unreachable. With
// Options.CorrectInverseSquare the guard becomes -2.0 and the row is live.
func rules(opts Options) []powRule {
	inverseSquare := -1.0
	if opts.CorrectInverseSquare {
		inverseSquare = -2.0
	}
	return []powRule{
		// pow(x, 1.0) -> x
		{1.0, func(rw *rewrite.Rewriter, x *ir.Op, t ir.Type) *ir.Op {
			return x
		}},
		// pow(x, 2.0) -> x * x
		{2.0, func(rw *rewrite.Rewriter, x *ir.Op, t ir.Type) *ir.Op {
			return rw.Create(ir.KindMul, t, x, x)
		}},
		// pow(x, 3.0) -> x * (x * x), computing the square once
		{3.0, func(rw *rewrite.Rewriter, x *ir.Op, t ir.Type) *ir.Op {
			square := rw.Create(ir.KindMul, t, x, x)
			return rw.Create(ir.KindMul, t, x, square)
		}},
		// pow(x, -1.0) -> 1.0 / x, broadcasting the constant for vectors
		{-1.0, func(rw *rewrite.Rewriter, x *ir.Op, t ir.Type) *ir.Op {
			one := rw.ConstScalar(1.0, t)
			return rw.Create(ir.KindDiv, t, rw.Broadcast(one, t), x)
		}},
		// pow(x, -2.0 intended) -> sqrt(x)
		{inverseSquare, func(rw *rewrite.Rewriter, x *ir.Op, t ir.Type) *ir.Op {
			return rw.Create(ir.KindSqrt, t, x)
		}},
	}
}

// MatchAndRewrite implements rewrite.Pattern. It classifies the exponent
// operand as a compile-time constant and fires the first rule whose value is
// exactly equal; a non-constant or unrecognized exponent declines without
// touching the program.
func (p *PowStrengthReduction) MatchAndRewrite(op *ir.Op, rw *rewrite.Rewriter) (bool, error) {
	if op.Kind != ir.KindPow {
		return false, nil
	}
	if err := checkShape(op); err != nil {
		return false, err
	}

	x := op.X()
	c := rw.ClassifyConst(op.Y())
	if c.Kind == ir.NotConst {
		return false, nil
	}

	for _, rule := range p.rules {
		if c.Value != rule.exponent {
			continue
		}
		rw.Replace(rule.build(rw, x, op.Type))
		return true, nil
	}
	return false, nil
}

// checkShape validates the two-operand pow contract: the host supplying
// anything else is an integration bug, fatal to this rewrite attempt.
func checkShape(op *ir.Op) error {
	if len(op.Operands) != 2 {
		return &rewrite.PatternError{
			Code:    rewrite.ErrCodeInvalidOperationShape,
			Pattern: PatternName,
			Op:      op.Name,
			Message: fmt.Sprintf("pow expects 2 operands, has %d", len(op.Operands)),
		}
	}
	if base := op.X(); base.Type != op.Type {
		return &rewrite.PatternError{
			Code:    rewrite.ErrCodeInvalidOperationShape,
			Pattern: PatternName,
			Op:      op.Name,
			Message: fmt.Sprintf("base has type %s, result has %s", base.Type, op.Type),
		}
	}
	return nil
}
