package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strix-opt/strix/internal/ir"
)

// doubleNeg rewrites neg(neg(x)) to x.
type doubleNeg struct{}

func (doubleNeg) Name() string { return "double-neg" }

func (doubleNeg) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	if op.Kind != ir.KindNeg {
		return false, nil
	}
	inner := op.X()
	if inner == nil || inner.Kind != ir.KindNeg {
		return false, nil
	}
	rw.Replace(inner.X())
	return true, nil
}

// subZero rewrites neg(neg(x)) to sub(x, 0). It matches exactly the same
// shape as doubleNeg, so registration order decides which one fires.
type subZero struct{}

func (subZero) Name() string { return "sub-zero" }

func (subZero) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	if op.Kind != ir.KindNeg {
		return false, nil
	}
	inner := op.X()
	if inner == nil || inner.Kind != ir.KindNeg {
		return false, nil
	}
	zero := rw.ConstScalar(0.0, op.Type)
	z := rw.Broadcast(zero, op.Type)
	rw.Replace(rw.Create(ir.KindSub, op.Type, inner.X(), z))
	return true, nil
}

// foldSubZero rewrites sub(x, 0) back to x.
type foldSubZero struct{}

func (foldSubZero) Name() string { return "fold-sub-zero" }

func (foldSubZero) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	if op.Kind != ir.KindSub {
		return false, nil
	}
	c := rw.ClassifyConst(op.Y())
	if c.Kind == ir.NotConst || c.Value != 0.0 {
		return false, nil
	}
	rw.Replace(op.X())
	return true, nil
}

// alwaysInvalid reports a shape violation for every mul op.
type alwaysInvalid struct{}

func (alwaysInvalid) Name() string { return "always-invalid" }

func (alwaysInvalid) MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error) {
	if op.Kind != ir.KindMul {
		return false, nil
	}
	return false, &PatternError{
		Code:    ErrCodeInvalidOperationShape,
		Pattern: "always-invalid",
		Op:      op.Name,
		Message: "test violation",
	}
}

func parseFunc(t *testing.T, src string) *ir.Func {
	t.Helper()
	m, err := ir.ParseString(src)
	require.NoError(t, err)
	require.Len(t, m.Funcs, 1)
	return m.Funcs[0]
}

func TestApply_RewritesToFixpoint(t *testing.T) {
	fn := parseFunc(t, `func @f(%x: f64) -> f64 {
  %a = neg %x : f64
  %b = neg %a : f64
  %c = neg %b : f64
  %d = neg %c : f64
  return %d : f64
}
`)

	stats, err := Apply(fn, []Pattern{doubleNeg{}}, Options{})
	require.NoError(t, err)

	// neg(neg(neg(neg(x)))) collapses to x; everything else is dead.
	assert.Equal(t, 0, fn.CountKind(ir.KindNeg))
	assert.Same(t, fn.Params[0], fn.Return().X())
	assert.Positive(t, stats.Rewritten)
	assert.Positive(t, stats.Removed)
	assert.NoError(t, ir.Verify(&ir.Module{Funcs: []*ir.Func{fn}}))
}

func TestApply_FirstPatternWins(t *testing.T) {
	fn := parseFunc(t, `func @f(%x: f32) -> f32 {
  %a = neg %x : f32
  %b = neg %a : f32
  return %b : f32
}
`)

	// Both patterns match %b; doubleNeg is registered first, so it wins and
	// no sub is ever created.
	stats, err := Apply(fn, []Pattern{doubleNeg{}, subZero{}}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, fn.CountKind(ir.KindNeg))
	assert.Equal(t, 0, fn.CountKind(ir.KindSub))
	assert.Same(t, fn.Params[0], fn.Return().X())
	assert.GreaterOrEqual(t, stats.Iterations, 2)
}

func TestApply_PatternOrderMatters(t *testing.T) {
	fn := parseFunc(t, `func @f(%x: f32) -> f32 {
  %a = neg %x : f32
  %b = neg %a : f32
  return %b : f32
}
`)

	// With subZero first, the pair lowers to sub(x, 0) instead.
	_, err := Apply(fn, []Pattern{subZero{}, doubleNeg{}}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, fn.CountKind(ir.KindNeg))
	assert.Equal(t, 1, fn.CountKind(ir.KindSub))
	assert.Equal(t, ir.KindSub, fn.Return().X().Kind)
}

func TestApply_PatternErrorAborts(t *testing.T) {
	fn := parseFunc(t, `func @f(%x: f32) -> f32 {
  %m = mul %x, %x : f32
  return %m : f32
}
`)

	_, err := Apply(fn, []Pattern{alwaysInvalid{}}, Options{})
	require.Error(t, err)
	assert.True(t, IsInvalidShape(err))

	// The function is untouched: no mutation on error.
	assert.Equal(t, 1, fn.CountKind(ir.KindMul))
}

func TestApply_IterationQuota(t *testing.T) {
	src := `func @f(%x: f32) -> f32 {
  %a = neg %x : f32
  %b = neg %a : f32
  return %b : f32
}
`

	// subZero introduces a sub(x, 0) that foldSubZero only sees on the next
	// iteration; a quota of one stops after the first stage.
	fn := parseFunc(t, src)
	stats, err := Apply(fn, []Pattern{subZero{}, foldSubZero{}}, Options{MaxIterations: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Iterations)
	assert.Equal(t, 1, fn.CountKind(ir.KindSub))

	// Unbounded, the second stage folds the sub away again.
	fn = parseFunc(t, src)
	_, err = Apply(fn, []Pattern{subZero{}, foldSubZero{}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, fn.CountKind(ir.KindSub))
	assert.Same(t, fn.Params[0], fn.Return().X())
}

type recordingSink struct {
	events []Event
}

func (r *recordingSink) Record(ev Event) error {
	r.events = append(r.events, ev)
	return nil
}

func TestApply_RecordsEvents(t *testing.T) {
	fn := parseFunc(t, `func @f(%x: f64) -> f64 {
  %a = neg %x : f64
  %b = neg %a : f64
  return %b : f64
}
`)

	sink := &recordingSink{}
	_, err := Apply(fn, []Pattern{doubleNeg{}}, Options{Recorder: sink})
	require.NoError(t, err)

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, "f", ev.Fn)
	assert.Equal(t, "double-neg", ev.Pattern)
	assert.Equal(t, "%b = neg %a : f64", ev.Before)
	assert.Equal(t, "%x : f64", ev.After)
	assert.Equal(t, 0, ev.Seq)
}

func TestApplyModule_Accumulates(t *testing.T) {
	m, err := ir.ParseString(`func @f(%x: f64) -> f64 {
  %a = neg %x : f64
  %b = neg %a : f64
  return %b : f64
}

func @g(%y: f64) -> f64 {
  %a = neg %y : f64
  %b = neg %a : f64
  return %b : f64
}
`)
	require.NoError(t, err)

	stats, err := ApplyModule(m, []Pattern{doubleNeg{}}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rewritten)
}
