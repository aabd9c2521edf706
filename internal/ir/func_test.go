package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc_InsertBefore(t *testing.T) {
	fn := NewFunc("f", ScalarType(F32))
	x := fn.AddParam("x", ScalarType(F32))
	mul := fn.Append(KindMul, "p", ScalarType(F32), x, x)
	ret := fn.Append(KindReturn, "", ScalarType(F32), mul)

	// New ops land immediately before the insertion point.
	sq := fn.InsertBefore(ret, KindMul, "", ScalarType(F32), mul, mul)
	require.Len(t, fn.Body, 3)
	assert.Same(t, mul, fn.Body[0])
	assert.Same(t, sq, fn.Body[1])
	assert.Same(t, ret, fn.Body[2])

	// Generated result names are fresh.
	assert.NotEmpty(t, sq.Name)
	assert.NotEqual(t, mul.Name, sq.Name)
}

func TestFunc_FreshNameSkipsTaken(t *testing.T) {
	fn := NewFunc("f", ScalarType(F32))
	x := fn.AddParam("x", ScalarType(F32))
	// Occupy the name the next generated op would otherwise pick.
	taken := fn.Append(KindMul, "t1", ScalarType(F32), x, x)
	fresh := fn.Append(KindMul, "", ScalarType(F32), taken, taken)

	assert.NotEqual(t, "t1", fresh.Name)
	assert.Same(t, fresh, fn.OpByName(fresh.Name))
}

func TestFunc_ReplaceAllUses(t *testing.T) {
	fn := NewFunc("f", ScalarType(F32))
	x := fn.AddParam("x", ScalarType(F32))
	old := fn.Append(KindAdd, "a", ScalarType(F32), x, x)
	use1 := fn.Append(KindMul, "b", ScalarType(F32), old, old)
	fn.Append(KindReturn, "", ScalarType(F32), use1)

	repl := fn.InsertBefore(use1, KindMul, "", ScalarType(F32), x, x)
	n := fn.ReplaceAllUses(old, repl)

	assert.Equal(t, 2, n)
	assert.Same(t, repl, use1.X())
	assert.Same(t, repl, use1.Y())
	// The replacement never replaces operands inside itself.
	assert.Same(t, x, repl.X())
}

func TestFunc_RemoveDead(t *testing.T) {
	fn := NewFunc("f", ScalarType(F32))
	x := fn.AddParam("x", ScalarType(F32))

	// Dead chain: e feeds p, p feeds nothing after replacement.
	e := fn.Append(KindConst, "e", ScalarType(F32))
	e.Val = 2.0
	p := fn.Append(KindPow, "p", ScalarType(F32), x, e)
	live := fn.Append(KindMul, "m", ScalarType(F32), x, x)
	fn.Append(KindReturn, "", ScalarType(F32), live)
	fn.ReplaceAllUses(p, live)

	removed := fn.RemoveDead()

	assert.Equal(t, 2, removed)
	require.Len(t, fn.Body, 2)
	assert.Same(t, live, fn.Body[0])
	assert.Equal(t, KindReturn, fn.Body[1].Kind)
	// Params are never swept.
	assert.Len(t, fn.Params, 1)
}

func TestFunc_RemoveDead_KeepsLiveOps(t *testing.T) {
	fn := NewFunc("f", ScalarType(F64))
	x := fn.AddParam("x", ScalarType(F64))
	m := fn.Append(KindMul, "m", ScalarType(F64), x, x)
	fn.Append(KindReturn, "", ScalarType(F64), m)

	assert.Equal(t, 0, fn.RemoveDead())
	assert.Len(t, fn.Body, 2)
}

func TestFunc_CountKindAndReturn(t *testing.T) {
	fn := NewFunc("f", ScalarType(F32))
	x := fn.AddParam("x", ScalarType(F32))
	m := fn.Append(KindMul, "m", ScalarType(F32), x, x)
	n := fn.Append(KindMul, "n", ScalarType(F32), m, x)
	ret := fn.Append(KindReturn, "", ScalarType(F32), n)

	assert.Equal(t, 2, fn.CountKind(KindMul))
	assert.Equal(t, 0, fn.CountKind(KindPow))
	assert.Same(t, ret, fn.Return())
}
