// Package testutil provides IR construction helpers for package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/strix-opt/strix/internal/ir"
)

// ParseModule parses src and fails the test on any error.
func ParseModule(t *testing.T, src string) *ir.Module {
	t.Helper()
	m, err := ir.ParseString(src)
	require.NoError(t, err)
	return m
}

// ParseFunc parses src, which must define exactly one function, and returns
// it.
func ParseFunc(t *testing.T, src string) *ir.Func {
	t.Helper()
	m := ParseModule(t, src)
	require.Len(t, m.Funcs, 1)
	return m.Funcs[0]
}

// PowFunc returns the source of a scalar f32 function computing
// pow(x, exponent). The exponent is spliced in verbatim so tests control the
// literal spelling.
func PowFunc(exponent string) string {
	return `func @f(%x: f32) -> f32 {
  %e = const ` + exponent + ` : f32
  %p = pow %x, %e : f32
  return %p : f32
}
`
}

// PowVecFunc returns the source of a vec<4xf32> function computing
// pow(v, splat exponent).
func PowVecFunc(exponent string) string {
	return `func @f(%v: vec<4xf32>) -> vec<4xf32> {
  %e = const splat ` + exponent + ` : vec<4xf32>
  %p = pow %v, %e : vec<4xf32>
  return %p : vec<4xf32>
}
`
}
