// Package ir provides the data-flow intermediate representation that Strix
// optimizes: functions of SSA-style operations over floating-point scalar and
// fixed-width vector values.
//
// This package is the foundational layer. All other internal packages import
// ir; ir imports nothing internal. This keeps the representation free of
// circular dependencies with the rewrite machinery built on top of it.
//
// Key design constraints:
//   - Operations are owned by their Func; rewrites request construction,
//     substitution, and dead-op sweeps through Func methods, never by
//     mutating neighbours directly
//   - New operations are always inserted before an existing position, so
//     def-before-use ordering is preserved by construction
//   - Constant classification returns a tagged variant (scalar / splat /
//     not-constant), never parallel boolean flags
//   - The textual form round-trips: Parse(Print(m)) is identical to m
package ir
