// Package powsimp implements strength reduction for floating-point
// exponentiation: pow ops whose exponent is a compile-time constant (scalar,
// or a uniform "splat" vector) are replaced with an equivalent but cheaper
// chain of multiplies, divides, or square roots.
//
// The rule table is data, not control flow: an ordered list of exact
// exponent values paired with replacement builders. The first row whose
// value matches the exponent wins; matching is bit-exact float64 equality,
// never epsilon-based. At most one rule fires per operation, and the
// produced operations are never pow ops, so re-running the pattern over its
// own output always declines.
package powsimp
