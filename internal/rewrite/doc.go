// Package rewrite provides the generic pattern-driven rewrite driver.
//
// Patterns are plug-in rules: each one inspects a candidate operation and
// either installs a cheaper replacement or declines. The driver walks every
// operation of a function, offers it to each pattern in registration order,
// and repeats until a fixed point (bounded by an iteration quota). Patterns
// never touch the function directly; all mutation goes through the Rewriter
// capability surface, so the same rule logic is reusable against any
// representation that can satisfy that narrow interface.
//
// A pattern invocation is stateless and deterministic: repeating it on the
// same operation yields the same outcome, and a declined match leaves the
// program byte-for-byte unchanged.
package rewrite
