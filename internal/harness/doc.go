// Package harness runs YAML-defined optimizer scenarios.
//
// A scenario names an input program, optional pipeline options and a list of
// assertions over the optimized result. Scenarios double as golden tests:
// RunWithGolden compares the optimized program text against a checked-in
// golden file, so any change to rewrite behavior shows up as a readable diff.
package harness
