package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareInput = `func @square(%x: f64) -> f64 {
  %e = const 2.0 : f64
  %p = pow %x, %e : f64
  return %p : f64
}
`

func TestRunPassingScenario(t *testing.T) {
	s := &Scenario{
		Name:        "square",
		Description: "exponent 2.0 becomes a multiply",
		Input:       squareInput,
		Expect: []Assertion{
			{Type: AssertOpCount, Kind: "mul", Count: 1},
			{Type: AssertOpCount, Kind: "pow", Count: 0},
			{Type: AssertRewriteCount, Count: 1},
			{Type: AssertOutputContains, Text: "mul %x, %x"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Passed())
	assert.Equal(t, 1, result.Stats.Rewritten)
}

func TestRunReportsFailures(t *testing.T) {
	s := &Scenario{
		Name:        "wrong-expectation",
		Description: "deliberately wrong counts",
		Input:       squareInput,
		Expect: []Assertion{
			{Type: AssertOpCount, Kind: "pow", Count: 1},
			{Type: AssertUnchanged},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Passed())
	require.Len(t, result.Failures, 2)
	assert.Contains(t, result.Failures[0], "op_count pow: want 1, got 0")
	assert.Contains(t, result.Failures[1], "program was modified")
}

func TestRunUnchangedScenario(t *testing.T) {
	s := &Scenario{
		Name:        "no-match",
		Description: "exponent 0.5 has no rule",
		Input: `func @f(%x: f64) -> f64 {
  %e = const 0.5 : f64
  %p = pow %x, %e : f64
  return %p : f64
}
`,
		Expect: []Assertion{{Type: AssertUnchanged}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Passed())
	assert.Equal(t, result.Input, result.Output)
}

func TestRunPipelineOverride(t *testing.T) {
	s := &Scenario{
		Name:        "corrected",
		Description: "corrected guard reduces -2.0 to sqrt",
		Input: `func @f(%x: f64) -> f64 {
  %e = const -2.0 : f64
  %p = pow %x, %e : f64
  return %p : f64
}
`,
		Pipeline: &PipelineOptions{CorrectInverseSquare: true},
		Expect: []Assertion{
			{Type: AssertOpCount, Kind: "sqrt", Count: 1},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Passed())
}

func TestRunRejectsInvalidInput(t *testing.T) {
	s := &Scenario{
		Name:        "bad-input",
		Description: "input does not parse",
		Input:       "not a program\n",
		Expect:      []Assertion{{Type: AssertUnchanged}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad-input")
}

func TestRunUnknownAssertionKind(t *testing.T) {
	s := &Scenario{
		Name:        "unknown-kind",
		Description: "op_count against a kind the IR does not define",
		Input:       squareInput,
		Expect:      []Assertion{{Type: AssertOpCount, Kind: "fma", Count: 0}},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Passed())
	assert.Contains(t, result.Failures[0], `unknown op kind "fma"`)
}
