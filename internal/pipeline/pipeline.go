// Package pipeline loads and validates pass-pipeline configuration from CUE
// files. The embedded schema supplies defaults and rejects unknown passes
// and malformed options with their source positions, so a config error
// points at the offending line rather than surfacing later as a missing
// pattern.
package pipeline

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/strix-opt/strix/internal/powsimp"
	"github.com/strix-opt/strix/internal/rewrite"
)

//go:embed schema.cue
var schemaCUE string

// RemarksConfig selects where applied rewrites are recorded.
type RemarksConfig struct {
	// Format is "yaml" or "sqlite".
	Format string `json:"format"`

	// Path is the output file (YAML) or database (SQLite) location.
	Path string `json:"path"`
}

// Config is a validated pipeline configuration.
type Config struct {
	// Passes are pattern names, in registration order.
	Passes []string `json:"passes"`

	// MaxIterations bounds the rewrite fixpoint loop.
	MaxIterations int `json:"max_iterations"`

	// CorrectInverseSquare enables the -2.0 guard on the inverse-square
	// rule; false reproduces the reference behavior where the rule is
	// unreachable.
	CorrectInverseSquare bool `json:"correct_inverse_square"`

	// Remarks, when non-nil, enables rewrite recording.
	Remarks *RemarksConfig `json:"remarks,omitempty"`
}

// ConfigError reports a configuration problem with its CUE position when
// one is available.
type ConfigError struct {
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Default returns the built-in pipeline: the strength-reduction pass with
// reference-compatible options.
func Default() *Config {
	cfg, err := decode(cuecontext.New().CompileString(schemaCUE, cue.Filename("schema.cue")))
	if err != nil {
		// The embedded schema always decodes; reaching here is a build bug.
		panic(fmt.Sprintf("pipeline: embedded schema is invalid: %v", err))
	}
	return cfg
}

// Load reads a pipeline configuration file and validates it against the
// embedded schema.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("reading pipeline config: %v", err)}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	user := ctx.CompileBytes(data, cue.Filename(path))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.Unify(user)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	return decode(unified)
}

func decode(v cue.Value) (*Config, error) {
	pv := v.LookupPath(cue.ParsePath("pipeline"))
	if !pv.Exists() {
		return nil, &ConfigError{Message: "config has no pipeline struct", Pos: v.Pos()}
	}
	cfg := &Config{}
	if err := pv.Decode(cfg); err != nil {
		return nil, formatCUEError(err)
	}
	return cfg, nil
}

// Patterns builds the pattern set the config names, in order.
func (c *Config) Patterns() ([]rewrite.Pattern, error) {
	patterns := make([]rewrite.Pattern, 0, len(c.Passes))
	for _, name := range c.Passes {
		switch name {
		case powsimp.PatternName:
			patterns = append(patterns, powsimp.New(powsimp.Options{
				CorrectInverseSquare: c.CorrectInverseSquare,
			}))
		default:
			// The schema rejects unknown passes; this guards direct Config
			// construction in code.
			return nil, &ConfigError{Message: fmt.Sprintf("unknown pass %q", name)}
		}
	}
	return patterns, nil
}

// formatCUEError converts a CUE error into a ConfigError carrying the first
// reported position.
func formatCUEError(err error) *ConfigError {
	var pos token.Pos
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		pos = positions[0]
	}
	return &ConfigError{Message: cueerrors.Details(err, nil), Pos: pos}
}
