package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VerifyResult holds the verify command's success payload.
type VerifyResult struct {
	Valid     bool           `json:"valid"`
	Functions []FunctionInfo `json:"functions"`
}

// FunctionInfo summarizes one verified function.
type FunctionInfo struct {
	Name   string `json:"name"`
	Params int    `json:"params"`
	Ops    int    `json:"ops"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file.sir>",
		Short: "Parse and verify a SIR program",
		Long: `Parse a SIR file and check its structural invariants without rewriting.

Checks operand arity, definition order, operand types and constant payloads.
Faster than opt for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runVerify(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, err := loadProgram(formatter, path)
	if err != nil {
		return err
	}

	result := &VerifyResult{Valid: true}
	for _, fn := range m.Funcs {
		result.Functions = append(result.Functions, FunctionInfo{
			Name:   fn.Name,
			Params: len(fn.Params),
			Ops:    len(fn.Body),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s is valid (%d function(s))\n", path, len(result.Functions))
	for _, fn := range result.Functions {
		fmt.Fprintf(formatter.Writer, "  @%s: %d param(s), %d op(s)\n", fn.Name, fn.Params, fn.Ops)
	}
	return nil
}
