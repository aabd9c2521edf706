package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strix-opt/strix/internal/ir"
	"github.com/strix-opt/strix/internal/pipeline"
	"github.com/strix-opt/strix/internal/remarks"
	"github.com/strix-opt/strix/internal/rewrite"
)

// OptOptions holds flags for the opt command.
type OptOptions struct {
	*RootOptions
	Pipeline  string // pipeline config path (CUE)
	Output    string // output file path
	Remarks   string // YAML remarks file path
	RemarksDB string // SQLite remarks database path
}

// OptResult is the success payload of the opt command.
type OptResult struct {
	IR        string `json:"ir"`
	Visited   int    `json:"visited"`
	Rewritten int    `json:"rewritten"`
	Removed   int    `json:"removed"`
	Session   string `json:"session,omitempty"`
}

// NewOptCommand creates the opt command.
func NewOptCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OptOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "opt <file.sir>",
		Short: "Optimize a SIR program",
		Long: `Parse a SIR file, verify it and run the rewrite pipeline over it.

The optimized program is printed to stdout or written with --output.
Rewrites can be recorded as YAML optimization remarks (--remarks) or
into a SQLite database (--remarks-db).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpt(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Pipeline, "pipeline", "p", "", "pipeline config file (CUE)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Remarks, "remarks", "", "write YAML optimization remarks to this file")
	cmd.Flags().StringVar(&opts.RemarksDB, "remarks-db", "", "record optimization remarks in this SQLite database")

	return cmd
}

func runOpt(opts *OptOptions, path string, cmd *cobra.Command) error {
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

	cfg, err := loadPipeline(formatter, opts.Pipeline)
	if err != nil {
		return err
	}
	patterns, err := cfg.Patterns()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "building pipeline", err)
	}
	formatter.VerboseLog("Pipeline: %d pattern(s), max %d iteration(s)", len(patterns), cfg.MaxIterations)

	// Flags take precedence over the config's remarks section.
	if opts.Remarks == "" && opts.RemarksDB == "" && cfg.Remarks != nil {
		switch cfg.Remarks.Format {
		case "yaml":
			opts.Remarks = cfg.Remarks.Path
		case "sqlite":
			opts.RemarksDB = cfg.Remarks.Path
		}
	}

	recorder, closeRecorder, err := buildRecorder(opts)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening remark sink", err)
	}

	driverOpts := rewrite.Options{MaxIterations: cfg.MaxIterations}
	if recorder != nil {
		driverOpts.Recorder = recorder
	}

	stats, err := rewrite.ApplyModule(m, patterns, driverOpts)
	if err != nil {
		_ = closeRecorder()
		var patErr *rewrite.PatternError
		if errors.As(err, &patErr) {
			_ = formatter.Error(string(patErr.Code), err.Error(), map[string]string{
				"pattern": patErr.Pattern,
				"op":      patErr.Op,
			})
		} else {
			_ = formatter.Error(ErrCodeRewrite, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "rewrite failed", err)
	}
	if err := closeRecorder(); err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "closing remark sink", err)
	}
	formatter.VerboseLog("Visited %d op(s), rewrote %d, removed %d", stats.Visited, stats.Rewritten, stats.Removed)

	text := ir.Print(m)
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text), 0644); err != nil {
			_ = formatter.Error(ErrCodeIO, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output", err)
		}
	}

	result := &OptResult{
		IR:        text,
		Visited:   stats.Visited,
		Rewritten: stats.Rewritten,
		Removed:   stats.Removed,
	}
	if recorder != nil {
		result.Session = recorder.Session()
	}
	return outputOptSuccess(formatter, result, opts.Output)
}

// loadProgram reads, parses and verifies a SIR file.
func loadProgram(formatter *OutputFormatter, path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeIO, fmt.Sprintf("reading %s: %v", path, err), nil)
		return nil, WrapExitError(ExitCommandError, "reading input", err)
	}

	m, err := ir.ParseString(string(data))
	if err != nil {
		var parseErr *ir.ParseError
		if errors.As(err, &parseErr) {
			_ = formatter.Error(ErrCodeParse, fmt.Sprintf("%s:%d: %s", path, parseErr.Line, parseErr.Message), nil)
		} else {
			_ = formatter.Error(ErrCodeParse, err.Error(), nil)
		}
		return nil, WrapExitError(ExitFailure, "parse failed", err)
	}

	if err := ir.Verify(m); err != nil {
		_ = formatter.Error(ErrCodeVerify, err.Error(), nil)
		return nil, WrapExitError(ExitFailure, "verification failed", err)
	}
	return m, nil
}

// loadPipeline resolves the pipeline config, falling back to defaults when no
// path is given.
func loadPipeline(formatter *OutputFormatter, path string) (*pipeline.Config, error) {
	if path == "" {
		return pipeline.Default(), nil
	}
	cfg, err := pipeline.Load(path)
	if err != nil {
		var cfgErr *pipeline.ConfigError
		if errors.As(err, &cfgErr) {
			_ = formatter.Error(ErrCodeConfig, cfgErr.Error(), nil)
		} else {
			_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		}
		return nil, WrapExitError(ExitCommandError, "loading pipeline config", err)
	}
	return cfg, nil
}

// buildRecorder wires the requested remark sinks. The returned close func is
// never nil.
func buildRecorder(opts *OptOptions) (*remarks.Recorder, func() error, error) {
	var sinks []remarks.Emitter
	if opts.Remarks != "" {
		e, err := remarks.CreateYAMLFile(opts.Remarks)
		if err != nil {
			return nil, func() error { return nil }, err
		}
		sinks = append(sinks, e)
	}
	if opts.RemarksDB != "" {
		s, err := remarks.Open(opts.RemarksDB)
		if err != nil {
			for _, sink := range sinks {
				sink.Close()
			}
			return nil, func() error { return nil }, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 0 {
		return nil, func() error { return nil }, nil
	}
	rec := remarks.NewRecorder(sinks...)
	return rec, rec.Close, nil
}

func outputOptSuccess(formatter *OutputFormatter, result *OptResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if outputFile == "" {
		fmt.Fprint(formatter.Writer, result.IR)
		fmt.Fprintln(formatter.Writer)
	}
	fmt.Fprintf(formatter.Writer, "✓ Rewrote %d op(s), removed %d (%d visited)\n",
		result.Rewritten, result.Removed, result.Visited)
	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote optimized IR to %s\n", outputFile)
	}
	return nil
}
