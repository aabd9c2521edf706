package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/strix-opt/strix/internal/remarks"
)

// RemarksOptions holds flags for the remarks command.
type RemarksOptions struct {
	*RootOptions
	Func    string
	Pass    string
	Session string
}

// NewRemarksCommand creates the remarks command.
func NewRemarksCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemarksOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remarks <database>",
		Short: "List recorded optimization remarks",
		Long: `List optimization remarks recorded by opt --remarks-db.

Remarks can be filtered by function, pass name or optimizer session.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemarks(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Func, "func", "", "filter by function name")
	cmd.Flags().StringVar(&opts.Pass, "pass", "", "filter by pass name")
	cmd.Flags().StringVar(&opts.Session, "session", "", "filter by optimizer session ID")

	return cmd
}

func runRemarks(opts *RemarksOptions, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(dbPath); err != nil {
		_ = formatter.Error(ErrCodeStore, fmt.Sprintf("database not found: %s", dbPath), nil)
		return WrapExitError(ExitCommandError, "opening remark database", err)
	}

	store, err := remarks.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening remark database", err)
	}
	defer store.Close()

	filter := remarks.Filter{
		Fn:      opts.Func,
		Pass:    opts.Pass,
		Session: opts.Session,
	}
	list, err := store.List(cmd.Context(), filter)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing remarks", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(formatter.Writer, "No remarks found")
		return nil
	}

	fmt.Fprintf(formatter.Writer, "%d remark(s)\n\n", len(list))
	for _, r := range list {
		fmt.Fprintf(formatter.Writer, "[%d] @%s %s\n", r.Seq, r.Fn, r.Pass)
		fmt.Fprintf(formatter.Writer, "  before: %s\n", r.Before)
		fmt.Fprintf(formatter.Writer, "  after:  %s\n", r.After)
		if opts.Verbose {
			fmt.Fprintf(formatter.Writer, "  id: %s session: %s\n", r.ID, r.Session)
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}
