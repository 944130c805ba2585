// Package cli implements the critpath command-line interface.
//
// # Commands
//
//   - validate: compute a preview schedule, report cycles and critical paths
//   - apply: compute and write the adjusted dates back
//   - render: draw the task network as SVG, PNG or DOT
//   - inspect: browse a computed schedule interactively
//   - serve: run the HTTP API
//   - cache: manage the preview cache
//
// A project is read either from a JSON project file given as argument or,
// with --project, from the storage backend named in the config file.
//
// # Exit status
//
// 0 on success, 2 when a run is blocked by a dependency cycle, 130 when
// interrupted, and 1 for any other error. See [ExitCode].
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and retrieved with loggerFromContext.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	cperrors "github.com/matzehuels/critpath/pkg/errors"
)

// Exit statuses returned by ExitCode.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitBlocked     = 2
	ExitInterrupted = 130 // 128 + SIGINT
)

// ExitCode maps the error returned by Execute to a process exit status, so
// scripts can tell a blocked schedule from a failed one.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case cperrors.Is(err, cperrors.ErrCodeGraphCycle):
		return ExitBlocked
	default:
		return ExitError
	}
}

// Execute runs the CLI with the process arguments.
func Execute(ctx context.Context) error {
	return execute(ctx, os.Args[1:])
}

func execute(ctx context.Context, args []string) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return preRun(cmd, args)
	}

	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
