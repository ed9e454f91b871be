package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lispc/internal/version"
)

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("errors reported")

// runSession holds the per-run state set up by the root command.
type runSession struct {
	tracing   tracingSession
	profiling profilingSession
}

func newRootCmd() (*cobra.Command, *runSession) {
	session := &runSession{}
	root := &cobra.Command{
		Use:   "lispc",
		Short: "Compiler from parenthesised call syntax to C-like calls",
		Long: `lispc compiles programs written as nested calls, such as
(add 2 (subtract 4 2)), into C-like call statements: add(2, subtract(4, 2));`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupColor(cmd)
			if err := session.profiling.setup(cmd); err != nil {
				return err
			}
			return session.tracing.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("diag-format", "pretty", "diagnostics format (pretty|short|json|sarif)")
	flags.String("path-mode", "auto", "how paths are shown in diagnostics (auto|relative|absolute|basename)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept in ring mode")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(
		newTokenizeCmd(),
		newParseCmd(),
		newCompileCmd(),
		newBuildCmd(),
		newInitCmd(),
		newCleanCmd(),
		newVersionCmd(),
	)
	return root, session
}

// execute runs the CLI and returns the process exit status.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, session := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	session.tracing.finish(stderr, err != nil)
	session.profiling.finish(stderr)
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "lispc: %v\n", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func setupColor(cmd *cobra.Command) {
	color.NoColor = !useColor(cmd)
}

func useColor(cmd *cobra.Command) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on", "always":
		return true
	case "off", "never":
		return false
	default:
		return isTerminal(cmd.ErrOrStderr())
	}
}

func quiet(cmd *cobra.Command) bool {
	q, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	return q
}
