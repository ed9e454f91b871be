package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lispc/internal/diag"
	"lispc/internal/diagfmt"
	"lispc/internal/observ"
	"lispc/internal/source"
	"lispc/internal/version"
)

func maxDiagnostics(cmd *cobra.Command) int {
	n, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	return n
}

// printDiagnostics renders bag to stderr in the format chosen by --diag-format.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	flags := cmd.Root().PersistentFlags()
	format, _ := flags.GetString("diag-format")
	pathMode, _ := flags.GetString("path-mode")
	out := cmd.ErrOrStderr()

	bag.Sort()
	switch strings.ToLower(format) {
	case "pretty", "":
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     useColor(cmd),
			Context:   1,
			PathMode:  diagfmt.ParsePathMode(pathMode),
			ShowNotes: true,
		})
		return nil
	case "short":
		_, err := fmt.Fprintln(out, diag.FormatShortDiagnostics(bag.Items(), fs, true))
		return err
	case "json":
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.ParsePathMode(pathMode),
			Max:              maxDiagnostics(cmd),
			IncludeNotes:     true,
		})
	case "sarif":
		return diagfmt.Sarif(out, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "lispc",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		return fmt.Errorf("unknown diagnostics format %q (expected pretty|short|json|sarif)", format)
	}
}

// reportFailure prints the diagnostics of a failed stage. Errors without a
// diagnostic (I/O, cancellation) are returned unchanged for the caller to print.
func reportFailure(cmd *cobra.Command, err error, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return err
	}
	if perr := printDiagnostics(cmd, bag, fs); perr != nil {
		return perr
	}
	return errReported
}

func printTimer(cmd *cobra.Command, timer *observ.Timer) {
	show, _ := cmd.Root().PersistentFlags().GetBool("timings")
	if !show || timer == nil {
		return
	}
	writeTimer(cmd.ErrOrStderr(), timer)
}

func writeTimer(out io.Writer, timer *observ.Timer) {
	fmt.Fprint(out, timer.Summary())
}
