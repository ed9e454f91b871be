package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lispc/internal/diagfmt"
	"lispc/internal/driver"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse [flags] file.lisp",
		Short: "Print the syntax tree of a source file",
		Long: `Parse prints the source tree of a file. With --lower it prints the
target tree produced by the transformer instead.`,
		Args: cobra.ExactArgs(1),
		RunE: runParse,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("lower", false, "print the lowered target tree")
	cmd.Flags().Int("max-depth", 0, "maximum call nesting (0 means unbounded)")
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	lower, err := cmd.Flags().GetBool("lower")
	if err != nil {
		return fmt.Errorf("failed to get lower flag: %w", err)
	}
	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return fmt.Errorf("failed to get max-depth flag: %w", err)
	}

	opts := driver.Options{MaxDiagnostics: maxDiagnostics(cmd), MaxDepth: maxDepth}
	result, err := driver.Parse(cmd.Context(), args[0], lower, opts)
	if result == nil {
		return err
	}
	printTimer(cmd, result.Timer)
	if err != nil {
		return reportFailure(cmd, err, result.Bag, result.FileSet)
	}

	out := cmd.OutOrStdout()
	switch {
	case lower && format == "json":
		return diagfmt.FormatHIRJSON(out, result.HIR)
	case lower:
		return diagfmt.FormatHIRPretty(out, result.HIR, result.FileSet)
	case format == "json":
		return diagfmt.FormatASTJSON(out, result.AST)
	default:
		return diagfmt.FormatASTPretty(out, result.AST, result.FileSet)
	}
}
