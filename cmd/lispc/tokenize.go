package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lispc/internal/diagfmt"
	"lispc/internal/driver"
)

func newTokenizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokenize [flags] file.lisp",
		Short: "Print the tokens of a source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runTokenize,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}

	result, err := driver.Tokenize(cmd.Context(), args[0], driver.Options{MaxDiagnostics: maxDiagnostics(cmd)})
	if result == nil {
		return err
	}
	printTimer(cmd, result.Timer)
	if err != nil {
		return reportFailure(cmd, err, result.Bag, result.FileSet)
	}

	if format == "json" {
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result.Tokens, result.FileSet)
	}
	return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), result.Tokens, result.FileSet)
}
