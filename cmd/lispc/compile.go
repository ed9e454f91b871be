package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lispc/internal/driver"
)

func newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [flags] file.lisp|-",
		Short: "Compile one source file",
		Long: `Compile translates one source file and prints the generated code, or
writes it to the file named by -o. Use - to read the program from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: runCompile,
	}
	cmd.Flags().StringP("output", "o", "", "write the generated code to this file")
	cmd.Flags().Int("max-depth", 0, "maximum call nesting (0 means unbounded)")
	cmd.Flags().Bool("cache", false, "reuse results from the user cache directory")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return fmt.Errorf("failed to get max-depth flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}

	opts := driver.Options{MaxDiagnostics: maxDiagnostics(cmd), MaxDepth: maxDepth}
	if useCache {
		cache, cacheErr := driver.OpenDiskCache("lispc")
		if cacheErr != nil {
			return fmt.Errorf("open cache: %w", cacheErr)
		}
		opts.Cache = cache
	}

	var result *driver.CompileResult
	if args[0] == "-" {
		src, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("read stdin: %w", readErr)
		}
		result, err = driver.CompileSource(cmd.Context(), "<stdin>", src, opts)
	} else {
		result, err = driver.Compile(cmd.Context(), args[0], opts)
	}
	if result == nil {
		return err
	}
	printTimer(cmd, result.Timer)
	if err != nil {
		return reportFailure(cmd, err, result.Bag, result.FileSet)
	}

	code := result.Output
	if code != "" {
		code += "\n"
	}
	if output == "" {
		_, err = io.WriteString(cmd.OutOrStdout(), code)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(output, []byte(code), 0o644)
}
