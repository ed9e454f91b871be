package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lispc/internal/driver"
	"lispc/internal/project"
)

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [path]",
		Short: "Remove the output directory of a project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runClean,
	}
	cmd.Flags().Bool("cache", false, "also drop the user build cache")
	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	base := "."
	if len(args) > 0 && args[0] != "" {
		base = args[0]
	}
	out := cmd.OutOrStdout()

	manifest, ok, err := project.Load(base)
	if err != nil {
		return err
	}
	if ok {
		if err := removeDir(manifest.OutDir()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return err
			}
			fmt.Fprintln(out, "output directory not found")
		} else {
			fmt.Fprintf(out, "removed %s\n", manifest.OutDir())
		}
	} else {
		fmt.Fprintf(out, "no %s found\n", project.ManifestName)
	}

	if dropCache, _ := cmd.Flags().GetBool("cache"); dropCache {
		cache, err := driver.OpenDiskCache("lispc")
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return fmt.Errorf("drop cache: %w", err)
		}
		fmt.Fprintf(out, "dropped cache %s\n", cache.Dir())
	}
	return nil
}

func removeDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}
	return os.RemoveAll(dir)
}
