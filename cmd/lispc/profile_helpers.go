package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lispc/internal/prof"
)

// profilingSession owns the pprof and runtime trace profilers of one run.
type profilingSession struct {
	session *prof.Session
}

// setup reads the profiling flags and starts the requested profilers.
func (p *profilingSession) setup(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	var cfg prof.Config
	var err error
	if cfg.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.Mem, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Enabled() {
		return nil
	}

	s, err := prof.Start(cfg)
	if err != nil {
		return err
	}
	p.session = s
	return nil
}

func (p *profilingSession) finish(stderr io.Writer) {
	if err := p.session.Stop(); err != nil {
		fmt.Fprintf(stderr, "profile: %v\n", err)
	}
}
