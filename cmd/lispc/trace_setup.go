package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lispc/internal/trace"
)

// tracingSession owns the tracer of one CLI run.
type tracingSession struct {
	tracer trace.Tracer
	ring   *trace.RingTracer
	output string
	format trace.Format
}

// setup inspects trace-related flags and attaches a tracer to the command
// context.
func (s *tracingSession) setup(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	output, err := flags.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	// --trace alone means phase-level tracing
	if level == trace.LevelOff && output != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	}
	if output == "" || output == "-" {
		// hide Close so stderr survives the tracer
		cfg.Output = struct{ io.Writer }{cmd.ErrOrStderr()}
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}

	s.tracer = tracer
	s.output = output
	s.format = format
	if ring, ok := tracer.(*trace.RingTracer); ok {
		s.ring = ring
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	return nil
}

// finish flushes the tracer. A ring tracer is only dumped when the command
// failed.
func (s *tracingSession) finish(stderr io.Writer, failed bool) {
	if s.tracer == nil {
		return
	}
	if s.ring != nil && failed {
		if err := s.dumpRing(stderr); err != nil {
			fmt.Fprintf(stderr, "trace: dump error: %v\n", err)
		}
	}
	if err := s.tracer.Flush(); err != nil {
		fmt.Fprintf(stderr, "trace: flush error: %v\n", err)
	}
	if err := s.tracer.Close(); err != nil {
		fmt.Fprintf(stderr, "trace: close error: %v\n", err)
	}
}

func (s *tracingSession) dumpRing(stderr io.Writer) error {
	format := trace.ResolveFormat(s.format, s.output)
	if s.output == "" || s.output == "-" {
		return s.ring.Dump(stderr, format)
	}
	f, err := os.Create(s.output)
	if err != nil {
		return err
	}
	if err := s.ring.Dump(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
