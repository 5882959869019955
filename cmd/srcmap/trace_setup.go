package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"srcmap/internal/config"
	"srcmap/internal/trace"
)

// setupTracing inspects trace-related flags, falls back to the [trace]
// table of the manifest and attaches the tracer to the command context.
// It returns a cleanup function.
func setupTracing(cmd *cobra.Command, manifest *config.Manifest) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	// флаги важнее манифеста
	if manifest != nil {
		if traceOutput == "" {
			traceOutput = manifest.TraceOutput()
		}
		if levelStr == "" {
			levelStr = manifest.Config.Trace.Level
		}
		if !root.PersistentFlags().Changed("trace-format") && manifest.Config.Trace.Format != "" {
			formatStr = manifest.Config.Trace.Format
		}
	}
	// --trace without a level means phase events
	if levelStr == "" && traceOutput != "" {
		levelStr = "phase"
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Format:     format,
		OutputPath: traceOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}
