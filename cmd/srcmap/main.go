package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"srcmap/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "srcmap",
	Short:        "Inspect source files through a mount-based source cache",
	Long:         `srcmap loads files from named mount points and resolves byte offsets to lines, columns and relative paths`,
	SilenceUsage: true,
}

// main registers subcommands and persistent flags, then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	// версия для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(lineCmd)
	rootCmd.AddCommand(spanCmd)
	rootCmd.AddCommand(relpathCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	addPersistentFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// addPersistentFlags registers the flags every subcommand reads from the root.
func addPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to srcmap.toml (default: search upwards from --cwd)")
	flags.StringArray("mount", nil, "mount point as name=dir (repeatable, overrides config)")
	flags.String("cwd", "", "directory reported paths are relative to (default: current directory)")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.String("trace", "", "trace output file ('-' for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Bool("timings", false, "show timing information")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// useColor resolves --color against the terminal state of f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	}
	return false, fmt.Errorf("invalid --color %q (expected: auto|on|off)", colorFlag)
}
