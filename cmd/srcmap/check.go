package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"srcmap/internal/diag"
	"srcmap/internal/diagfmt"
	"srcmap/internal/observ"
	"srcmap/internal/source"
	"srcmap/internal/trace"
)

// Коды диагностик check.
const (
	codeLongLine           = "W0001"
	codeTrailingWhitespace = "W0002"
	codeNoFinalNewline     = "W0003"
	codeLoadFailed         = "E0001"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <mount>:<path>...",
	Short: "Report long lines, trailing whitespace and missing final newlines",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheckCmd,
}

// init registers CLI flags for the check command.
func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("max-width", 100, "maximum line width in display cells (0 disables)")
	checkCmd.Flags().Int("tab-width", 4, "cells per tab when measuring and underlining (0 keeps tabs)")
	checkCmd.Flags().Int("max-diagnostics", 100, "maximum number of diagnostics to keep")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
}

type checkOptions struct {
	format           string
	maxWidth         int
	tabWidth         int
	maxDiagnostics   int
	warningsAsErrors bool
	minSeverity      diag.Severity
	withNotes        bool
	color            bool
	timer            *observ.Timer // nil unless --timings
}

// runCheckCmd executes "check" and exits with status 1 when any error
// diagnostic was reported.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	opts, err := checkOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	exit := 0
	err = withSession(cmd, func(sess *session) error {
		var runErr error
		exit, runErr = runCheck(cmd.OutOrStdout(), sess, args, opts)
		return runErr
	})
	if err != nil {
		return err
	}
	if opts.timer != nil {
		if err := opts.timer.WriteSummary(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}
	if exit != 0 {
		os.Exit(exit)
	}
	return nil
}

func checkOptionsFromFlags(cmd *cobra.Command) (checkOptions, error) {
	var opts checkOptions
	var err error
	if opts.format, err = cmd.Flags().GetString("format"); err != nil {
		return opts, fmt.Errorf("failed to get format flag: %w", err)
	}
	if opts.maxWidth, err = cmd.Flags().GetInt("max-width"); err != nil {
		return opts, fmt.Errorf("failed to get max-width flag: %w", err)
	}
	if opts.tabWidth, err = cmd.Flags().GetInt("tab-width"); err != nil {
		return opts, fmt.Errorf("failed to get tab-width flag: %w", err)
	}
	if opts.maxDiagnostics, err = cmd.Flags().GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if opts.warningsAsErrors, err = cmd.Flags().GetBool("warnings-as-errors"); err != nil {
		return opts, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	minSeverity, err := cmd.Flags().GetString("min-severity")
	if err != nil {
		return opts, fmt.Errorf("failed to get min-severity flag: %w", err)
	}
	if opts.minSeverity, err = diag.ParseSeverity(minSeverity); err != nil {
		return opts, err
	}
	if opts.withNotes, err = cmd.Flags().GetBool("with-notes"); err != nil {
		return opts, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if opts.color, err = useColor(cmd, os.Stdout); err != nil {
		return opts, err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		opts.timer = observ.NewTimer()
	}
	switch opts.format {
	case "pretty", "json", "short":
	default:
		return opts, fmt.Errorf("unknown format %q (expected: pretty|json|short)", opts.format)
	}
	return opts, nil
}

// runCheck loads every file, collects diagnostics and renders them to out.
// It returns the process exit code.
func runCheck(out io.Writer, sess *session, args []string, opts checkOptions) (int, error) {
	span := trace.Begin(sess.tracer, trace.ScopeSession, "check", 0)
	bag := diag.NewBag(opts.maxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	endCheck := opts.timer.Begin("check")
	for _, arg := range args {
		id, err := sess.load(arg)
		if err != nil {
			// не найденный файл не прерывает проверку остальных
			trace.Errorf(sess.tracer, "check", "%s: %v", arg, err)
			bag.Add(diag.Diagnostic{Severity: diag.SevError, Code: codeLoadFailed, Message: fmt.Sprintf("cannot load %s: %v", arg, err)})
			continue
		}
		f, err := sess.sm.File(id)
		if err != nil {
			return 0, err
		}
		checkFile(reporter, f, opts)
	}

	if opts.warningsAsErrors {
		promoteWarnings(bag)
	}
	bag = filterSeverity(bag, opts.minSeverity)
	bag.Sort()
	endCheck(len(args))
	span.WithExtra("diagnostics", fmt.Sprint(bag.Len())).End("")

	endRender := opts.timer.Begin("render")
	var err error
	switch opts.format {
	case "pretty":
		err = diagfmt.Pretty(out, bag, sess.lookup, diagfmt.PrettyOpts{
			Color:     opts.color,
			ShowNotes: opts.withNotes,
			TabWidth:  opts.tabWidth,
		})
	case "short":
		if s := diagfmt.Short(bag, sess.lookup, opts.withNotes); s != "" {
			_, err = fmt.Fprintln(out, s)
		}
	case "json":
		err = diagfmt.JSON(out, bag, sess.lookup, diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     opts.withNotes,
		})
	}
	endRender(bag.Len())
	if err != nil {
		return 0, err
	}

	if bag.HasErrors() {
		return 1, nil
	}
	return 0, nil
}

// checkFile walks the lines of f using its line offset table.
func checkFile(r diag.Reporter, f *source.FileInfo, opts checkOptions) {
	content := f.Content
	for i := 0; i+1 < len(f.LineOffsets); i++ {
		start := f.LineOffsets[i]
		line := strings.TrimSuffix(content[start:f.LineOffsets[i+1]], "\n")

		body := strings.TrimSuffix(line, "\r")
		if trimmed := strings.TrimRight(body, " \t"); len(trimmed) < len(body) {
			ws := source.Span{File: f.ID, Offset: start + uint32(len(trimmed)), Length: uint32(len(body) - len(trimmed))} //nolint:gosec // bounded by line length
			diag.ReportWarning(r, codeTrailingWhitespace, ws, "trailing whitespace")
		}

		if opts.maxWidth > 0 {
			if cut, width := overflowAt(line, opts.maxWidth, opts.tabWidth); cut >= 0 {
				over := source.Span{File: f.ID, Offset: start + uint32(cut), Length: uint32(len(line) - cut)} //nolint:gosec // bounded by line length
				r.Report(diag.Diagnostic{
					Severity: diag.SevWarning,
					Code:     codeLongLine,
					Message:  fmt.Sprintf("line is %d cells wide (limit %d)", width, opts.maxWidth),
					Primary:  over,
				}.WithNote(source.Span{File: f.ID, Offset: start}, "line starts here"))
			}
		}
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		// указываем на последний символ, а не за конец файла
		_, size := utf8.DecodeLastRuneInString(content)
		last := source.Span{File: f.ID, Offset: uint32(len(content) - size), Length: uint32(size)} //nolint:gosec // bounded by Limits.MaxFileSize
		diag.ReportWarning(r, codeNoFinalNewline, last, "no newline at end of file")
	}
}

// overflowAt returns the byte index of the first rune that does not fit in
// maxWidth display cells, and the full width of line. cut is -1 if it fits.
func overflowAt(line string, maxWidth, tabWidth int) (cut, width int) {
	cut = -1
	for i, r := range line {
		w := runewidth.RuneWidth(r)
		if r == '\t' {
			w = max(tabWidth, 1)
		}
		if width+w > maxWidth && cut < 0 {
			cut = i
		}
		width += w
	}
	return cut, width
}

func promoteWarnings(bag *diag.Bag) {
	items := bag.Items()
	for i := range items {
		if items[i].Severity == diag.SevWarning {
			items[i].Severity = diag.SevError
		}
	}
}

// filterSeverity drops diagnostics below least. Severity is checked after
// --warnings-as-errors, so promoted warnings survive an error threshold.
func filterSeverity(bag *diag.Bag, least diag.Severity) *diag.Bag {
	if least == diag.SevInfo {
		return bag
	}
	kept := diag.NewBag(0)
	for _, d := range bag.Items() {
		if d.Severity >= least {
			kept.Add(d)
		}
	}
	return kept
}
