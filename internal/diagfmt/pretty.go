package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"srcmap/internal/diag"
	"srcmap/internal/source"
)

type palette struct {
	sev    map[diag.Severity]*color.Color
	gutter *color.Color
	path   *color.Color
	note   *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
		},
		gutter: color.New(color.FgBlue),
		path:   color.New(color.Bold),
		note:   color.New(color.FgGreen),
	}
	all := []*color.Color{p.gutter, p.path, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
//
//	<path>:<line>:<col>: <sev> <code>: <message>
//	  12 | source line
//	     |     ^~~~
//
// A source line that was just printed for the previous diagnostic is not
// printed again; only its caret line is. Spans the cache cannot resolve are
// rendered as <unknown source> rather than failing the whole report.
func Pretty(w io.Writer, bag *diag.Bag, lookup source.SourceLookup, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	tracker := source.NewLineTracker()

	for _, d := range bag.Items() {
		sevColor := p.sev[d.Severity]
		info, err := lookup.Line(d.Primary)
		if err != nil {
			if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", unknownSource, sevColor.Sprint(d.Severity), d.Code, d.Message); err != nil {
				return err
			}
			tracker.Reset()
			continue
		}

		header := fmt.Sprintf("%s:%d:%d", info.RelativeFileName, info.Row, info.Col)
		if _, err := fmt.Fprintf(w, "%s: %s %s: %s\n", p.path.Sprint(header), sevColor.Sprint(d.Severity), d.Code, d.Message); err != nil {
			return err
		}

		if err := writeSnippet(w, p, sevColor, tracker, d.Primary, info, lookup, opts); err != nil {
			return err
		}

		if opts.ShowNotes {
			for _, n := range d.Notes {
				loc := unknownSource
				if ni, err := lookup.Line(n.Span); err == nil {
					loc = fmt.Sprintf("%s:%d:%d", ni.RelativeFileName, ni.Row, ni.Col)
				}
				if _, err := fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), loc, n.Msg); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func writeSnippet(w io.Writer, p palette, sevColor *color.Color, tracker *source.LineTracker, span source.Span, info source.FileLineInfo, lookup source.SourceLookup, opts PrettyOpts) error {
	num := strconv.FormatUint(uint64(info.Row), 10)
	pad := strings.Repeat(" ", len(num))

	if _, _, fresh := tracker.Check(span.File, info.Row); fresh {
		if _, err := fmt.Fprintf(w, " %s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), info.Line); err != nil {
			return err
		}
	}

	text, err := lookup.Text(span)
	if err != nil {
		text = ""
	}
	indent, width := caret(info.Line, info.Col, text, opts.TabWidth)
	marker := "^" + strings.Repeat("~", width-1)
	_, err = fmt.Fprintf(w, " %s %s %s%s\n", pad, p.gutter.Sprint("|"), indent, sevColor.Sprint(marker))
	return err
}

// caret returns the padding that puts a marker under column col of line, and
// the marker width in display cells. Wide characters count as two cells and
// tabs are kept (or expanded to tabWidth spaces) so the marker lines up.
func caret(line string, col uint32, spanText string, tabWidth int) (string, int) {
	var indent strings.Builder
	rest := line
	for i := uint32(1); i < col && rest != ""; i++ {
		r, size := utf8.DecodeRuneInString(rest)
		rest = rest[size:]
		switch {
		case r == '\t' && tabWidth > 0:
			indent.WriteString(strings.Repeat(" ", tabWidth))
		case r == '\t':
			indent.WriteByte('\t')
		default:
			indent.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
	}

	// marker covers the span, clipped to the end of this line
	if i := strings.IndexByte(spanText, '\n'); i >= 0 {
		spanText = spanText[:i]
	}
	if len(spanText) > len(rest) {
		spanText = rest
	}
	width := runewidth.StringWidth(strings.ReplaceAll(spanText, "\t", " "))
	return indent.String(), max(width, 1)
}
