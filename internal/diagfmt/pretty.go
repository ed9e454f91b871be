package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"lispc/internal/diag"
	"lispc/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, path, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgBlue, color.Bold),
		note:   color.New(color.FgCyan),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.caret} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty writes the diagnostics of bag in the form
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the offending source line with a ^~~ underline and, when
// requested, the notes in the same shape. Items are printed in bag order, so
// callers sort the bag first if they want positional order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		sevColor := p.severity(d.Severity)
		fmt.Fprintf(w, "%s: %s: %s\n",
			p.path.Sprint(location(d.Primary, fs, opts.PathMode)),
			sevColor.Sprintf("%s %s", d.Severity, d.Code.ID()),
			d.Message)
		writeSnippet(w, fs, d.Primary, opts.Context, p, p.caret)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), location(n.Span, fs, opts.PathMode), n.Msg)
			writeSnippet(w, fs, n.Span, 0, p, p.note)
		}
	}
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	default:
		return f.FormatPath(mode.String(), "")
	}
}

func location(sp source.Span, fs *source.FileSet, mode PathMode) string {
	f := fs.Get(sp.File)
	pos := f.Position(sp.Start)
	return fmt.Sprintf("%s:%d:%d", formatPath(f, fs, mode), pos.Line, pos.Col)
}

// writeSnippet prints up to context lines before the span's first line, the
// line itself and an underline covering the span on that line.
func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, context int, p palette, mark *color.Color) {
	f := fs.Get(sp.File)
	if len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	first := start.Line
	if context > 0 {
		first = uint32(max(int(start.Line)-context, 1))
	}
	gutterWidth := len(strconv.FormatUint(uint64(start.Line), 10))

	for ln := first; ln <= start.Line; ln++ {
		fmt.Fprintf(w, " %s %s\n",
			p.gutter.Sprintf("%*d |", gutterWidth, ln),
			expandTabs(f.GetLine(ln)))
	}

	line := f.GetLine(start.Line)
	lineLen := uint32(len(line))
	startCol := min(start.Col-1, lineLen)
	endCol := lineLen
	if end.Line == start.Line {
		endCol = min(end.Col-1, lineLen)
	}
	pad := runewidth.StringWidth(expandTabs(line[:startCol]))
	width := runewidth.StringWidth(expandTabs(line[startCol:endCol]))

	underline := "^"
	if width > 1 {
		underline += strings.Repeat("~", width-1)
	}
	fmt.Fprintf(w, " %s %s%s\n",
		p.gutter.Sprintf("%*s |", gutterWidth, ""),
		strings.Repeat(" ", pad),
		mark.Sprint(underline))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
