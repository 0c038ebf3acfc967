// Package report renders engine progress and summaries for the console: one
// line per request, a warning for every locate failure, and a final Done line.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"probe/internal/inject"
)

// keyPreviewWidth caps how much of a locate key a warning shows. Signatures of
// generated code run long; the first 60 cells identify them well enough.
const keyPreviewWidth = 60

// Options controls printer verbosity and styling.
type Options struct {
	// Color enables ANSI styling.
	Color bool
	// Verbose also prints already-present traces, normally silent.
	Verbose bool
	// Quiet suppresses everything except warnings.
	Quiet bool
}

// Printer writes human-readable progress lines. It implements inject.Sink so
// the engine can stream lines as requests are processed.
type Printer struct {
	out     io.Writer
	opts    Options
	okCol   *color.Color
	warnCol *color.Color
	dimCol  *color.Color
}

// NewPrinter creates a Printer writing to out.
func NewPrinter(out io.Writer, opts Options) *Printer {
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow, color.Bold)
	dim := color.New(color.Faint)
	if opts.Color {
		ok.EnableColor()
		warn.EnableColor()
		dim.EnableColor()
	} else {
		ok.DisableColor()
		warn.DisableColor()
		dim.DisableColor()
	}
	return &Printer{out: out, opts: opts, okCol: ok, warnCol: warn, dimCol: dim}
}

// OnEvent renders one line per terminal event. Working/queued events are not
// printed; the console contract is exactly one line per request.
func (p *Printer) OnEvent(evt inject.Event) {
	switch evt.Status {
	case inject.StatusInserted:
		if p.opts.Quiet {
			return
		}
		marker := ""
		if evt.Mode == inject.ModeBeforeLine {
			marker = " (before)"
		}
		fmt.Fprintf(p.out, "  %s %s%s in %s:%d\n", p.okCol.Sprint("Instrumented"), evt.Label, marker, evt.Path, evt.Line)
	case inject.StatusPresent:
		if p.opts.Quiet || !p.opts.Verbose {
			return
		}
		fmt.Fprintf(p.out, "  %s %s already in %s\n", p.dimCol.Sprint("Skipped"), evt.Label, evt.Path)
	case inject.StatusWarning:
		fmt.Fprintf(p.out, "  %s %s: %s in %s\n",
			p.warnCol.Sprint("WARNING:"), evt.Outcome, KeyPreview(evt.Key), evt.Path)
	}
}

// Summary prints the closing lines: updated files and totals.
func (p *Printer) Summary(res *inject.ApplyResult, dryRun bool) {
	if p.opts.Quiet {
		return
	}
	if len(res.FileChanges) > 0 && !dryRun {
		fmt.Fprintln(p.out, "Updated files:")
		for _, change := range res.FileChanges {
			fmt.Fprintf(p.out, "  %s (%d traces)\n", change.Path, change.Inserts)
		}
	}
	verb := "inserted"
	if dryRun {
		verb = "would insert"
	}
	fmt.Fprintf(p.out, "Done. %d %s, %d already present, %d warnings.\n",
		len(res.Applied), verb, len(res.Skipped)-res.Warnings(), res.Warnings())
}

// KeyPreview quotes a locate key, truncated for readability.
func KeyPreview(key string) string {
	return "'" + runewidth.Truncate(key, keyPreviewWidth, "...") + "'"
}
