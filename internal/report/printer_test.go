package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"probe/internal/inject"
)

func TestPrinterInsertedLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})

	p.OnEvent(inject.Event{
		Label:  "HC.ctor",
		Path:   "output/HttpTest_methods_7.cpp",
		Status: inject.StatusInserted,
		Line:   42,
	})

	got := buf.String()
	want := "  Instrumented HC.ctor in output/HttpTest_methods_7.cpp:42\n"
	if got != want {
		t.Fatalf("output mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestPrinterBeforeLineMarker(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})

	p.OnEvent(inject.Event{
		Label:  "HC3.pre_CTS",
		Path:   "output/HttpTest_methods_7.cpp",
		Mode:   inject.ModeBeforeLine,
		Status: inject.StatusInserted,
		Line:   10,
	})

	got := buf.String()
	want := "  Instrumented HC3.pre_CTS (before) in output/HttpTest_methods_7.cpp:10\n"
	if got != want {
		t.Fatalf("output mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestPrinterWarningLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})

	p.OnEvent(inject.Event{
		Label:   "HC.ctor",
		Key:     "void System_Net_Http_HttpClient__ctor(System_Net_Http_HttpClient* __this)",
		Path:    "a.cpp",
		Status:  inject.StatusWarning,
		Outcome: inject.OutcomeKeyNotFound,
	})

	got := buf.String()
	if !strings.Contains(got, "WARNING:") {
		t.Fatalf("missing WARNING prefix: %q", got)
	}
	if !strings.Contains(got, "key-not-found") {
		t.Fatalf("missing outcome: %q", got)
	}
	if !strings.Contains(got, "...") {
		t.Fatalf("expected truncated key: %q", got)
	}
	if !strings.Contains(got, "in a.cpp") {
		t.Fatalf("missing file: %q", got)
	}
}

func TestPrinterWorkingEventsSilent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})

	p.OnEvent(inject.Event{Label: "X", Status: inject.StatusWorking})
	p.OnEvent(inject.Event{Label: "X", Status: inject.StatusQueued})
	if buf.Len() != 0 {
		t.Fatalf("expected no output for non-terminal events, got %q", buf.String())
	}
}

func TestPrinterPresentNeedsVerbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})
	p.OnEvent(inject.Event{Label: "X", Path: "a.cpp", Status: inject.StatusPresent})
	if buf.Len() != 0 {
		t.Fatalf("present should be silent by default, got %q", buf.String())
	}

	buf.Reset()
	p = NewPrinter(&buf, Options{Verbose: true})
	p.OnEvent(inject.Event{Label: "X", Path: "a.cpp", Status: inject.StatusPresent})
	if !strings.Contains(buf.String(), "already in a.cpp") {
		t.Fatalf("verbose present line missing: %q", buf.String())
	}
}

func TestPrinterQuietKeepsWarnings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{Quiet: true})

	p.OnEvent(inject.Event{Label: "X", Path: "a.cpp", Status: inject.StatusInserted, Line: 1})
	if buf.Len() != 0 {
		t.Fatalf("quiet still printed success: %q", buf.String())
	}

	p.OnEvent(inject.Event{Label: "X", Key: "k", Path: "a.cpp", Status: inject.StatusWarning, Outcome: inject.OutcomeKeyNotFound})
	if !strings.Contains(buf.String(), "WARNING:") {
		t.Fatalf("quiet swallowed a warning: %q", buf.String())
	}
}

func TestSummaryCounts(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})

	res := &inject.ApplyResult{
		Applied: []inject.AppliedTrace{{Label: "A", Path: "a.cpp", Line: 2}},
		Skipped: []inject.SkippedTrace{
			{Label: "B", Outcome: inject.OutcomeAlreadyPresent},
			{Label: "C", Outcome: inject.OutcomeKeyNotFound},
		},
		FileChanges: []inject.FileChange{{Path: "a.cpp", Inserts: 1}},
	}
	p.Summary(res, false)

	got := buf.String()
	if !strings.Contains(got, "Updated files:") || !strings.Contains(got, "a.cpp (1 traces)") {
		t.Fatalf("missing updated files section: %q", got)
	}
	if !strings.Contains(got, "Done. 1 inserted, 1 already present, 1 warnings.") {
		t.Fatalf("unexpected summary line: %q", got)
	}
}

func TestSummaryDryRun(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})

	res := &inject.ApplyResult{
		Applied:     []inject.AppliedTrace{{Label: "A", Path: "a.cpp", Line: 2}},
		FileChanges: []inject.FileChange{{Path: "a.cpp", Inserts: 1}},
	}
	p.Summary(res, true)

	got := buf.String()
	if strings.Contains(got, "Updated files:") {
		t.Fatalf("dry run must not claim updated files: %q", got)
	}
	if !strings.Contains(got, "would insert") {
		t.Fatalf("dry run summary missing: %q", got)
	}
}

func TestKeyPreviewTruncates(t *testing.T) {
	long := strings.Repeat("x", 200)
	preview := KeyPreview(long)
	if !strings.HasPrefix(preview, "'") || !strings.HasSuffix(preview, "'") {
		t.Fatalf("preview not quoted: %q", preview)
	}
	if !strings.Contains(preview, "...") {
		t.Fatalf("long key not truncated: %q", preview)
	}
	if w := runewidth.StringWidth(preview); w > keyPreviewWidth+2 {
		t.Fatalf("preview too wide: %d cells", w)
	}

	short := KeyPreview("b();")
	if short != "'b();'" {
		t.Fatalf("short key altered: %q", short)
	}
}
