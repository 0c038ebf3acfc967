package inject

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"fortio.org/safecast"

	"probe/internal/source"
)

// ErrNoRequests is returned when Apply is called with an empty request list.
var ErrNoRequests = errors.New("no instrumentation requests")

// ApplyOptions configures a batch run.
type ApplyOptions struct {
	// DryRun computes every outcome but writes nothing back. Insertions are
	// staged in memory instead, so later requests against the same file see
	// them and the reported totals match what a real run would do.
	DryRun bool
	// Events receives per-request progress, may be nil.
	Events Sink
}

// AppliedTrace records a successfully inserted trace.
type AppliedTrace struct {
	Label string
	Path  string
	Mode  Mode
	Line  uint32 // 1-based line the statement landed on
}

// SkippedTrace records a request that changed nothing, with its outcome.
type SkippedTrace struct {
	Label   string
	Key     string
	Path    string
	Outcome Outcome
}

// FileChange summarises insertions performed on a file.
type FileChange struct {
	Path    string
	Inserts int
}

// ApplyResult aggregates applied traces, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedTrace
	Skipped     []SkippedTrace
	FileChanges []FileChange
}

// Warnings counts the skipped requests that were locate failures.
func (r *ApplyResult) Warnings() int {
	n := 0
	for _, s := range r.Skipped {
		if s.Outcome.Failure() {
			n++
		}
	}
	return n
}

// Apply processes requests strictly in order. Each request is an independent
// read-modify-write cycle: the target file is loaded fresh from disk, spliced
// in memory, and written back in full only when the content changed. In dry-run
// mode the write is replaced by staging the spliced content in the FileSet,
// which later same-file requests read instead of disk. Locate
// failures and already-present traces never abort the batch; they are recorded
// and processing continues. I/O errors are fatal and abort with the partial
// result.
func Apply(fs *source.FileSet, requests []Request, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedTrace, 0, len(requests)),
		Skipped:     make([]SkippedTrace, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("inject: FileSet is nil")
	}
	if len(requests) == 0 {
		return result, ErrNoRequests
	}

	inserts := make(map[string]int)

	for i, req := range requests {
		emit(opts.Events, Event{Index: i, Label: req.Label, Key: req.Key, Path: req.Path, Mode: req.Mode, Status: StatusWorking})

		var f *source.File
		if opts.DryRun {
			// Staged versions stand in for the writes a real run would do.
			if id, ok := fs.GetLatest(req.Path); ok {
				f = fs.Get(id)
			}
		}
		if f == nil {
			id, err := fs.Load(req.Path)
			if err != nil {
				return result, fmt.Errorf("read %s: %w", req.Path, err)
			}
			f = fs.Get(id)
		}

		out, at, outcome := Splice(f.Content, req)
		switch outcome {
		case OutcomeInserted:
			if opts.DryRun {
				fs.Add(f.Path, out, source.FileVirtual)
			} else {
				if err := writeFilePreservingMode(f.Path, out); err != nil {
					return result, fmt.Errorf("write %s: %w", f.Path, err)
				}
			}
			off, convErr := safecast.Conv[uint32](at)
			if convErr != nil {
				return result, fmt.Errorf("offset overflow in %s: %w", f.Path, convErr)
			}
			line := f.PositionAt(off).Line
			result.Applied = append(result.Applied, AppliedTrace{
				Label: req.Label,
				Path:  f.Path,
				Mode:  req.Mode,
				Line:  line,
			})
			inserts[f.Path]++
			emit(opts.Events, Event{Index: i, Label: req.Label, Key: req.Key, Path: f.Path, Mode: req.Mode, Status: StatusInserted, Outcome: outcome, Line: line})

		case OutcomeAlreadyPresent:
			result.Skipped = append(result.Skipped, SkippedTrace{
				Label:   req.Label,
				Key:     req.Key,
				Path:    f.Path,
				Outcome: outcome,
			})
			emit(opts.Events, Event{Index: i, Label: req.Label, Key: req.Key, Path: f.Path, Mode: req.Mode, Status: StatusPresent, Outcome: outcome})

		default:
			result.Skipped = append(result.Skipped, SkippedTrace{
				Label:   req.Label,
				Key:     req.Key,
				Path:    f.Path,
				Outcome: outcome,
			})
			emit(opts.Events, Event{Index: i, Label: req.Label, Key: req.Key, Path: f.Path, Mode: req.Mode, Status: StatusWarning, Outcome: outcome})
		}
	}

	for path, n := range inserts {
		result.FileChanges = append(result.FileChanges, FileChange{Path: path, Inserts: n})
	}
	sort.SliceStable(result.FileChanges, func(i, j int) bool {
		return result.FileChanges[i].Path < result.FileChanges[j].Path
	})

	return result, nil
}

func emit(sink Sink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}

func writeFilePreservingMode(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, content, mode)
}
