// Package journal keeps an append-only record of instrumentation runs on
// disk. It is purely informational: the engine never consults it, idempotence
// stays a textual property of the instrumented files themselves.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when the Run format changes.
const schemaVersion uint16 = 1

// Entry records a single inserted trace.
type Entry struct {
	Label string
	Path  string
	Mode  string
	Line  uint32
}

// Run records one apply batch.
type Run struct {
	Schema   uint16
	PlanPath string
	PlanName string
	When     time.Time
	DryRun   bool
	Inserted []Entry
	Present  int
	Warnings int
}

// Journal stores runs keyed by plan path under the user cache directory.
type Journal struct {
	mu  sync.Mutex
	dir string
}

// Open initializes a journal at the standard cache location.
func Open(app string) (*Journal, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Journal{dir: dir}, nil
}

// OpenAt initializes a journal rooted at dir (tests, --journal-dir).
func OpenAt(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Journal{dir: dir}, nil
}

func (j *Journal) pathFor(planPath string) string {
	sum := sha256.Sum256([]byte(planPath))
	hexKey := hex.EncodeToString(sum[:])
	// Подкаталог "runs" для удобства очистки.
	return filepath.Join(j.dir, "runs", hexKey+".mp")
}

// Append records a run for its plan. Earlier runs with a mismatching schema
// are dropped rather than migrated.
func (j *Journal) Append(run Run) error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	run.Schema = schemaVersion
	runs, err := j.loadLocked(run.PlanPath)
	if err != nil {
		return err
	}
	runs = append(runs, run)

	p := j.pathFor(run.PlanPath)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// Best effort: after a successful rename the temp name is gone.
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(runs); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Runs returns the recorded runs for planPath, oldest first.
func (j *Journal) Runs(planPath string) ([]Run, error) {
	if j == nil {
		return nil, nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.loadLocked(planPath)
}

func (j *Journal) loadLocked(planPath string) ([]Run, error) {
	p := j.pathFor(planPath)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			panic(closeErr)
		}
	}()

	var runs []Run
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&runs); err != nil {
		return nil, fmt.Errorf("decode journal %s: %w", p, err)
	}
	kept := runs[:0]
	for _, r := range runs {
		if r.Schema == schemaVersion {
			kept = append(kept, r)
		}
	}
	return kept, nil
}

// DropAll removes every recorded run, useful after format changes.
func (j *Journal) DropAll() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	old := j.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(j.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
