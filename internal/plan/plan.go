// Package plan loads the instrumentation plan: a probe.toml manifest listing
// the trace requests to apply to generated sources. The plan is plain data,
// resolved once per run; the engine never reads it back.
package plan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"probe/internal/inject"
)

// ManifestName is the file the plan is loaded from.
const ManifestName = "probe.toml"

// Plan couples a parsed manifest with its location on disk.
type Plan struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML layout of probe.toml.
type Config struct {
	Package PackageConfig `toml:"package"`
	Traces  []TraceConfig `toml:"trace"`
}

// PackageConfig names the plan and anchors relative trace paths.
type PackageConfig struct {
	Name string `toml:"name"`
	Base string `toml:"base"`
}

// TraceConfig describes one instrumentation request. Exactly one of Signature
// and Before must be set: Signature locates a function to trace on entry,
// Before locates a statement to trace immediately above.
type TraceConfig struct {
	File      string `toml:"file"`
	Signature string `toml:"signature"`
	Before    string `toml:"before"`
	Label     string `toml:"label"`
}

// Find walks up from startDir to locate probe.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses and validates the manifest at path.
func Load(path string) (*Plan, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	for i, tr := range cfg.Traces {
		if strings.TrimSpace(tr.File) == "" {
			return nil, fmt.Errorf("%s: [[trace]] #%d: missing file", path, i+1)
		}
		if strings.TrimSpace(tr.Label) == "" {
			return nil, fmt.Errorf("%s: [[trace]] #%d: missing label", path, i+1)
		}
		hasSig := tr.Signature != ""
		hasBefore := tr.Before != ""
		if hasSig == hasBefore {
			return nil, fmt.Errorf("%s: [[trace]] #%d: exactly one of signature or before must be set", path, i+1)
		}
	}
	return &Plan{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// FindAndLoad locates probe.toml starting at startDir and loads it.
// ok is false when no manifest exists anywhere up the tree.
func FindAndLoad(startDir string) (*Plan, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	p, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return p, true, nil
}

// Requests resolves the plan into engine requests. Relative trace paths are
// joined against the plan root and the optional [package].base directory.
func (p *Plan) Requests() []inject.Request {
	out := make([]inject.Request, 0, len(p.Config.Traces))
	for _, tr := range p.Config.Traces {
		req := inject.Request{
			Path:  p.resolvePath(tr.File),
			Label: tr.Label,
		}
		if tr.Signature != "" {
			req.Key = tr.Signature
			req.Mode = inject.ModeAfterSignatureBrace
		} else {
			req.Key = tr.Before
			req.Mode = inject.ModeBeforeLine
		}
		out = append(out, req)
	}
	return out
}

func (p *Plan) resolvePath(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(p.Root, filepath.FromSlash(p.Config.Package.Base), filepath.FromSlash(file))
}
