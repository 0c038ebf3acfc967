package source

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadKeepsBytesVerbatim(t *testing.T) {
	// BOM and CRLF must survive a load untouched: instrumented files are
	// written back from this content and may differ from the original only
	// by the spliced lines.
	raw := []byte("\xEF\xBB\xBFline one\r\nline two\r\n")
	dir := t.TempDir()
	path := filepath.Join(dir, "crlf.cpp")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := fs.Get(id).Content; !bytes.Equal(got, raw) {
		t.Fatalf("content not verbatim:\ngot:  %q\nwant: %q", got, raw)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "absent.cpp")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFileVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.cpp", []byte("version 1"), 0)
	latestID, exists := fs.GetLatest("test.cpp")
	if !exists {
		t.Fatal("expected file to exist")
	}
	if latestID != id1 {
		t.Fatalf("expected latest ID %d, got %d", id1, latestID)
	}

	id2 := fs.Add("test.cpp", []byte("version 2"), 0)
	if id2 == id1 {
		t.Fatal("expected a new FileID for the second Add")
	}

	latestID, exists = fs.GetLatest("test.cpp")
	if !exists {
		t.Fatal("expected file to exist after second Add")
	}
	if latestID != id2 {
		t.Fatalf("expected latest ID %d, got %d", id2, latestID)
	}

	// Older versions stay reachable by ID.
	if got := string(fs.Get(id1).Content); got != "version 1" {
		t.Fatalf("first version content changed: %q", got)
	}
	if got := string(fs.Get(id2).Content); got != "version 2" {
		t.Fatalf("second version content mismatch: %q", got)
	}
}

func TestGetByPathNormalizes(t *testing.T) {
	fs := NewFileSet()
	fs.AddVirtual("dir/sub/../file.cpp", []byte("x"))

	f, ok := fs.GetByPath("dir/file.cpp")
	if !ok {
		t.Fatal("expected normalized path lookup to succeed")
	}
	if f.Path != "dir/file.cpp" {
		t.Fatalf("unexpected stored path: %q", f.Path)
	}
}

func TestPositionAt(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.cpp", []byte("ab\ncd\nef"))
	f := fs.Get(id)

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{Line: 1, Col: 1}},
		{1, LineCol{Line: 1, Col: 2}},
		{2, LineCol{Line: 1, Col: 3}}, // the newline itself
		{3, LineCol{Line: 2, Col: 1}},
		{5, LineCol{Line: 2, Col: 3}},
		{6, LineCol{Line: 3, Col: 1}},
		{7, LineCol{Line: 3, Col: 2}},
	}
	for _, tt := range tests {
		if got := f.PositionAt(tt.off); got != tt.want {
			t.Errorf("PositionAt(%d) = %+v, want %+v", tt.off, got, tt.want)
		}
	}
}

func TestPositionAtSingleLine(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.cpp", []byte("no newline here"))
	f := fs.Get(id)

	if got := f.PositionAt(5); got != (LineCol{Line: 1, Col: 6}) {
		t.Fatalf("PositionAt(5) = %+v", got)
	}
}

func TestVirtualFileFlag(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("mem.cpp", []byte("x"))
	if fs.Get(id).Flags&FileVirtual == 0 {
		t.Fatal("expected FileVirtual flag")
	}
}
