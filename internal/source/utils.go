package source

import (
	"path/filepath"
)

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// Empty index: the whole file is a single line.
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}

	// Binary search: largest lineIdx[i] strictly before off. The number of
	// newlines before off determines the 1-based line.
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	// hi is now the index of the last newline before off, or -1.
	if hi < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	lineStart := lineIdx[hi] + 1
	return LineCol{Line: uint32(hi + 2), Col: off - lineStart + 1}
}

func normalizePath(p string) string {
	// Forward slashes keep paths stable in cross-platform diffs.
	return filepath.ToSlash(filepath.Clean(p))
}
