package inject

import (
	"bytes"
)

// Splice computes the new content for a single request without touching the
// filesystem. It returns the updated bytes, the offset the trace statement was
// inserted at, and the outcome. On any outcome other than OutcomeInserted the
// returned slice is the input slice unchanged and at is -1.
//
// The content is opaque text. Both strategies work on the first occurrence of
// the key; later occurrences never influence the insertion point. Before any
// searching the exact trace statement is checked for as a substring anywhere
// in the content, so re-applying a request is always a no-op.
func Splice(content []byte, req Request) (out []byte, at int, outcome Outcome) {
	stmt := []byte(Statement(req.Label))
	if bytes.Contains(content, stmt) {
		return content, -1, OutcomeAlreadyPresent
	}

	idx := bytes.Index(content, []byte(req.Key))
	if idx < 0 {
		return content, -1, OutcomeKeyNotFound
	}

	switch req.Mode {
	case ModeAfterSignatureBrace:
		// Opening brace after the signature, then the end of that line;
		// the trace becomes the first line of the block body.
		brace := bytes.IndexByte(content[idx:], '{')
		if brace < 0 {
			return content, -1, OutcomeNoBrace
		}
		nl := bytes.IndexByte(content[idx+brace:], '\n')
		if nl < 0 {
			return content, -1, OutcomeNoNewline
		}
		at = idx + brace + nl + 1

	case ModeBeforeLine:
		// Start of the line containing the key; offset 0 when the key
		// sits on the first line.
		at = bytes.LastIndexByte(content[:idx], '\n') + 1

	default:
		return content, -1, OutcomeKeyNotFound
	}

	out = make([]byte, 0, len(content)+len(stmt))
	out = append(out, content[:at]...)
	out = append(out, stmt...)
	out = append(out, content[at:]...)
	return out, at, OutcomeInserted
}
