package inject

// Mode selects the locate strategy for a request.
type Mode uint8

const (
	// ModeAfterSignatureBrace inserts the trace as the first line of the
	// block that opens after the signature matched by Key.
	ModeAfterSignatureBrace Mode = iota
	// ModeBeforeLine inserts the trace on its own line immediately above
	// the line containing Key.
	ModeBeforeLine
)

// String returns the string representation of Mode.
func (m Mode) String() string {
	switch m {
	case ModeAfterSignatureBrace:
		return "after-signature"
	case ModeBeforeLine:
		return "before-line"
	default:
		return "unknown"
	}
}

// Request describes a single instrumentation: insert the trace statement for
// Label into the file at Path, located via Key according to Mode. Requests
// are plain immutable data supplied by the caller.
type Request struct {
	Path  string
	Key   string
	Label string
	Mode  Mode
}

// Outcome classifies the result of locating and splicing one request.
type Outcome uint8

const (
	// OutcomeInserted means the trace statement was spliced in.
	OutcomeInserted Outcome = iota
	// OutcomeAlreadyPresent means the exact trace statement was already a
	// substring of the file and nothing was changed.
	OutcomeAlreadyPresent
	// OutcomeKeyNotFound means the locate key does not occur in the file.
	OutcomeKeyNotFound
	// OutcomeNoBrace means the key matched but no opening brace follows it.
	OutcomeNoBrace
	// OutcomeNoNewline means the opening brace matched but no newline
	// follows it.
	OutcomeNoNewline
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeAlreadyPresent:
		return "already-present"
	case OutcomeKeyNotFound:
		return "key-not-found"
	case OutcomeNoBrace:
		return "no-opening-brace"
	case OutcomeNoNewline:
		return "no-newline-after-brace"
	default:
		return "unknown"
	}
}

// Failure reports whether the outcome is a locate failure that should be
// surfaced as a warning. Already-present is a clean no-op, not a failure.
func (o Outcome) Failure() bool {
	switch o {
	case OutcomeKeyNotFound, OutcomeNoBrace, OutcomeNoNewline:
		return true
	default:
		return false
	}
}
