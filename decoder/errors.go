package decoder

import (
	"errors"
	"fmt"
)

// Decode failures are per code. Grammar errors are configuration problems and
// should stop a process before any decoding starts.
var (
	// ErrUnparsedRemainder is returned when text is left that no transition claims.
	ErrUnparsedRemainder = errors.New("unparsed remainder")

	// ErrUnresolvedCapture is returned when a captured group has no lookup entry
	// or its transform rejects the captured text.
	ErrUnresolvedCapture = errors.New("unresolved capture")

	// ErrInvariant is returned when evidence does not reconstruct the code.
	ErrInvariant = errors.New("evidence invariant violated")

	// ErrEmptyCode is returned when asked to decode an empty code.
	ErrEmptyCode = errors.New("empty code")

	// ErrInvalidGrammar is returned when a rule tree cannot be compiled.
	ErrInvalidGrammar = errors.New("invalid grammar")

	// ErrNoGrammar is returned when no rule tree is registered for a kind and year.
	ErrNoGrammar = errors.New("no decoder registered")
)

// DecodeError carries the diagnostics of a failed decode.
type DecodeError struct {
	Err       error  // one of the sentinel errors above
	Code      string // full original code
	Offset    int    // cursor position where matching stopped
	Remainder string // unconsumed text from Offset
	Group     string // capture group name, for unresolved captures
	Partial   Facts  // facts accumulated before the failure
	Cause     error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("%v: could not parse remainder %q of %q at offset %d", e.Err, e.Remainder, e.Code, e.Offset)
	if e.Group != "" {
		msg += fmt.Sprintf(" (group %s)", e.Group)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports an unresolved capture as an unparsed remainder too: decoding
// stops at the capture and the text from there on is left unparsed.
func (e *DecodeError) Is(target error) bool {
	return target == ErrUnparsedRemainder && e.Err == ErrUnresolvedCapture
}

// IsDecodeFailure reports whether err is a per-code decode failure.
func IsDecodeFailure(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// AsDecodeError returns the DecodeError in err's chain, if any.
func AsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsConfigError reports whether err is a grammar configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidGrammar) || errors.Is(err, ErrNoGrammar)
}
