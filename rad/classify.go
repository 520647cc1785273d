package rad

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// Code is a consensus-level error code. Codes are part of the network
// protocol and must never be renumbered.
type Code uint8

const (
	CodeUnknown          Code = 0x00
	CodeHTTPError        Code = 0x30
	CodeRetrievalTimeout Code = 0x31
	CodeUnderflow        Code = 0x40
	CodeOverflow         Code = 0x41
	CodeDivisionByZero   Code = 0x42
	CodeUnhandledVariant Code = 0xFF
)

// cborTagRadonError is the CBOR tag wrapping consensus error payloads.
const cborTagRadonError = 39

// encMode is the deterministic encoder shared by all encodes. Independent
// nodes compare these bytes, so the encoding must be canonical.
var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// RadonError is a consensus-visible error outcome. Its payload is built
// exclusively from typed fields of the source error; message text never
// enters Args.
type RadonError struct {
	Code Code
	// Args are the typed payload values following the code in the encoded
	// form. Only bounded, deterministic values are allowed here.
	Args []interface{}
	// Cause retains the source error for diagnostics. It does not
	// participate in Encode.
	Cause *Error
}

func (e *RadonError) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "radon error"
}

// Encode produces the canonical CBOR form of the error: tag 39 over the
// array [code, args...]. Equal RadonErrors encode to identical bytes on
// every node.
func (e *RadonError) Encode() ([]byte, error) {
	content := make([]interface{}, 0, len(e.Args)+1)
	content = append(content, uint64(e.Code))
	content = append(content, e.Args...)
	return encMode.Marshal(cbor.Tag{Number: cborTagRadonError, Content: content})
}

// Classified is the outcome of classification: either a consensus-visible
// RadonError, or a diagnostic-only error that must stay in the logs.
type Classified struct {
	// Consensus is non-nil only when the error has a deterministic,
	// fully-typed payload eligible for consensus-relevant output.
	Consensus *RadonError
	// Diagnostic always carries the original error for logging.
	Diagnostic error
}

// ConsensusVisible reports whether the error may enter consensus output.
func (c Classified) ConsensusVisible() bool {
	return c.Consensus != nil
}

// Classify decides whether an error may become a consensus-visible outcome.
//
// Only kinds whose payload is fully typed and bounded are promoted; today
// that is KindHTTPStatus, whose status code has a fixed-width encoding.
// Every other kind, and any error outside the taxonomy, is diagnostic-only.
// Classify is total: it never fails, and Classify(nil) is the zero value.
func Classify(err error) Classified {
	if err == nil {
		return Classified{}
	}
	var re *Error
	if !errors.As(err, &re) || re == nil {
		return Classified{Diagnostic: err}
	}
	switch re.Kind {
	case KindHTTPStatus:
		return Classified{
			Consensus: &RadonError{
				Code:  CodeHTTPError,
				Args:  []interface{}{uint64(re.StatusCode)},
				Cause: re,
			},
			Diagnostic: re,
		}
	default:
		return Classified{Diagnostic: re}
	}
}
