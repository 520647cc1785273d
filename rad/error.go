// Package rad defines the error taxonomy of the oracle network's result
// language and the classification rule that decides which errors may become
// consensus-visible outcomes.
package rad

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind is a stable category for programmatic error handling.
//
// The set of kinds is closed: every error produced while resolving a data
// request maps to exactly one of these. Callers must branch on Kind rather
// than matching error strings; Error() output is for humans and may evolve.
type Kind int

const (
	// KindUnknown is the default kind. Something went really bad.
	KindUnknown Kind = iota
	// KindDecode: failed to decode a type from another.
	KindDecode
	// KindEncode: failed to encode a type into another.
	KindEncode
	// KindHash: failed to hash a value or structure.
	KindHash
	// KindJSONParse: failed to parse an object from a JSON buffer.
	KindJSONParse
	// KindArrayIndexNotFound: the index is not present in the array.
	KindArrayIndexNotFound
	// KindMapKeyNotFound: the key is not present in the map.
	KindMapKeyNotFound
	// KindBufferIsNotValue: failed to parse a value from a buffer.
	KindBufferIsNotValue
	// KindUnsupportedOperator: the operator is not implemented for the input type.
	KindUnsupportedOperator
	// KindUnsupportedReducer: the reducer is not implemented for the inner type.
	KindUnsupportedReducer
	// KindUnsupportedFilter: the filter is not implemented for the inner type.
	KindUnsupportedFilter
	// KindModeTie: there was a tie after applying the mode reducer.
	KindModeTie
	// KindModeEmpty: the mode reducer was applied to an empty array.
	KindModeEmpty
	// KindWrongArguments: the arguments are not valid for the operator.
	KindWrongArguments
	// KindHTTPStatus: an HTTP retrieval answered with an error status code.
	KindHTTPStatus
	// KindHTTPOther: an HTTP retrieval failed before producing a status code.
	KindHTTPOther
	// KindParseFloat: failed to convert a string to a float.
	KindParseFloat
	// KindParseInt: failed to convert a string to an integer.
	KindParseInt
	// KindParseBool: failed to convert a string to a boolean.
	KindParseBool
	// KindOverflow: arithmetic overflow.
	KindOverflow
	// KindMismatchingTypes: the operands of an operation have mismatching types.
	KindMismatchingTypes
	// KindDifferentSizeArrays: arrays to be reduced together have different sizes.
	KindDifferentSizeArrays
	// KindSubscript: a subscript failed while being applied to an element.
	KindSubscript
)

// Error is one element of the closed result-language error taxonomy.
//
// Only the payload fields relevant to the Kind are set; all payloads are
// fully typed so that classification never has to inspect message text.
type Error struct {
	Kind Kind

	// Decode, Encode.
	From string
	To   string

	// JSONParse, BufferIsNotValue, HTTPOther, ParseFloat, ParseInt, ParseBool.
	// Free-form text: never consulted by classification, logs only.
	Message string

	// ArrayIndexNotFound.
	Index int32
	// MapKeyNotFound.
	Key string

	// UnsupportedOperator, UnsupportedReducer, UnsupportedFilter,
	// WrongArguments, MismatchingTypes, Subscript.
	InputType string
	Operator  string
	// UnsupportedReducer, UnsupportedFilter.
	InnerType string

	// MismatchingTypes, DifferentSizeArrays.
	Method   string
	Expected string
	Found    string
	// DifferentSizeArrays.
	First  int
	Second int

	// HTTPStatus.
	StatusCode uint16

	// Subscript.
	Inner *Error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindUnknown:
		return "unknown error"
	case KindDecode:
		return fmt.Sprintf("failed to decode %s from %s", e.To, e.From)
	case KindEncode:
		return fmt.Sprintf("failed to encode %s into %s", e.From, e.To)
	case KindHash:
		return "failed to calculate the hash of a value or structure"
	case KindJSONParse:
		return fmt.Sprintf("failed to parse an object from a JSON buffer: %s", e.Message)
	case KindArrayIndexNotFound:
		return fmt.Sprintf("failed to get item at index %d from array", e.Index)
	case KindMapKeyNotFound:
		return fmt.Sprintf("failed to get key %q from map", e.Key)
	case KindBufferIsNotValue:
		return fmt.Sprintf("failed to parse a value from a buffer: %s", e.Message)
	case KindUnsupportedOperator:
		return fmt.Sprintf("operator %q is not supported for input type %q", e.Operator, e.InputType)
	case KindUnsupportedReducer:
		return fmt.Sprintf("reducer %q is not implemented for array with inner type %q", e.Operator, e.InnerType)
	case KindUnsupportedFilter:
		return fmt.Sprintf("filter %q is not implemented for array with inner type %q", e.Operator, e.InnerType)
	case KindModeTie:
		return "there was a tie after applying the mode reducer"
	case KindModeEmpty:
		return "tried to apply mode reducer on an empty array"
	case KindWrongArguments:
		return fmt.Sprintf("wrong %s::%s() arguments", e.InputType, e.Operator)
	case KindHTTPStatus:
		return fmt.Sprintf("HTTP GET response was an HTTP error code: %d", e.StatusCode)
	case KindHTTPOther:
		return fmt.Sprintf("failed to execute HTTP GET request: %s", e.Message)
	case KindParseFloat:
		return fmt.Sprintf("failed to convert string to float: %s", e.Message)
	case KindParseInt:
		return fmt.Sprintf("failed to convert string to int: %s", e.Message)
	case KindParseBool:
		return fmt.Sprintf("failed to convert string to bool: %s", e.Message)
	case KindOverflow:
		return "overflow error"
	case KindMismatchingTypes:
		return fmt.Sprintf("mismatching types in %s. expected: %s, found: %s", e.Method, e.Expected, e.Found)
	case KindDifferentSizeArrays:
		return fmt.Sprintf("arrays to be reduced in %s have different sizes: %d != %d", e.Method, e.First, e.Second)
	case KindSubscript:
		return fmt.Sprintf("%s::%s(): error in subscript: %s", e.InputType, e.Operator, e.Inner)
	default:
		return "unknown error"
	}
}

// Unwrap exposes the inner error of a Subscript failure.
func (e *Error) Unwrap() error {
	if e == nil || e.Inner == nil {
		return nil
	}
	return e.Inner
}

// Unknown is the default error of the taxonomy.
func Unknown() *Error {
	return &Error{Kind: KindUnknown}
}

// NewHTTPStatus builds the error for an HTTP response with an error status.
func NewHTTPStatus(statusCode uint16) *Error {
	return &Error{Kind: KindHTTPStatus, StatusCode: statusCode}
}

// NewHTTPOther builds the error for an HTTP retrieval that failed before
// producing a status code (connection refused, DNS failure, timeout).
func NewHTTPOther(message string) *Error {
	return &Error{Kind: KindHTTPOther, Message: message}
}

// FromStrconv maps a strconv parse failure to its taxonomy kind. Errors that
// are not *strconv.NumError fall back to Unknown.
func FromStrconv(err error) *Error {
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		return Unknown()
	}
	switch numErr.Func {
	case "ParseFloat":
		return &Error{Kind: KindParseFloat, Message: numErr.Error()}
	case "ParseInt", "ParseUint", "Atoi":
		return &Error{Kind: KindParseInt, Message: numErr.Error()}
	case "ParseBool":
		return &Error{Kind: KindParseBool, Message: numErr.Error()}
	default:
		return Unknown()
	}
}
