// Package errs implements the error taxonomy surfaced by every codec step
// (spec §7): a closed set of Kind values, each with a sentinel Error that
// errors.Is can match regardless of how deeply it has been wrapped.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies which category of failure occurred.
type Kind int

const (
	_ Kind = iota
	CarrierUnrecognized
	CarrierMalformed
	CarrierTooSmall
	JpegSegmentOverflow
	NoPayload
	BadHeader
	UnsupportedVersion
	KdfUnsupported
	AuthFail
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case CarrierUnrecognized:
		return "CarrierUnrecognized"
	case CarrierMalformed:
		return "CarrierMalformed"
	case CarrierTooSmall:
		return "CarrierTooSmall"
	case JpegSegmentOverflow:
		return "JpegSegmentOverflow"
	case NoPayload:
		return "NoPayload"
	case BadHeader:
		return "BadHeader"
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case KdfUnsupported:
		return "KdfUnsupported"
	case AuthFail:
		return "AuthFail"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type every core operation returns on failure.
// It always carries a Kind, and may wrap a lower-level cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a bare sentinel *Error (empty Msg) with
// the same Kind, so that errors.Is(err, errs.ErrAuthFail) works without
// exposing *Error details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Msg == ""
}

// New builds an *Error of the given kind wrapping cause (which may be nil).
func New(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// sentinel returns a bare Error usable as an errors.Is comparison target.
func sentinel(kind Kind) error { return &Error{Kind: kind} }

// Sentinel values for errors.Is comparisons, one per Kind.
var (
	ErrCarrierUnrecognized = sentinel(CarrierUnrecognized)
	ErrCarrierMalformed    = sentinel(CarrierMalformed)
	ErrCarrierTooSmall     = sentinel(CarrierTooSmall)
	ErrJpegSegmentOverflow = sentinel(JpegSegmentOverflow)
	ErrNoPayload           = sentinel(NoPayload)
	ErrBadHeader           = sentinel(BadHeader)
	ErrUnsupportedVersion  = sentinel(UnsupportedVersion)
	ErrKdfUnsupported      = sentinel(KdfUnsupported)
	ErrAuthFail            = sentinel(AuthFail)
	ErrCancelled           = sentinel(Cancelled)
)

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, and false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
