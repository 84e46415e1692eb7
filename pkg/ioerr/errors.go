// Package ioerr defines the error taxonomy shared by streams and transforms.
//
// Every failure raised by this module is an *Error carrying a Kind. Callers
// match on kinds with errors.Is against the exported sentinels:
//
//	if errors.Is(err, ioerr.ErrOutOfRange) {
//	    // seek target was outside [0, size]
//	}
//
// Failures coming from outside the module (the OS, pebble, compression
// libraries) are wrapped so the original cause stays reachable via Unwrap.
package ioerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Category prefixes every message produced by this package.
const Category = "iostreams"

// Kind identifies the class of failure.
type Kind int

const (
	Unknown Kind = iota
	BadFile
	BadFileDescriptor
	BadFileAccessValue
	BadFileModeValue
	StreamClosed
	OutOfRange
	BufferTooSmall
	StreamSizeTooBig
	BadTransformDestination
	BadBase64Character
	BadBase64StringLength
	BadHexCharacter
	BadHexStringLength
	TransformFinalized
	Compression
	BadSink
)

var kindMessages = map[Kind]string{
	Unknown:                 "unknown error",
	BadFile:                 "bad file value",
	BadFileDescriptor:       "bad file number",
	BadFileAccessValue:      "invalid FileAccess value",
	BadFileModeValue:        "invalid FileMode value",
	StreamClosed:            "the stream has already been closed",
	OutOfRange:              "offset is larger than the data size",
	BufferTooSmall:          "insufficient buffer size",
	StreamSizeTooBig:        "max buffer size less than stream size",
	BadTransformDestination: "source and destination cannot be the same stream",
	BadBase64Character:      "invalid base64 string character",
	BadBase64StringLength:   "invalid base64 string length",
	BadHexCharacter:         "invalid hex string character",
	BadHexStringLength:      "invalid hex string length",
	TransformFinalized:      "transform has already been finalized",
	Compression:             "compression failure",
	BadSink:                 "transform sink is nil",
}

// String returns the human readable description of the kind.
func (k Kind) String() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Code returns the stable numeric code of the kind.
func (k Kind) Code() int {
	return int(k)
}

// Error is the concrete error type returned by every package in this module.
type Error struct {
	Kind Kind   // Class of failure
	Op   string // Operation that failed, e.g. "memory.seek"
	Err  error  // Underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := Category + ": "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	msg += e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. A target carrying
// an Op only matches errors raised by that operation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// New creates an error of the given kind raised by op.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// Wrap creates an error of the given kind raised by op caused by err.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Sentinels for errors.Is matching.
var (
	ErrBadFile                 = &Error{Kind: BadFile}
	ErrBadFileDescriptor       = &Error{Kind: BadFileDescriptor}
	ErrBadFileAccessValue      = &Error{Kind: BadFileAccessValue}
	ErrBadFileModeValue        = &Error{Kind: BadFileModeValue}
	ErrStreamClosed            = &Error{Kind: StreamClosed}
	ErrOutOfRange              = &Error{Kind: OutOfRange}
	ErrBufferTooSmall          = &Error{Kind: BufferTooSmall}
	ErrStreamSizeTooBig        = &Error{Kind: StreamSizeTooBig}
	ErrBadTransformDestination = &Error{Kind: BadTransformDestination}
	ErrBadBase64Character      = &Error{Kind: BadBase64Character}
	ErrBadBase64StringLength   = &Error{Kind: BadBase64StringLength}
	ErrBadHexCharacter         = &Error{Kind: BadHexCharacter}
	ErrBadHexStringLength      = &Error{Kind: BadHexStringLength}
	ErrTransformFinalized      = &Error{Kind: TransformFinalized}
	ErrCompression             = &Error{Kind: Compression}
	ErrBadSink                 = &Error{Kind: BadSink}
)
