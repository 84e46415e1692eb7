// Package transform defines the push-style transform contract used by every
// codec in this module.
//
// A transform accepts input chunks through Update and delivers its output
// through a caller supplied Sink. Output may be delivered during any Update
// call or only on Final; callers must not assume a fixed number of sink
// invocations per call. After Final the transform is finalized and further
// calls fail with ioerr.ErrTransformFinalized until Reset is called.
//
// Transforms are not safe for concurrent use.
package transform

import (
	"github.com/ssargent/iostreams/pkg/ioerr"
)

// Sink receives transform output. The slice is only valid for the duration of
// the call; sinks that keep data must copy it.
type Sink func(p []byte) error

// Transform converts a stream of input chunks into output chunks.
type Transform interface {
	// Update feeds p to the transform. Output produced so far may be
	// delivered to sink.
	Update(p []byte, sink Sink) error

	// Final flushes all pending state to sink and finalizes the transform.
	Final(sink Sink) error
}

// Sizer is implemented by transforms that can bound their output size.
type Sizer interface {
	// RequiredSize returns an upper bound on output length for n input bytes.
	RequiredSize(n int) int
}

// Resetter is implemented by transforms that can be reused after Final.
type Resetter interface {
	Reset()
}

// Phase is the lifecycle state of a transform instance.
type Phase int

const (
	Idle Phase = iota
	Updating
	Finalized
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Updating:
		return "updating"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// State tracks the Idle -> Updating -> Finalized lifecycle.
type State struct {
	phase Phase
}

// Phase returns the current lifecycle phase.
func (s *State) Phase() Phase {
	return s.phase
}

// BeginUpdate moves to Updating, failing if already finalized.
func (s *State) BeginUpdate(op string) error {
	if s.phase == Finalized {
		return ioerr.New(ioerr.TransformFinalized, op)
	}
	s.phase = Updating
	return nil
}

// BeginFinal moves to Finalized, failing if already finalized.
func (s *State) BeginFinal(op string) error {
	if s.phase == Finalized {
		return ioerr.New(ioerr.TransformFinalized, op)
	}
	s.phase = Finalized
	return nil
}

// ResetState returns to Idle.
func (s *State) ResetState() {
	s.phase = Idle
}

// Discard is a sink that drops everything.
func Discard(p []byte) error {
	return nil
}

// Collect returns a sink appending every chunk to *dst.
func Collect(dst *[]byte) Sink {
	return func(p []byte) error {
		*dst = append(*dst, p...)
		return nil
	}
}

// Apply runs the whole of src through t in one Update and a Final and returns
// the concatenated output.
func Apply(t Transform, src []byte) ([]byte, error) {
	var out []byte
	if s, ok := t.(Sizer); ok {
		out = make([]byte, 0, s.RequiredSize(len(src)))
	}
	sink := Collect(&out)
	if err := t.Update(src, sink); err != nil {
		return nil, err
	}
	if err := t.Final(sink); err != nil {
		return nil, err
	}
	return out, nil
}
