package stream

import (
	"github.com/ssargent/iostreams/pkg/transform"
)

// ArrayStream is a stream over a single growable byte slice.
type ArrayStream struct {
	data []byte
	pos  uint64
}

// NewArrayStream creates an empty array stream.
func NewArrayStream() *ArrayStream {
	return &ArrayStream{}
}

// NewArrayStreamFrom creates a stream that takes ownership of b. The cursor
// starts at 0.
func NewArrayStreamFrom(b []byte) *ArrayStream {
	return &ArrayStream{data: b}
}

// CreateArrayStream decodes text through t into a new stream positioned at 0.
func CreateArrayStream(text string, t transform.Transform) (*ArrayStream, error) {
	s := NewArrayStream()
	if sz, ok := t.(transform.Sizer); ok {
		s.Reserve(uint64(sz.RequiredSize(len(text))))
	}
	if err := create(text, t, s); err != nil {
		return nil, err
	}
	s.pos = 0
	return s, nil
}

func (s *ArrayStream) Size() uint64 {
	return uint64(len(s.data))
}

func (s *ArrayStream) Tell() uint64 {
	return s.pos
}

// Capacity returns the allocated size of the backing slice.
func (s *ArrayStream) Capacity() uint64 {
	return uint64(cap(s.data))
}

// Bytes returns the valid bytes. The slice aliases the stream's storage
// until the next write or resize.
func (s *ArrayStream) Bytes() []byte {
	return s.data
}

// Reserve grows the backing capacity to at least n without changing the size.
func (s *ArrayStream) Reserve(n uint64) {
	if n <= uint64(cap(s.data)) {
		return
	}
	grown := make([]byte, len(s.data), n)
	copy(grown, s.data)
	s.data = grown
}

func (s *ArrayStream) Seek(offset int64, origin Origin) error {
	target, err := seekTarget("array.seek", offset, origin, s.pos, s.Size())
	if err != nil {
		return err
	}
	s.pos = target
	return nil
}

// Resize truncates or zero-extends the stream.
func (s *ArrayStream) Resize(n uint64) error {
	s.setLen(n)
	if s.pos > n {
		s.pos = n
	}
	return nil
}

func (s *ArrayStream) Read(p []byte) (int, error) {
	size := s.Size()
	if size == 0 || s.pos >= size {
		return 0, nil
	}
	n := copy(p, s.data[s.pos:])
	s.pos += uint64(n)
	return n, nil
}

func (s *ArrayStream) Write(p []byte) (int, error) {
	if end := s.pos + uint64(len(p)); end > s.Size() {
		s.setLen(end)
	}
	n := copy(s.data[s.pos:], p)
	s.pos += uint64(n)
	return n, nil
}

// ToString feeds the whole stream to t in a single update.
func (s *ArrayStream) ToString(t transform.Transform) (string, error) {
	return collectString("array.tostring", s.Size(), t, func(sink transform.Sink) error {
		return t.Update(s.data, sink)
	})
}

// setLen changes the length of data, zeroing any newly exposed bytes.
func (s *ArrayStream) setLen(n uint64) {
	old := uint64(len(s.data))
	if n <= uint64(cap(s.data)) {
		s.data = s.data[:n]
		if n > old {
			clear(s.data[old:])
		}
		return
	}

	newCap := 2 * uint64(cap(s.data))
	if newCap < n {
		newCap = n
	}
	grown := make([]byte, n, newCap)
	copy(grown, s.data)
	s.data = grown
}
