// Package stream provides byte streams over different backings and the
// driver that moves stream contents through a transform.
//
// Every stream has a logical size and a single cursor. Reads never pass the
// end of the stream and return (0, nil) once the cursor reaches it; writes
// may extend the stream. Seeking outside [0, Size()] fails with
// ioerr.ErrOutOfRange and leaves the cursor where it was.
//
// Streams are not safe for concurrent use.
package stream

import (
	"math"

	"github.com/valyala/bytebufferpool"

	"github.com/ssargent/iostreams/pkg/ioerr"
	"github.com/ssargent/iostreams/pkg/transform"
)

// Origin is the reference point of a Seek.
type Origin int

const (
	Begin Origin = iota
	Current
	End
)

func (o Origin) String() string {
	switch o {
	case Begin:
		return "begin"
	case Current:
		return "current"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Stream is ordered byte storage with a movable cursor.
type Stream interface {
	// Size returns the number of valid bytes.
	Size() uint64

	// Tell returns the cursor position.
	Tell() uint64

	// Seek moves the cursor to offset relative to origin.
	Seek(offset int64, origin Origin) error

	// Resize sets the size directly, clamping the cursor when it shrinks.
	Resize(n uint64) error

	// Read copies up to len(p) bytes from the cursor and advances it.
	Read(p []byte) (int, error)

	// Write copies p at the cursor, advancing it and extending the size.
	Write(p []byte) (int, error)

	// ToString runs the whole stream through t and returns the output.
	ToString(t transform.Transform) (string, error)
}

// maxBufferSize is the largest stream ReadAll and ToString will materialize.
var maxBufferSize uint64 = math.MaxInt

// accumulators back ToString output.
var accumulators bytebufferpool.Pool

// ReadAt seeks to off and reads into p.
func ReadAt(s Stream, off int64, p []byte) (int, error) {
	if err := s.Seek(off, Begin); err != nil {
		return 0, err
	}
	return s.Read(p)
}

// WriteAt seeks to off and writes p.
func WriteAt(s Stream, off int64, p []byte) (int, error) {
	if err := s.Seek(off, Begin); err != nil {
		return 0, err
	}
	return s.Write(p)
}

// ReadAll seeks to the start and reads exactly Size() bytes.
func ReadAll(s Stream) ([]byte, error) {
	size := s.Size()
	if size > maxBufferSize {
		return nil, ioerr.New(ioerr.StreamSizeTooBig, "stream.readall")
	}
	if err := s.Seek(0, Begin); err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	read := 0
	for read < len(buf) {
		n, err := s.Read(buf[read:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		read += n
	}
	return buf[:read], nil
}

// ReadAllString is ReadAll returning a string.
func ReadAllString(s Stream) (string, error) {
	b, err := ReadAll(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// seekTarget resolves a seek request to an absolute position in [0, size].
func seekTarget(op string, offset int64, origin Origin, pos, size uint64) (uint64, error) {
	var base int64
	switch origin {
	case Begin:
	case Current:
		base = int64(pos)
	case End:
		base = int64(size)
	default:
		return 0, ioerr.New(ioerr.OutOfRange, op)
	}

	target := base + offset
	if (offset > 0 && target < base) || target < 0 || uint64(target) > size {
		return 0, ioerr.New(ioerr.OutOfRange, op)
	}
	return uint64(target), nil
}

// collectString runs feed and t.Final into a pooled buffer. Streams of size
// zero produce an empty string without touching t.
func collectString(op string, size uint64, t transform.Transform, feed func(transform.Sink) error) (string, error) {
	if size == 0 {
		return "", nil
	}
	if size > maxBufferSize {
		return "", ioerr.New(ioerr.StreamSizeTooBig, op)
	}

	buf := accumulators.Get()
	defer accumulators.Put(buf)

	if s, ok := t.(transform.Sizer); ok && size <= math.MaxInt32 {
		if need := s.RequiredSize(int(size)); need > cap(buf.B) {
			buf.B = make([]byte, 0, need)
		}
	}

	sink := func(p []byte) error {
		_, err := buf.Write(p)
		return err
	}
	if err := feed(sink); err != nil {
		return "", err
	}
	if err := t.Final(sink); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// create fills w with the output of running text through t.
func create(text string, t transform.Transform, w interface{ Write([]byte) (int, error) }) error {
	sink := func(p []byte) error {
		_, err := w.Write(p)
		return err
	}
	if err := t.Update([]byte(text), sink); err != nil {
		return err
	}
	return t.Final(sink)
}
