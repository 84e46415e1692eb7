package stream

import (
	"io"

	"github.com/ssargent/iostreams/pkg/ioerr"
)

// Reader adapts a Stream to io.Reader, io.ReaderAt and io.Seeker. Unlike
// Stream.Read it reports io.EOF at the end of the stream.
type Reader struct {
	s Stream
}

// NewReader wraps s.
func NewReader(s Stream) *Reader {
	return &Reader{s: s}
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := r.s.Read(p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// ReadAt reads len(p) bytes at off. The stream cursor is restored afterwards.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ioerr.New(ioerr.OutOfRange, "reader.readat")
	}
	if uint64(off) >= r.s.Size() {
		return 0, io.EOF
	}

	pos := r.s.Tell()
	defer func() { _ = r.s.Seek(int64(pos), Begin) }()

	if err := r.s.Seek(off, Begin); err != nil {
		return 0, err
	}

	read := 0
	for read < len(p) {
		n, err := r.s.Read(p[read:])
		if err != nil {
			return read, err
		}
		if n == 0 {
			return read, io.EOF
		}
		read += n
	}
	return read, nil
}

func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	var origin Origin
	switch whence {
	case io.SeekStart:
		origin = Begin
	case io.SeekCurrent:
		origin = Current
	case io.SeekEnd:
		origin = End
	default:
		return 0, ioerr.New(ioerr.OutOfRange, "reader.seek")
	}
	if err := r.s.Seek(offset, origin); err != nil {
		return 0, err
	}
	return int64(r.s.Tell()), nil
}

// Size returns the stream size.
func (r *Reader) Size() int64 {
	return int64(r.s.Size())
}

// Writer adapts a Stream to io.Writer.
type Writer struct {
	s Stream
}

// NewWriter wraps s.
func NewWriter(s Stream) *Writer {
	return &Writer{s: s}
}

func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.s.Write(p)
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}
