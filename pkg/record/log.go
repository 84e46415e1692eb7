package record

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/iostreams/pkg/stream"
)

// Writer appends records to the end of a stream.
type Writer struct {
	s      stream.Stream
	offset int64
}

// NewWriter positions at the end of s so existing records are kept.
func NewWriter(s stream.Stream) (*Writer, error) {
	if err := s.Seek(0, stream.End); err != nil {
		return nil, err
	}
	return &Writer{s: s, offset: int64(s.Size())}, nil
}

// Put appends a record and returns the offset it starts at.
func (w *Writer) Put(key, value []byte) (int64, error) {
	data, err := Encode(key, value)
	if err != nil {
		return 0, err
	}

	if err := w.s.Seek(w.offset, stream.Begin); err != nil {
		return 0, err
	}
	n, err := w.s.Write(data)
	if err != nil {
		return 0, errors.Wrapf(err, "append record at %d", w.offset)
	}
	if n != len(data) {
		return 0, errors.Wrapf(io.ErrShortWrite, "append record at %d", w.offset)
	}

	offset := w.offset
	w.offset += int64(n)
	return offset, nil
}

// Size returns the offset the next record will be written at.
func (w *Writer) Size() int64 {
	return w.offset
}

// Reader reads records sequentially from a stream.
type Reader struct {
	s      stream.Stream
	offset int64
}

// NewReader reads s from the given offset.
func NewReader(s stream.Stream, offset int64) (*Reader, error) {
	r := &Reader{s: s}
	if err := r.Seek(offset); err != nil {
		return nil, err
	}
	return r, nil
}

// Next reads the record at the current offset. It returns io.EOF at a clean
// end of stream and ErrCorruption for a partial or damaged record.
func (r *Reader) Next() (*Record, error) {
	if err := r.s.Seek(r.offset, stream.Begin); err != nil {
		return nil, err
	}

	rec, n, err := r.read()
	if err != nil {
		return nil, err
	}
	r.offset += int64(n)
	return rec, nil
}

// ReadAt reads the record at offset without moving the reader.
func (r *Reader) ReadAt(offset int64) (*Record, error) {
	if err := r.s.Seek(offset, stream.Begin); err != nil {
		return nil, err
	}
	rec, _, err := r.read()
	if err == io.EOF {
		return nil, ErrCorruption
	}
	return rec, err
}

func (r *Reader) read() (*Record, int, error) {
	hdr := make([]byte, HeaderSize)
	n, err := readFull(r.s, hdr)
	if err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return nil, 0, io.EOF
	}
	if n < HeaderSize {
		return nil, 0, errors.Wrapf(ErrCorruption, "partial header at %d", r.s.Tell()-uint64(n))
	}

	rec := parseHeader(hdr)
	size := uint64(rec.KeySize) + uint64(rec.ValueSize)
	if size > r.s.Size()-r.s.Tell() {
		return nil, 0, errors.Wrapf(ErrCorruption, "record claims %d payload bytes", size)
	}

	payload := make([]byte, size)
	if _, err := readFull(r.s, payload); err != nil {
		return nil, 0, err
	}
	rec.Key = payload[:rec.KeySize]
	rec.Value = payload[rec.KeySize:]

	if err := rec.Validate(); err != nil {
		return nil, 0, err
	}
	return rec, HeaderSize + int(size), nil
}

// Seek moves the reader to offset.
func (r *Reader) Seek(offset int64) error {
	if err := r.s.Seek(offset, stream.Begin); err != nil {
		return err
	}
	r.offset = offset
	return nil
}

// Offset returns the offset of the next record.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Iterator walks the remaining records.
func (r *Reader) Iterator() *Iterator {
	return &Iterator{reader: r}
}

// Iterator yields records until the end of the stream or an error.
type Iterator struct {
	reader *Reader
	record *Record
	err    error
}

func (it *Iterator) Next() bool {
	it.record, it.err = it.reader.Next()
	return it.err == nil
}

func (it *Iterator) Record() *Record {
	return it.record
}

// Err returns the error that stopped iteration, or nil at a clean end.
func (it *Iterator) Err() error {
	if it.err == io.EOF {
		return nil
	}
	return it.err
}

func readFull(s stream.Stream, p []byte) (int, error) {
	read := 0
	for read < len(p) {
		n, err := s.Read(p[read:])
		if err != nil {
			return read, err
		}
		if n == 0 {
			break
		}
		read += n
	}
	return read, nil
}
