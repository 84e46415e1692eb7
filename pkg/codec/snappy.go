package codec

import (
	"bytes"
	"io"

	"github.com/golang/snappy"

	"github.com/ssargent/iostreams/pkg/transform"
)

// SnappyEncoder compresses its input using the snappy framing format.
// Compression level options are ignored.
type SnappyEncoder struct {
	streamEncoder
}

// NewSnappyEncoder creates a snappy compressing transform.
func NewSnappyEncoder(opts ...Option) *SnappyEncoder {
	config := applyOptions(opts...)
	s := &SnappyEncoder{}
	s.Buffered = transform.NewBuffered(config.BufferSize)
	s.name = "snappy"
	s.open = func(w io.Writer) (io.WriteCloser, error) {
		return snappy.NewBufferedWriter(w), nil
	}
	s.resetf = func(w io.Writer) {
		s.enc.(*snappy.Writer).Reset(w)
	}
	return s
}

// SnappyDecoder decompresses snappy framed input.
type SnappyDecoder struct {
	bufferedDecoder
}

// NewSnappyDecoder creates a snappy decompressing transform.
func NewSnappyDecoder(opts ...Option) *SnappyDecoder {
	config := applyOptions(opts...)
	s := &SnappyDecoder{}
	s.Buffered = transform.NewBuffered(config.BufferSize)
	s.name = "snappy"
	s.decode = func(src []byte, dst io.Writer) error {
		_, err := io.Copy(dst, snappy.NewReader(bytes.NewReader(src)))
		return err
	}
	return s
}
