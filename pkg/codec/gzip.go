package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/ssargent/iostreams/pkg/transform"
)

func gzipLevel(level Level) int {
	switch level {
	case LevelFastest:
		return gzip.BestSpeed
	case LevelBest:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

// GzipEncoder compresses its input into the gzip format.
type GzipEncoder struct {
	streamEncoder
}

// NewGzipEncoder creates a gzip compressing transform.
func NewGzipEncoder(opts ...Option) *GzipEncoder {
	config := applyOptions(opts...)
	g := &GzipEncoder{}
	g.Buffered = transform.NewBuffered(config.BufferSize)
	g.name = "gzip"
	g.open = func(w io.Writer) (io.WriteCloser, error) {
		return gzip.NewWriterLevel(w, gzipLevel(config.Level))
	}
	g.resetf = func(w io.Writer) {
		g.enc.(*gzip.Writer).Reset(w)
	}
	return g
}

// GzipDecoder decompresses gzip input, including multi-member files.
type GzipDecoder struct {
	bufferedDecoder
}

// NewGzipDecoder creates a gzip decompressing transform.
func NewGzipDecoder(opts ...Option) *GzipDecoder {
	config := applyOptions(opts...)
	g := &GzipDecoder{}
	g.Buffered = transform.NewBuffered(config.BufferSize)
	g.name = "gzip"
	g.decode = func(src []byte, dst io.Writer) error {
		r, err := gzip.NewReader(bytes.NewReader(src))
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, r); err != nil {
			_ = r.Close()
			return err
		}
		return r.Close()
	}
	return g
}
