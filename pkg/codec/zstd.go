package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/ssargent/iostreams/pkg/transform"
)

func zstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case LevelFastest:
		return zstd.SpeedFastest
	case LevelBest:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

// ZstdEncoder compresses its input into a zstandard frame.
type ZstdEncoder struct {
	streamEncoder
}

// NewZstdEncoder creates a zstd compressing transform. The encoder runs on
// the calling goroutine only.
func NewZstdEncoder(opts ...Option) *ZstdEncoder {
	config := applyOptions(opts...)
	z := &ZstdEncoder{}
	z.Buffered = transform.NewBuffered(config.BufferSize)
	z.name = "zstd"
	z.open = func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstdLevel(config.Level)),
			zstd.WithEncoderConcurrency(1))
	}
	z.resetf = func(w io.Writer) {
		z.enc.(*zstd.Encoder).Reset(w)
	}
	return z
}

// ZstdDecoder decompresses zstandard input.
type ZstdDecoder struct {
	bufferedDecoder
}

// NewZstdDecoder creates a zstd decompressing transform.
func NewZstdDecoder(opts ...Option) *ZstdDecoder {
	config := applyOptions(opts...)
	z := &ZstdDecoder{}
	z.Buffered = transform.NewBuffered(config.BufferSize)
	z.name = "zstd"
	z.decode = func(src []byte, dst io.Writer) error {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return err
		}
		defer dec.Close()

		out, err := dec.DecodeAll(src, nil)
		if err != nil {
			return err
		}
		_, err = dst.Write(out)
		return err
	}
	return z
}
