package codec

import (
	"io"

	"github.com/valyala/bytebufferpool"

	"github.com/ssargent/iostreams/pkg/ioerr"
	"github.com/ssargent/iostreams/pkg/transform"
)

// inputPool holds the buffers decompressors collect their input in.
var inputPool bytebufferpool.Pool

// sinkWriter adapts the Buffered output of a transform to io.Writer so
// compression libraries can write straight into it. sink is swapped in for
// the duration of every Update/Final call.
type sinkWriter struct {
	out  *transform.Buffered
	sink transform.Sink
}

func (w *sinkWriter) Write(p []byte) (int, error) {
	if err := w.out.Write(p, w.sink); err != nil {
		return 0, err
	}
	return len(p), nil
}

// streamEncoder drives an io.WriteCloser compressor as a push transform.
type streamEncoder struct {
	transform.Buffered
	name   string
	w      sinkWriter
	enc    io.WriteCloser
	open   func(io.Writer) (io.WriteCloser, error)
	resetf func(io.Writer)
}

func (s *streamEncoder) ensure() error {
	if s.enc != nil {
		return nil
	}
	s.w.out = &s.Buffered
	enc, err := s.open(&s.w)
	if err != nil {
		return ioerr.Wrap(ioerr.Compression, s.name+".encode", err)
	}
	s.enc = enc
	return nil
}

// Update compresses p; compressed output reaches sink whenever the
// compressor emits it.
func (s *streamEncoder) Update(p []byte, sink transform.Sink) error {
	if err := s.BeginUpdate(s.name + ".encode"); err != nil {
		return err
	}
	if err := s.ensure(); err != nil {
		return err
	}
	s.w.sink = sink
	defer func() { s.w.sink = nil }()

	if _, err := s.enc.Write(p); err != nil {
		return ioerr.Wrap(ioerr.Compression, s.name+".encode", err)
	}
	return nil
}

// Final closes the compressor, writing its trailer, and flushes.
func (s *streamEncoder) Final(sink transform.Sink) error {
	if err := s.BeginFinal(s.name + ".encode"); err != nil {
		return err
	}
	if err := s.ensure(); err != nil {
		return err
	}
	s.w.sink = sink
	defer func() { s.w.sink = nil }()

	if err := s.enc.Close(); err != nil {
		return ioerr.Wrap(ioerr.Compression, s.name+".encode", err)
	}
	return s.Flush(sink)
}

// RequiredSize estimates the compressed size of n bytes for preallocation.
// Incompressible input may exceed it slightly.
func (s *streamEncoder) RequiredSize(n int) int {
	return n + n>>3 + 64
}

// Reset rearms the compressor for a new payload.
func (s *streamEncoder) Reset() {
	s.ResetBuffer()
	if s.enc != nil {
		s.resetf(&s.w)
	}
}

// bufferedDecoder collects compressed input and decodes it on Final.
// Decompressors in the ecosystem are pull based, so the whole compressed
// payload is held until the end.
type bufferedDecoder struct {
	transform.Buffered
	name   string
	input  *bytebufferpool.ByteBuffer
	decode func(src []byte, dst io.Writer) error
}

// Update appends p to the pending compressed input. It never calls sink.
func (b *bufferedDecoder) Update(p []byte, sink transform.Sink) error {
	if err := b.BeginUpdate(b.name + ".decode"); err != nil {
		return err
	}
	if b.input == nil {
		b.input = inputPool.Get()
	}
	_, _ = b.input.Write(p)
	return nil
}

// Final decompresses the collected input into sink.
func (b *bufferedDecoder) Final(sink transform.Sink) error {
	if err := b.BeginFinal(b.name + ".decode"); err != nil {
		return err
	}
	defer b.release()

	if b.input == nil || b.input.Len() == 0 {
		return nil
	}

	w := &sinkWriter{out: &b.Buffered, sink: sink}
	if err := b.decode(b.input.B, w); err != nil {
		return ioerr.Wrap(ioerr.Compression, b.name+".decode", err)
	}
	return b.Flush(sink)
}

// RequiredSize is unknown before decoding; n is returned as a floor.
func (b *bufferedDecoder) RequiredSize(n int) int {
	return n
}

// Reset drops collected input.
func (b *bufferedDecoder) Reset() {
	b.release()
	b.ResetBuffer()
}

func (b *bufferedDecoder) release() {
	if b.input != nil {
		inputPool.Put(b.input)
		b.input = nil
	}
}
