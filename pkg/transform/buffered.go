package transform

import (
	"github.com/ssargent/iostreams/pkg/ioerr"
)

const (
	// DefaultBufferSize is the output buffer capacity used by codecs when no
	// size is given.
	DefaultBufferSize = 4 * 1024

	// MinBufferSize fits the largest group any codec reserves at once.
	MinBufferSize = 4
)

// Buffered accumulates transform output in a fixed-size buffer and hands it to
// the sink only when full or on demand. Codecs embed it and call Reserve
// before each write so the buffer never exceeds its capacity.
type Buffered struct {
	State
	buf []byte
	n   int
}

// NewBuffered creates a buffer of the given capacity. A size <= 0 selects
// DefaultBufferSize; smaller positive sizes are raised to MinBufferSize.
func NewBuffered(size int) Buffered {
	switch {
	case size <= 0:
		size = DefaultBufferSize
	case size < MinBufferSize:
		size = MinBufferSize
	}
	return Buffered{buf: make([]byte, size)}
}

// Cap returns the fixed capacity of the buffer.
func (b *Buffered) Cap() int {
	return len(b.buf)
}

// Len returns the number of buffered bytes not yet flushed.
func (b *Buffered) Len() int {
	return b.n
}

// Flush hands the filled prefix to sink, if any, and empties the buffer. A
// nil sink fails with ioerr.ErrBadSink and keeps the buffered bytes.
func (b *Buffered) Flush(sink Sink) error {
	if b.n == 0 {
		return nil
	}
	if sink == nil {
		return ioerr.New(ioerr.BadSink, "transform.flush")
	}
	n := b.n
	b.n = 0
	return sink(b.buf[:n])
}

// Reserve flushes when fewer than n bytes remain free. n must not exceed
// Cap(); larger requests fail with ioerr.ErrBufferTooSmall.
func (b *Buffered) Reserve(n int, sink Sink) error {
	if n > len(b.buf) {
		return ioerr.New(ioerr.BufferTooSmall, "transform.reserve")
	}
	if b.n+n > len(b.buf) {
		return b.Flush(sink)
	}
	return nil
}

// Put appends one byte. The caller must have reserved room.
func (b *Buffered) Put(c byte) {
	b.buf[b.n] = c
	b.n++
}

// PutByte reserves room for one byte and appends it.
func (b *Buffered) PutByte(c byte, sink Sink) error {
	if err := b.Reserve(1, sink); err != nil {
		return err
	}
	b.Put(c)
	return nil
}

// Write copies p into the buffer, flushing as often as needed.
func (b *Buffered) Write(p []byte, sink Sink) error {
	for len(p) > 0 {
		if b.n == len(b.buf) {
			if err := b.Flush(sink); err != nil {
				return err
			}
		}
		c := copy(b.buf[b.n:], p)
		b.n += c
		p = p[c:]
	}
	return nil
}

// ResetBuffer drops buffered output and returns the lifecycle to Idle.
func (b *Buffered) ResetBuffer() {
	b.n = 0
	b.ResetState()
}
