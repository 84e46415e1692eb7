package codec

import (
	"github.com/ssargent/iostreams/pkg/ioerr"
	"github.com/ssargent/iostreams/pkg/transform"
)

const (
	base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	base64Pad      = '='

	// badChar marks a character outside the alphabet in the decode tables.
	// Valid combined quartets never reach bit 24.
	badChar uint32 = 0x01FFFFFF
)

// Encode tables keyed by byte value. e0 yields the first character of a
// group, e1 any 6-bit index and e2 the low 6 bits of the third byte.
var e0, e1, e2 [256]byte

// Decode tables, one per quartet position. Each maps a character to its
// contribution to the 24-bit little-endian group or to badChar.
var d0, d1, d2, d3 [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		e0[i] = base64Alphabet[i>>2]
		e1[i] = base64Alphabet[i&0x3F]
		e2[i] = base64Alphabet[i&0x3F]

		d0[i], d1[i], d2[i], d3[i] = badChar, badChar, badChar, badChar
	}

	for v := 0; v < len(base64Alphabet); v++ {
		c := base64Alphabet[v]
		u := uint32(v)
		d0[c] = u << 2
		d1[c] = u>>4 | (u&0x0F)<<12
		d2[c] = (u>>2)<<8 | (u&0x03)<<22
		d3[c] = u << 16
	}
}

// Base64Encoder encodes bytes into standard base64 text with '=' padding and
// no line breaks.
type Base64Encoder struct {
	transform.Buffered
	group [3]byte
	i     int
}

// NewBase64Encoder creates a base64 encoder.
func NewBase64Encoder(opts ...Option) *Base64Encoder {
	config := applyOptions(opts...)
	return &Base64Encoder{Buffered: transform.NewBuffered(config.BufferSize)}
}

// RequiredSize returns ceil(n/3)*4.
func (e *Base64Encoder) RequiredSize(n int) int {
	size := n / 3 * 4
	if n%3 != 0 {
		size += 4
	}
	return size
}

// Update encodes every complete 3-byte group; up to two bytes are carried
// over to the next call.
func (e *Base64Encoder) Update(p []byte, sink transform.Sink) error {
	if err := e.BeginUpdate("base64.encode"); err != nil {
		return err
	}

	for _, c := range p {
		e.group[e.i] = c
		e.i++
		if e.i < 3 {
			continue
		}

		if err := e.Reserve(4, sink); err != nil {
			return err
		}
		b0, b1, b2 := e.group[0], e.group[1], e.group[2]
		e.Put(e0[b0])
		e.Put(e1[(b0&0x03)<<4|(b1>>4)&0x0F])
		e.Put(e1[(b1&0x0F)<<2|(b2>>6)&0x03])
		e.Put(e2[b2])
		e.i = 0
	}

	return nil
}

// Final encodes the carried bytes with padding and flushes.
func (e *Base64Encoder) Final(sink transform.Sink) error {
	if err := e.BeginFinal("base64.encode"); err != nil {
		return err
	}
	defer e.clearGroup()

	if e.i > 0 {
		if err := e.Reserve(4, sink); err != nil {
			return err
		}
		b0, b1 := e.group[0], e.group[1]
		e.Put(e0[b0])
		if e.i == 1 {
			e.Put(e1[(b0&0x03)<<4])
			e.Put(base64Pad)
		} else {
			e.Put(e1[(b0&0x03)<<4|(b1>>4)&0x0F])
			e.Put(e2[(b1&0x0F)<<2])
		}
		e.Put(base64Pad)
	}

	return e.Flush(sink)
}

// Reset discards carried state so the encoder can be reused.
func (e *Base64Encoder) Reset() {
	e.clearGroup()
	e.ResetBuffer()
}

func (e *Base64Encoder) clearGroup() {
	e.group = [3]byte{}
	e.i = 0
}

// Base64Decoder decodes standard base64 text. Carriage returns and line
// feeds are ignored.
//
// Trailing '=' padding is stripped from the tail of each Update call rather
// than from the end of the whole input, so padding split across two calls is
// not recognised as padding.
type Base64Decoder struct {
	transform.Buffered
	quartet [4]byte
	i       int
}

// NewBase64Decoder creates a base64 decoder.
func NewBase64Decoder(opts ...Option) *Base64Decoder {
	config := applyOptions(opts...)
	return &Base64Decoder{Buffered: transform.NewBuffered(config.BufferSize)}
}

// RequiredSize returns n/4*3. Padding is not accounted for.
func (d *Base64Decoder) RequiredSize(n int) int {
	return n / 4 * 3
}

// Update decodes every complete quartet; up to three characters are carried
// over to the next call.
func (d *Base64Decoder) Update(p []byte, sink transform.Sink) error {
	if err := d.BeginUpdate("base64.decode"); err != nil {
		return err
	}

	if n := len(p); n > 0 && p[n-1] == base64Pad {
		p = p[:n-1]
		if n := len(p); n > 0 && p[n-1] == base64Pad {
			p = p[:n-1]
		}
	}

	for _, c := range p {
		if c == '\r' || c == '\n' {
			continue
		}

		d.quartet[d.i] = c
		d.i++
		if d.i < 4 {
			continue
		}

		q := d.quartet
		x := d0[q[0]] | d1[q[1]] | d2[q[2]] | d3[q[3]]
		if x >= badChar {
			return ioerr.New(ioerr.BadBase64Character, "base64.decode")
		}

		if err := d.Reserve(3, sink); err != nil {
			return err
		}
		d.Put(byte(x))
		d.Put(byte(x >> 8))
		d.Put(byte(x >> 16))
		d.i = 0
	}

	return nil
}

// Final decodes the carried characters: one character yields nothing, two
// yield one byte and three yield two bytes.
func (d *Base64Decoder) Final(sink transform.Sink) error {
	if err := d.BeginFinal("base64.decode"); err != nil {
		return err
	}
	defer d.clearQuartet()

	q := d.quartet
	var x uint32
	switch d.i {
	case 1:
		x = d0[q[0]]
	case 2:
		x = d0[q[0]] | d1[q[1]]
	case 3:
		x = d0[q[0]] | d1[q[1]] | d2[q[2]]
	}
	if x >= badChar {
		return ioerr.New(ioerr.BadBase64Character, "base64.decode")
	}

	if d.i > 1 {
		if err := d.Reserve(2, sink); err != nil {
			return err
		}
		d.Put(byte(x))
		if d.i == 3 {
			d.Put(byte(x >> 8))
		}
	}

	return d.Flush(sink)
}

// Reset discards carried state so the decoder can be reused.
func (d *Base64Decoder) Reset() {
	d.clearQuartet()
	d.ResetBuffer()
}

func (d *Base64Decoder) clearQuartet() {
	d.quartet = [4]byte{}
	d.i = 0
}
