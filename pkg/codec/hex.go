package codec

import (
	"github.com/ssargent/iostreams/pkg/ioerr"
	"github.com/ssargent/iostreams/pkg/transform"
)

const lowercaseHex = "0123456789abcdef"

// invalidNibble marks non-hex characters in hexDigits.
const invalidNibble = 0xFF

var hexDigits [256]byte

func init() {
	for i := range hexDigits {
		hexDigits[i] = invalidNibble
	}
	for i := 0; i < 10; i++ {
		hexDigits['0'+i] = byte(i)
	}
	for i := 0; i < 6; i++ {
		hexDigits['a'+i] = byte(10 + i)
		hexDigits['A'+i] = byte(10 + i)
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// HexEncoder encodes bytes as lowercase hexadecimal text.
type HexEncoder struct {
	transform.Buffered
}

// NewHexEncoder creates a hex encoder.
func NewHexEncoder(opts ...Option) *HexEncoder {
	config := applyOptions(opts...)
	return &HexEncoder{Buffered: transform.NewBuffered(config.BufferSize)}
}

// RequiredSize returns 2n.
func (e *HexEncoder) RequiredSize(n int) int {
	return n * 2
}

// Update writes two characters per input byte, high nibble first.
func (e *HexEncoder) Update(p []byte, sink transform.Sink) error {
	if err := e.BeginUpdate("hex.encode"); err != nil {
		return err
	}

	for _, c := range p {
		if err := e.Reserve(2, sink); err != nil {
			return err
		}
		e.Put(lowercaseHex[c>>4])
		e.Put(lowercaseHex[c&0x0F])
	}

	return nil
}

// Final flushes buffered output.
func (e *HexEncoder) Final(sink transform.Sink) error {
	if err := e.BeginFinal("hex.encode"); err != nil {
		return err
	}
	return e.Flush(sink)
}

// Reset makes the encoder reusable after Final.
func (e *HexEncoder) Reset() {
	e.ResetBuffer()
}

// HexDecoder decodes hexadecimal text of either case. ASCII whitespace
// between digits is ignored.
//
// A digit left without its pair when Final is called is dropped without an
// error.
type HexDecoder struct {
	transform.Buffered
	high    byte
	pending bool
}

// NewHexDecoder creates a hex decoder.
func NewHexDecoder(opts ...Option) *HexDecoder {
	config := applyOptions(opts...)
	return &HexDecoder{Buffered: transform.NewBuffered(config.BufferSize)}
}

// RequiredSize returns n/2.
func (d *HexDecoder) RequiredSize(n int) int {
	return n / 2
}

// Update pairs digits in order and emits one byte per pair. An unpaired
// trailing digit is carried into the next call.
func (d *HexDecoder) Update(p []byte, sink transform.Sink) error {
	if err := d.BeginUpdate("hex.decode"); err != nil {
		return err
	}

	for _, c := range p {
		if isSpace(c) {
			continue
		}

		v := hexDigits[c]
		if v == invalidNibble {
			return ioerr.New(ioerr.BadHexCharacter, "hex.decode")
		}

		if !d.pending {
			d.high = v
			d.pending = true
			continue
		}

		if err := d.PutByte(d.high<<4|v, sink); err != nil {
			return err
		}
		d.pending = false
	}

	return nil
}

// Final flushes buffered output and discards any pending digit.
func (d *HexDecoder) Final(sink transform.Sink) error {
	if err := d.BeginFinal("hex.decode"); err != nil {
		return err
	}
	d.high, d.pending = 0, false
	return d.Flush(sink)
}

// Reset makes the decoder reusable after Final.
func (d *HexDecoder) Reset() {
	d.high, d.pending = 0, false
	d.ResetBuffer()
}
