// Package record frames key/value payloads with a CRC-checked header and
// appends them to streams.
//
// # Record Format
//
//	[CRC32(4)][KeySize(4)][ValueSize(4)][Timestamp(8)][Key][Value]
//
// All integers are little-endian. The CRC32 (IEEE) covers every field after
// itself, so damage anywhere in the header or payload is detected by
// Validate. The encoded size of a record is HeaderSize + len(Key) +
// len(Value).
package record

import (
	"encoding/binary"
	"hash/crc32"
	"math"
	"time"

	"github.com/cockroachdb/errors"
)

// HeaderSize is the fixed length of the record header.
const HeaderSize = 20

var (
	ErrCorruption = &Error{"data corruption detected"}
	ErrTooLarge   = &Error{"key or value exceeds 4 GiB"}
	ErrTruncated  = &Error{"record is truncated"}
)

// Error is a record framing error.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Record is a decoded key/value entry.
type Record struct {
	CRC32     uint32
	KeySize   uint32
	ValueSize uint32
	Timestamp uint64 // Unix nanoseconds
	Key       []byte
	Value     []byte
}

// New creates a record stamped with the current time. The CRC is filled in
// by Encode.
func New(key, value []byte) (*Record, error) {
	if uint64(len(key)) > math.MaxUint32 || uint64(len(value)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}
	return &Record{
		KeySize:   uint32(len(key)),
		ValueSize: uint32(len(value)),
		Timestamp: uint64(time.Now().UnixNano()),
		Key:       key,
		Value:     value,
	}, nil
}

// Size returns the encoded length.
func (r *Record) Size() int {
	return HeaderSize + len(r.Key) + len(r.Value)
}

// Validate checks the stored CRC against the record contents.
func (r *Record) Validate() error {
	if sum := r.checksum(); sum != r.CRC32 {
		return errors.Wrapf(ErrCorruption, "crc32 mismatch: stored %08x, computed %08x", r.CRC32, sum)
	}
	return nil
}

func (r *Record) checksum() uint32 {
	var hdr [HeaderSize - 4]byte
	binary.LittleEndian.PutUint32(hdr[0:], r.KeySize)
	binary.LittleEndian.PutUint32(hdr[4:], r.ValueSize)
	binary.LittleEndian.PutUint64(hdr[8:], r.Timestamp)

	crc := crc32.Update(0, crc32.IEEETable, hdr[:])
	crc = crc32.Update(crc, crc32.IEEETable, r.Key)
	return crc32.Update(crc, crc32.IEEETable, r.Value)
}

// Encode frames key and value as a new record.
func Encode(key, value []byte) ([]byte, error) {
	r, err := New(key, value)
	if err != nil {
		return nil, err
	}
	return r.Marshal(), nil
}

// Marshal computes the CRC and returns the encoded record.
func (r *Record) Marshal() []byte {
	r.CRC32 = r.checksum()

	buf := make([]byte, r.Size())
	binary.LittleEndian.PutUint32(buf[0:], r.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], r.KeySize)
	binary.LittleEndian.PutUint32(buf[8:], r.ValueSize)
	binary.LittleEndian.PutUint64(buf[12:], r.Timestamp)
	copy(buf[HeaderSize:], r.Key)
	copy(buf[HeaderSize+len(r.Key):], r.Value)
	return buf
}

// Decode parses an encoded record. Key and Value alias data. The CRC is not
// checked; call Validate.
func Decode(data []byte) (*Record, error) {
	if len(data) < HeaderSize {
		return nil, errors.Wrapf(ErrTruncated, "%d bytes, header needs %d", len(data), HeaderSize)
	}

	r := parseHeader(data)
	end := uint64(HeaderSize) + uint64(r.KeySize) + uint64(r.ValueSize)
	if uint64(len(data)) < end {
		return nil, errors.Wrapf(ErrTruncated, "%d bytes, record needs %d", len(data), end)
	}

	keyEnd := HeaderSize + int(r.KeySize)
	r.Key = data[HeaderSize:keyEnd]
	r.Value = data[keyEnd:int(end)]
	return r, nil
}

func parseHeader(hdr []byte) *Record {
	return &Record{
		CRC32:     binary.LittleEndian.Uint32(hdr[0:4]),
		KeySize:   binary.LittleEndian.Uint32(hdr[4:8]),
		ValueSize: binary.LittleEndian.Uint32(hdr[8:12]),
		Timestamp: binary.LittleEndian.Uint64(hdr[12:20]),
	}
}
