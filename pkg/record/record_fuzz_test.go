//go:build fuzz
// +build fuzz

package record

import (
	"bytes"
	"testing"

	"github.com/ssargent/iostreams/pkg/stream"
)

// FuzzRecord_RoundTrip tests encode/decode round-trip with random inputs
func FuzzRecord_RoundTrip(f *testing.F) {
	f.Add([]byte(""), []byte(""))
	f.Add([]byte("key"), []byte("value"))
	f.Add([]byte{0x00, 0x01, 0x02}, []byte{0xFF, 0xFE, 0xFD})

	f.Fuzz(func(t *testing.T, key, value []byte) {
		if len(key) > 10000 || len(value) > 100000 {
			t.Skip("Input too large for fuzz test")
		}

		encoded, err := Encode(key, value)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		r, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if !bytes.Equal(r.Key, key) || !bytes.Equal(r.Value, value) {
			t.Errorf("round trip mismatch: %q/%q", r.Key, r.Value)
		}
	})
}

// FuzzRecord_CorruptionDetection flips one byte and expects a failure
func FuzzRecord_CorruptionDetection(f *testing.F) {
	f.Add([]byte("key"), []byte("value"), uint(0))
	f.Add([]byte("test"), []byte("data"), uint(10))

	f.Fuzz(func(t *testing.T, key, value []byte, pos uint) {
		if len(key) > 1000 || len(value) > 10000 {
			t.Skip("Input too large for fuzz test")
		}
		encoded, err := Encode(key, value)
		if err != nil {
			t.Skip("Encode failed")
		}
		if int(pos) >= len(encoded) {
			t.Skip("Corruption position beyond data length")
		}
		encoded[pos] ^= 0xFF

		r, err := Decode(encoded)
		if err != nil {
			return
		}
		if r.Validate() == nil {
			t.Errorf("corruption at %d not detected", pos)
		}
	})
}

// FuzzReader_Arbitrary feeds random bytes to the log reader
func FuzzReader_Arbitrary(f *testing.F) {
	f.Add([]byte{})
	f.Add(make([]byte, 19))
	f.Add(make([]byte, 20))

	f.Fuzz(func(t *testing.T, data []byte) {
		r, err := NewReader(stream.NewArrayStreamFrom(data), 0)
		if err != nil {
			t.Fatal(err)
		}
		it := r.Iterator()
		for it.Next() {
		}
	})
}
