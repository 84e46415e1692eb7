//go:build bench
// +build bench

package record

import (
	"bytes"
	"testing"

	"github.com/ssargent/iostreams/pkg/stream"
)

var benchmarks = []struct {
	name  string
	key   []byte
	value []byte
}{
	{name: "small", key: []byte("block:1"), value: []byte("payload")},
	{name: "medium", key: bytes.Repeat([]byte("k"), 100), value: bytes.Repeat([]byte("v"), 1000)},
	{name: "large", key: bytes.Repeat([]byte("k"), 1000), value: bytes.Repeat([]byte("v"), 100000)},
}

func BenchmarkEncode(b *testing.B) {
	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(bm.key) + len(bm.value)))
			for i := 0; i < b.N; i++ {
				if _, err := Encode(bm.key, bm.value); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecodeValidate(b *testing.B) {
	for _, bm := range benchmarks {
		encoded, err := Encode(bm.key, bm.value)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(encoded)))
			for i := 0; i < b.N; i++ {
				r, err := Decode(encoded)
				if err != nil {
					b.Fatal(err)
				}
				if err := r.Validate(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkWriter_Put(b *testing.B) {
	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			w, err := NewWriter(stream.NewMemoryStream(0))
			if err != nil {
				b.Fatal(err)
			}
			b.SetBytes(int64(HeaderSize + len(bm.key) + len(bm.value)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := w.Put(bm.key, bm.value); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
