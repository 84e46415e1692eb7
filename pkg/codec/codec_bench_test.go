//go:build bench
// +build bench

package codec

import (
	"bytes"
	"testing"

	"github.com/ssargent/iostreams/pkg/transform"
)

func BenchmarkEncoders(b *testing.B) {
	sizes := []struct {
		name string
		data []byte
	}{
		{name: "small", data: bytes.Repeat([]byte("v"), 100)},
		{name: "medium", data: bytes.Repeat([]byte("value "), 10000)},
		{name: "large", data: bytes.Repeat([]byte("value "), 500000)},
	}

	for _, name := range Names() {
		for _, size := range sizes {
			b.Run(name+"/"+size.name, func(b *testing.B) {
				enc, err := New(name, Encode)
				if err != nil {
					b.Fatal(err)
				}
				b.SetBytes(int64(len(size.data)))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					enc.Reset()
					if err := enc.Update(size.data, transform.Discard); err != nil {
						b.Fatal(err)
					}
					if err := enc.Final(transform.Discard); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkBase64Decoder(b *testing.B) {
	encoded, err := transform.Apply(NewBase64Encoder(), bytes.Repeat(sampleData(), 4096))
	if err != nil {
		b.Fatal(err)
	}

	dec := NewBase64Decoder()
	b.SetBytes(int64(len(encoded)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec.Reset()
		if err := dec.Update(encoded, transform.Discard); err != nil {
			b.Fatal(err)
		}
		if err := dec.Final(transform.Discard); err != nil {
			b.Fatal(err)
		}
	}
}
