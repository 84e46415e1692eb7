package codec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssargent/iostreams/pkg/transform"
)

// sampleData is every byte value, starting at 10 and wrapping around.
func sampleData() []byte {
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(10 + i)
	}
	return data
}

// splitRandom cuts data into chunks of 1..maxChunk bytes.
func splitRandom(rng *rand.Rand, data []byte, maxChunk int) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := 1 + rng.Intn(maxChunk)
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

// runChunked feeds chunks through tr and returns the collected output.
func runChunked(t *testing.T, tr transform.Transform, chunks [][]byte) []byte {
	t.Helper()

	var out []byte
	sink := transform.Collect(&out)
	for _, c := range chunks {
		require.NoError(t, tr.Update(c, sink))
	}
	require.NoError(t, tr.Final(sink))
	return out
}
