package codec

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/iostreams/pkg/ioerr"
	"github.com/ssargent/iostreams/pkg/transform"
)

const sampleBase64 = "CgsMDQ4PEBESExQVFhcYGRobHB0eHyAhIiMkJSYnKCkqKywtLi8wMTIzNDU2Nzg5Ojs8PT4/QEFCQ0RFRkdISUpLTE1OT1BRUlNUVVZXWFlaW1xdXl9gYWJjZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXp7fH1+f4CBgoOEhYaHiImKi4yNjo+QkZKTlJWWl5iZmpucnZ6foKGio6SlpqeoqaqrrK2ur7CxsrO0tba3uLm6u7y9vr/AwcLDxMXGx8jJysvMzc7P0NHS09TV1tfY2drb3N3e3+Dh4uPk5ebn6Onq6+zt7u/w8fLz9PX29/j5+vv8/f7/AAECAwQFBgcICQ=="

const sampleBase64Lines = "CgsMDQ4PEBESExQVFhcYGRobHB0eHyAhIiMkJSYnKCkqKywtLi8wMTIzNDU2Nzg5Ojs8PT4/QEFC\r\n" +
	"Q0RFRkdISUpLTE1OT1BRUlNUVVZXWFlaW1xdXl9gYWJjZGVmZ2hpamtsbW5vcHFyc3R1dnd4eXp7\r\n" +
	"fH1+f4CBgoOEhYaHiImKi4yNjo+QkZKTlJWWl5iZmpucnZ6foKGio6SlpqeoqaqrrK2ur7CxsrO0\r\n" +
	"tba3uLm6u7y9vr/AwcLDxMXGx8jJysvMzc7P0NHS09TV1tfY2drb3N3e3+Dh4uPk5ebn6Onq6+zt\r\n" +
	"7u/w8fLz9PX29/j5+vv8/f7/AAECAwQFBgcICQ=="

func TestBase64Encoder_Vectors(t *testing.T) {
	testCases := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "empty", input: nil, expected: ""},
		{name: "one byte", input: []byte("a"), expected: "YQ=="},
		{name: "two bytes", input: []byte("ab"), expected: "YWI="},
		{name: "three bytes", input: []byte("abc"), expected: "YWJj"},
		{name: "four bytes", input: []byte("abcd"), expected: "YWJjZA=="},
		{name: "thirteen bytes", input: []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}, expected: "AQIDBAUGBwgJCgsMDQ=="},
		{name: "every byte value", input: sampleData(), expected: sampleBase64},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := transform.Apply(NewBase64Encoder(), tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(out))

			back, err := transform.Apply(NewBase64Decoder(), out)
			require.NoError(t, err)
			assert.Equal(t, string(tc.input), string(back))
		})
	}
}

func TestBase64_ChunkingDoesNotChangeOutput(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := sampleData()

	for i := 0; i < 50; i++ {
		encoded := runChunked(t, NewBase64Encoder(WithBufferSize(7)), splitRandom(rng, data, 10))
		assert.Equal(t, sampleBase64, string(encoded))

		decoded := runChunked(t, NewBase64Decoder(WithBufferSize(5)), splitRandom(rng, []byte(sampleBase64), 10))
		assert.Equal(t, data, decoded)
	}
}

func TestBase64Decoder_IgnoresLineBreaks(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	decoded := runChunked(t, NewBase64Decoder(), splitRandom(rng, []byte(sampleBase64Lines), 10))
	assert.Equal(t, sampleData(), decoded)
}

func TestBase64Decoder_Final(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []byte
	}{
		{name: "one pending character", input: "YWJjY", expected: []byte("abc")},
		{name: "two pending characters", input: "YWJjZA", expected: []byte("abcd")},
		{name: "three pending characters", input: "YWJjZGU", expected: []byte("abcde")},
		{name: "nothing pending", input: "YWJj", expected: []byte("abc")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := transform.Apply(NewBase64Decoder(), []byte(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestBase64Decoder_PaddingSplitAcrossCalls(t *testing.T) {
	d := NewBase64Decoder()
	out := runChunked(t, d, [][]byte{[]byte("YQ="), []byte("=")})
	assert.Equal(t, "a", string(out))
}

func TestBase64Decoder_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "invalid character", input: "YW*j"},
		{name: "padding in the middle", input: "YQ==YQ=="},
		{name: "space", input: "YW Jj"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := transform.Apply(NewBase64Decoder(), []byte(tc.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ioerr.ErrBadBase64Character)
		})
	}

	t.Run("invalid pending character", func(t *testing.T) {
		_, err := transform.Apply(NewBase64Decoder(), []byte("YW*"))
		assert.ErrorIs(t, err, ioerr.ErrBadBase64Character)
	})

	t.Run("padding carried into final", func(t *testing.T) {
		// The trailing line break keeps the second '=' from being
		// stripped, so it reaches Final as a pending character.
		d := NewBase64Decoder()
		require.NoError(t, d.Update([]byte("YQ="), transform.Discard))
		require.NoError(t, d.Update([]byte("=\n"), transform.Discard))

		err := d.Final(transform.Discard)
		assert.ErrorIs(t, err, ioerr.ErrBadBase64Character)
	})
}

func TestBase64_RequiredSize(t *testing.T) {
	enc := NewBase64Encoder()
	assert.Equal(t, 0, enc.RequiredSize(0))
	assert.Equal(t, 4, enc.RequiredSize(1))
	assert.Equal(t, 4, enc.RequiredSize(3))
	assert.Equal(t, 8, enc.RequiredSize(4))
	assert.Equal(t, 344, enc.RequiredSize(256))

	dec := NewBase64Decoder()
	assert.Equal(t, 0, dec.RequiredSize(3))
	assert.Equal(t, 3, dec.RequiredSize(4))
	assert.Equal(t, 258, dec.RequiredSize(344))
}

func TestBase64_Lifecycle(t *testing.T) {
	enc := NewBase64Encoder()

	out, err := transform.Apply(enc, []byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, "YWI=", string(out))

	err = enc.Update([]byte("c"), transform.Discard)
	assert.ErrorIs(t, err, ioerr.ErrTransformFinalized)

	enc.Reset()
	out, err = transform.Apply(enc, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "YWJj", string(out))
}

func TestBase64Encoder_NoLineBreaks(t *testing.T) {
	out, err := transform.Apply(NewBase64Encoder(), []byte(strings.Repeat("x", 1000)))
	require.NoError(t, err)
	assert.NotContains(t, string(out), "\n")
	assert.Len(t, out, 1336)
}
