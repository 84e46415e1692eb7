package stream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/iostreams/pkg/codec"
	"github.com/ssargent/iostreams/pkg/ioerr"
)

func TestMemoryStream_DefaultBlockSize(t *testing.T) {
	assert.Equal(t, uint64(DefaultBlockSize), NewMemoryStream(0).BlockSize())
	assert.Equal(t, uint64(200), NewMemoryStream(200).BlockSize())
}

func TestMemoryStream_Capacity(t *testing.T) {
	s := NewMemoryStream(3)
	assert.Equal(t, uint64(0), s.Capacity())

	s.Reserve(10)
	assert.Equal(t, uint64(12), s.Capacity())

	s.Reserve(9)
	assert.Equal(t, uint64(12), s.Capacity())

	s.Reserve(13)
	assert.Equal(t, uint64(15), s.Capacity())

	assert.Equal(t, uint64(0), s.Size(), "reserve must not change the size")
}

func TestMemoryStream_SeekEveryOffset(t *testing.T) {
	s := NewMemoryStream(3)
	data := bytes.Repeat(testData, 3)
	_, err := s.Write(data)
	require.NoError(t, err)

	for o := 0; o <= len(data); o++ {
		require.NoError(t, s.Seek(int64(o), Begin))
		assert.Equal(t, uint64(o), s.Tell())

		buf := make([]byte, 1)
		n, err := s.Read(buf)
		require.NoError(t, err)
		if o < len(data) {
			require.Equal(t, 1, n)
			assert.Equal(t, data[o], buf[0], "byte at offset %d", o)
		} else {
			assert.Equal(t, 0, n)
		}
	}
}

func TestMemoryStream_WriteAcrossBlocks(t *testing.T) {
	s := NewMemoryStream(4)
	_, err := s.Write([]byte("hello, "))
	require.NoError(t, err)
	_, err = s.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, uint64(12), s.Size())
	assert.Equal(t, uint64(12), s.Capacity())
	assert.Equal(t, [][]byte{[]byte("hell"), []byte("o, w"), []byte("orld")}, s.Blocks())

	_, err = s.Write([]byte("!"))
	require.NoError(t, err)
	assert.Equal(t, uint64(16), s.Capacity())

	text, err := ReadAllString(s)
	require.NoError(t, err)
	assert.Equal(t, "hello, world!", text)
}

func TestMemoryStream_ResizeClampsToLastSlot(t *testing.T) {
	s := NewMemoryStream(3)
	_, err := s.Write(testData)
	require.NoError(t, err)

	// 4 bytes keep two blocks; the cursor lands on offset 5.
	require.NoError(t, s.Resize(4))
	assert.Equal(t, uint64(4), s.Size())
	assert.Equal(t, uint64(6), s.Capacity())
	assert.Equal(t, uint64(5), s.Tell())

	n, err := s.Read(make([]byte, 4))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.Seek(0, End))
	assert.Equal(t, uint64(4), s.Tell())
}

func TestMemoryStream_ResizeKeepsCursorInRange(t *testing.T) {
	s := NewMemoryStream(3)
	_, err := s.Write(testData)
	require.NoError(t, err)
	require.NoError(t, s.Seek(2, Begin))

	require.NoError(t, s.Resize(7))
	assert.Equal(t, uint64(2), s.Tell())
	assert.Equal(t, uint64(9), s.Capacity())
	assert.Len(t, s.Blocks(), 3)

	require.NoError(t, s.Resize(0))
	assert.Equal(t, uint64(0), s.Capacity())
	assert.Empty(t, s.Blocks())
	assert.Equal(t, uint64(0), s.Tell())

	_, err = s.Write([]byte{9, 9})
	require.NoError(t, err)
	all, err := ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, all)
}

func TestMemoryStream_ToStringIgnoresReservedBlocks(t *testing.T) {
	s := NewMemoryStream(3)
	_, err := s.Write(testData)
	require.NoError(t, err)
	s.Reserve(30)

	out, err := s.ToString(codec.NewHexEncoder())
	require.NoError(t, err)
	assert.Equal(t, "0102030405060708090a0b0c0d", out)
}

func TestNewMemoryStreamFrom(t *testing.T) {
	block := []byte("abcdef")
	s := NewMemoryStreamFrom(block)

	assert.Equal(t, uint64(6), s.BlockSize())
	assert.Equal(t, uint64(6), s.Size())
	assert.Equal(t, uint64(0), s.Tell())

	require.NoError(t, s.Seek(0, End))
	_, err := s.Write([]byte("gh"))
	require.NoError(t, err)
	assert.Equal(t, uint64(12), s.Capacity())

	text, err := ReadAllString(s)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", text)

	empty := NewMemoryStreamFrom(nil)
	assert.Equal(t, uint64(DefaultBlockSize), empty.BlockSize())
	assert.Equal(t, uint64(0), empty.Size())
}

func TestCreateMemoryStream(t *testing.T) {
	s, err := CreateMemoryStream("AQIDBAUGBwgJCgsMDQ==", codec.NewBase64Decoder())
	require.NoError(t, err)

	assert.Equal(t, uint64(15), s.BlockSize())
	assert.Equal(t, uint64(0), s.Tell())

	all, err := ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, testData, all)

	_, err = CreateMemoryStream("zz", codec.NewHexDecoder())
	assert.ErrorIs(t, err, ioerr.ErrBadHexCharacter)

	empty, err := CreateMemoryStream("", codec.NewHexDecoder())
	require.NoError(t, err)
	assert.Equal(t, uint64(DefaultBlockSize), empty.BlockSize())
	assert.Equal(t, uint64(0), empty.Size())
}
