package transform

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/iostreams/pkg/ioerr"
)

// upperTransform upper-cases ASCII letters through a small Buffered.
type upperTransform struct {
	Buffered
}

func newUpperTransform(size int) *upperTransform {
	return &upperTransform{Buffered: NewBuffered(size)}
}

func (u *upperTransform) Update(p []byte, sink Sink) error {
	if err := u.BeginUpdate("upper.update"); err != nil {
		return err
	}
	for _, c := range p {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if err := u.PutByte(c, sink); err != nil {
			return err
		}
	}
	return nil
}

func (u *upperTransform) Final(sink Sink) error {
	if err := u.BeginFinal("upper.final"); err != nil {
		return err
	}
	return u.Flush(sink)
}

func (u *upperTransform) RequiredSize(n int) int { return n }

func TestBuffered_FlushOnlyWhenFull(t *testing.T) {
	u := newUpperTransform(4)

	var calls [][]byte
	sink := func(p []byte) error {
		calls = append(calls, append([]byte(nil), p...))
		return nil
	}

	require.NoError(t, u.Update([]byte("abc"), sink))
	assert.Empty(t, calls, "nothing should be flushed before the buffer fills")
	assert.Equal(t, 3, u.Len())

	require.NoError(t, u.Update([]byte("defgh"), sink))
	assert.Equal(t, [][]byte{[]byte("ABCD")}, calls)
	assert.Equal(t, 4, u.Len())

	require.NoError(t, u.Final(sink))
	assert.Equal(t, "ABCDEFGH", string(bytes.Join(calls, nil)))
	assert.Equal(t, 0, u.Len())
}

func TestBuffered_FlushEmptyDoesNotCallSink(t *testing.T) {
	b := NewBuffered(8)
	called := false

	err := b.Flush(func(p []byte) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.False(t, called)
}

func TestBuffered_DefaultSize(t *testing.T) {
	b := NewBuffered(0)
	assert.Equal(t, DefaultBufferSize, b.Cap())
}

func TestBuffered_MinimumSize(t *testing.T) {
	for _, size := range []int{1, 2, 3} {
		b := NewBuffered(size)
		assert.Equal(t, MinBufferSize, b.Cap())
		require.NoError(t, b.Reserve(MinBufferSize, Discard))
	}
	b5 := NewBuffered(5)
	assert.Equal(t, 5, b5.Cap())
}

func TestBuffered_ReserveLargerThanCapacity(t *testing.T) {
	b := NewBuffered(MinBufferSize)
	err := b.Reserve(MinBufferSize+1, Discard)
	assert.ErrorIs(t, err, ioerr.ErrBufferTooSmall)
}

func TestBuffered_FlushNilSink(t *testing.T) {
	b := NewBuffered(8)
	require.NoError(t, b.Write([]byte("abc"), Discard))

	err := b.Flush(nil)
	assert.ErrorIs(t, err, ioerr.ErrBadSink)
	assert.Equal(t, 3, b.Len(), "buffered bytes must survive a nil sink")

	var out []byte
	require.NoError(t, b.Flush(Collect(&out)))
	assert.Equal(t, "abc", string(out))
}

func TestBuffered_Write(t *testing.T) {
	b := NewBuffered(3)
	var out []byte

	require.NoError(t, b.Write([]byte("0123456789"), Collect(&out)))
	require.NoError(t, b.Flush(Collect(&out)))

	assert.Equal(t, "0123456789", string(out))
}

func TestBuffered_SinkError(t *testing.T) {
	u := newUpperTransform(MinBufferSize)
	boom := errors.New("boom")

	err := u.Update([]byte("abcdef"), func(p []byte) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestState_Lifecycle(t *testing.T) {
	u := newUpperTransform(8)
	assert.Equal(t, Idle, u.Phase())

	require.NoError(t, u.Update([]byte("a"), Discard))
	assert.Equal(t, Updating, u.Phase())

	require.NoError(t, u.Final(Discard))
	assert.Equal(t, Finalized, u.Phase())

	err := u.Update([]byte("a"), Discard)
	assert.ErrorIs(t, err, ioerr.ErrTransformFinalized)

	err = u.Final(Discard)
	assert.ErrorIs(t, err, ioerr.ErrTransformFinalized)

	u.ResetBuffer()
	assert.Equal(t, Idle, u.Phase())
	require.NoError(t, u.Update([]byte("a"), Discard))
}

func TestApply(t *testing.T) {
	out, err := Apply(newUpperTransform(2), []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "HELLO WORLD", string(out))
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "updating", Updating.String())
	assert.Equal(t, "finalized", Finalized.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
