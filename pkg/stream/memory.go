package stream

import (
	"github.com/ssargent/iostreams/pkg/transform"
)

// DefaultBlockSize is the block size of a MemoryStream created with size 0.
const DefaultBlockSize = 1 << 20

// MemoryStream is a stream over a list of fixed-size blocks. Growth appends
// whole zeroed blocks, so large streams never need one contiguous
// allocation.
//
// The cursor is kept as a block index and an offset within that block.
type MemoryStream struct {
	blocks    [][]byte
	blockSize uint64
	size      uint64
	capacity  uint64

	index uint64
	rel   uint64
}

// NewMemoryStream creates an empty stream. A blockSize of 0 selects
// DefaultBlockSize.
func NewMemoryStream(blockSize uint64) *MemoryStream {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	return &MemoryStream{blockSize: blockSize}
}

// NewMemoryStreamFrom creates a stream holding block as its only block. The
// block size is len(block) and the stream takes ownership of it.
func NewMemoryStreamFrom(block []byte) *MemoryStream {
	if len(block) == 0 {
		return NewMemoryStream(0)
	}
	n := uint64(len(block))
	return &MemoryStream{
		blocks:    [][]byte{block},
		blockSize: n,
		size:      n,
		capacity:  n,
	}
}

// CreateMemoryStream decodes text through t into a new stream positioned at
// 0. The block size is the decoded size bound, capped at DefaultBlockSize.
func CreateMemoryStream(text string, t transform.Transform) (*MemoryStream, error) {
	var blockSize uint64 = DefaultBlockSize
	if sz, ok := t.(transform.Sizer); ok {
		if n := uint64(sz.RequiredSize(len(text))); n > 0 && n < blockSize {
			blockSize = n
		}
	}

	s := NewMemoryStream(blockSize)
	if err := create(text, t, s); err != nil {
		return nil, err
	}
	s.index, s.rel = 0, 0
	return s, nil
}

func (s *MemoryStream) Size() uint64 {
	return s.size
}

func (s *MemoryStream) Tell() uint64 {
	return s.index*s.blockSize + s.rel
}

// Capacity returns the number of allocated bytes, always a multiple of
// BlockSize.
func (s *MemoryStream) Capacity() uint64 {
	return s.capacity
}

// BlockSize returns the fixed block size.
func (s *MemoryStream) BlockSize() uint64 {
	return s.blockSize
}

// Blocks returns the blocks holding the first Size() bytes, the last one cut
// to its valid length. The slices alias the stream's storage.
func (s *MemoryStream) Blocks() [][]byte {
	out := make([][]byte, 0, s.blocksFor(s.size))
	remaining := s.size
	for _, block := range s.blocks {
		if remaining == 0 {
			break
		}
		n := s.blockSize
		if remaining < n {
			n = remaining
		}
		out = append(out, block[:n])
		remaining -= n
	}
	return out
}

// Reserve appends zeroed blocks until the capacity is at least n.
func (s *MemoryStream) Reserve(n uint64) {
	if s.capacity >= n {
		return
	}
	for required := s.blocksFor(n - s.capacity); required > 0; required-- {
		s.blocks = append(s.blocks, make([]byte, s.blockSize))
	}
	s.capacity = uint64(len(s.blocks)) * s.blockSize
}

func (s *MemoryStream) Seek(offset int64, origin Origin) error {
	target, err := seekTarget("memory.seek", offset, origin, s.Tell(), s.size)
	if err != nil {
		return err
	}
	s.index = target / s.blockSize
	s.rel = target % s.blockSize
	return nil
}

// Resize sets the size. Shrinking releases the blocks past the new size.
// When the cursor was at or past the new size it moves to the last byte of
// the last retained block, which may lie beyond the new size.
func (s *MemoryStream) Resize(n uint64) error {
	if n >= s.size {
		s.Reserve(n)
		s.size = n
		return nil
	}

	keep := s.blocksFor(n)
	if n == 0 {
		s.index, s.rel = 0, 0
	} else if s.Tell() >= n {
		s.index = keep - 1
		s.rel = s.blockSize - 1
	}

	for i := keep; i < uint64(len(s.blocks)); i++ {
		s.blocks[i] = nil
	}
	s.blocks = s.blocks[:keep]
	s.capacity = keep * s.blockSize
	s.size = n
	return nil
}

func (s *MemoryStream) Read(p []byte) (int, error) {
	pos := s.Tell()
	if s.size == 0 || pos >= s.size {
		return 0, nil
	}

	count := uint64(len(p))
	if avail := s.size - pos; count > avail {
		count = avail
	}

	read := 0
	for count > 0 {
		n := uint64(copy(p[read:read+int(count)], s.blocks[s.index][s.rel:]))
		read += int(n)
		count -= n
		s.advance(n)
	}
	return read, nil
}

func (s *MemoryStream) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s.Reserve(s.Tell() + uint64(len(p)))

	written := 0
	for written < len(p) {
		n := uint64(copy(s.blocks[s.index][s.rel:], p[written:]))
		written += int(n)
		s.advance(n)
	}

	if pos := s.Tell(); pos > s.size {
		s.size = pos
	}
	return written, nil
}

// ToString feeds t one block at a time.
func (s *MemoryStream) ToString(t transform.Transform) (string, error) {
	return collectString("memory.tostring", s.size, t, func(sink transform.Sink) error {
		for _, block := range s.Blocks() {
			if err := t.Update(block, sink); err != nil {
				return err
			}
		}
		return nil
	})
}

// advance moves the cursor n bytes forward within the current block,
// stepping to the next block when it fills.
func (s *MemoryStream) advance(n uint64) {
	s.rel += n
	if s.rel >= s.blockSize {
		s.rel = 0
		s.index++
	}
}

// blocksFor returns ceil(n / blockSize).
func (s *MemoryStream) blocksFor(n uint64) uint64 {
	blocks := n / s.blockSize
	if n%s.blockSize != 0 {
		blocks++
	}
	return blocks
}
