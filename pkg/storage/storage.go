// Package storage persists memory streams in a pebble database, one key per
// block, so a stream is stored and restored without ever being flattened
// into a single buffer.
//
// Every stored stream is identified by a KSUID. Keys are laid out as
//
//	<id:20>'h'            stream header (size, block size, block count)
//	<id:20>'b'<index:4>   block contents, index big-endian
//
// and every value is framed by package record, so damaged values are
// reported as record.ErrCorruption.
package storage

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"github.com/sirupsen/logrus"

	"github.com/ssargent/iostreams/pkg/record"
	"github.com/ssargent/iostreams/pkg/stream"
)

const (
	headerTag = 'h'
	blockTag  = 'b'

	idSize    = 20
	headerLen = 20
)

var (
	ErrNotFound   = errors.New("stream not found")
	ErrCorruption = record.ErrCorruption
)

// Info describes a stored stream.
type Info struct {
	ID        ksuid.KSUID
	Size      uint64
	BlockSize uint64
	Blocks    uint32
}

// Options configures Open.
type Options struct {
	// Sync makes every Put and Delete durable before returning.
	Sync bool
	// Logger receives put/get/delete events. Nil discards them.
	Logger logrus.FieldLogger
}

// Store is a pebble backed stream store.
type Store struct {
	db     *pebble.DB
	write  *pebble.WriteOptions
	logger logrus.FieldLogger
}

// Open opens or creates a store in dir.
func Open(dir string, opts Options) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open store %s", dir)
	}

	s := &Store{db: db, write: pebble.NoSync, logger: opts.Logger}
	if opts.Sync {
		s.write = pebble.Sync
	}
	if s.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.logger = l
	}
	return s, nil
}

// Put stores the contents of ms under a new id. The stream cursor is not
// used or moved.
func (s *Store) Put(ms *stream.MemoryStream) (ksuid.KSUID, error) {
	id := ksuid.New()
	blocks := ms.Blocks()

	batch := s.db.NewBatch()
	defer batch.Close()

	hdr := make([]byte, headerLen)
	binary.BigEndian.PutUint64(hdr[0:], ms.Size())
	binary.BigEndian.PutUint64(hdr[8:], ms.BlockSize())
	binary.BigEndian.PutUint32(hdr[16:], uint32(len(blocks)))
	if err := setFramed(batch, headerKey(id), hdr); err != nil {
		return ksuid.Nil, err
	}

	for i, block := range blocks {
		if err := setFramed(batch, blockKey(id, uint32(i)), block); err != nil {
			return ksuid.Nil, err
		}
	}

	if err := batch.Commit(s.write); err != nil {
		return ksuid.Nil, errors.Wrapf(err, "commit stream %s", id)
	}

	s.logger.WithFields(logrus.Fields{
		"id":     id.String(),
		"size":   ms.Size(),
		"blocks": len(blocks),
	}).Info("stream stored")
	return id, nil
}

// Stat returns the header of a stored stream.
func (s *Store) Stat(id ksuid.KSUID) (Info, error) {
	hdr, err := s.getFramed(headerKey(id))
	if err != nil {
		return Info{}, err
	}
	if len(hdr) != headerLen {
		return Info{}, errors.Wrapf(ErrCorruption, "stream %s: header is %d bytes", id, len(hdr))
	}

	info := Info{
		ID:        id,
		Size:      binary.BigEndian.Uint64(hdr[0:]),
		BlockSize: binary.BigEndian.Uint64(hdr[8:]),
		Blocks:    binary.BigEndian.Uint32(hdr[16:]),
	}
	if info.BlockSize == 0 {
		return Info{}, errors.Wrapf(ErrCorruption, "stream %s: zero block size", id)
	}
	return info, nil
}

// Get rebuilds a stored stream with its original block size. The returned
// stream is positioned at 0.
func (s *Store) Get(id ksuid.KSUID) (*stream.MemoryStream, error) {
	info, err := s.Stat(id)
	if err != nil {
		return nil, err
	}

	ms := stream.NewMemoryStream(info.BlockSize)
	ms.Reserve(info.Size)
	for i := uint32(0); i < info.Blocks; i++ {
		block, err := s.getFramed(blockKey(id, i))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, errors.Wrapf(ErrCorruption, "stream %s: block %d missing", id, i)
			}
			return nil, err
		}
		if _, err := ms.Write(block); err != nil {
			return nil, err
		}
	}

	if ms.Size() != info.Size {
		return nil, errors.Wrapf(ErrCorruption, "stream %s: restored %d of %d bytes", id, ms.Size(), info.Size)
	}
	if err := ms.Seek(0, stream.Begin); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"id": id.String(), "size": info.Size}).Debug("stream loaded")
	return ms, nil
}

// Delete removes a stored stream. Deleting an unknown id is not an error.
func (s *Store) Delete(id ksuid.KSUID) error {
	start := id.Bytes()
	end := append(id.Bytes(), 0xFF)
	if err := s.db.DeleteRange(start, end, s.write); err != nil {
		return errors.Wrapf(err, "delete stream %s", id)
	}
	s.logger.WithField("id", id.String()).Info("stream deleted")
	return nil
}

// List returns the ids of all stored streams in creation order.
func (s *Store) List() ([]ksuid.KSUID, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "list streams")
	}
	defer iter.Close()

	var ids []ksuid.KSUID
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) != idSize+1 || key[idSize] != headerTag {
			continue
		}
		id, err := ksuid.FromBytes(key[:idSize])
		if err != nil {
			return nil, errors.Wrapf(err, "parse key %x", key)
		}
		ids = append(ids, id)
	}
	return ids, iter.Error()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func headerKey(id ksuid.KSUID) []byte {
	return append(id.Bytes(), headerTag)
}

func blockKey(id ksuid.KSUID, index uint32) []byte {
	key := append(id.Bytes(), blockTag, 0, 0, 0, 0)
	binary.BigEndian.PutUint32(key[idSize+1:], index)
	return key
}

func setFramed(batch *pebble.Batch, key, value []byte) error {
	framed, err := record.Encode(key, value)
	if err != nil {
		return err
	}
	return batch.Set(key, framed, nil)
}

// getFramed reads key, checks its frame and returns a copy of the payload.
func (s *Store) getFramed(key []byte) ([]byte, error) {
	data, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "key %x", key)
		}
		return nil, errors.Wrapf(err, "get key %x", key)
	}
	defer closer.Close()

	r, err := record.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruption, "key %x: %v", key, err)
	}
	if err := r.Validate(); err != nil {
		return nil, errors.Wrapf(err, "key %x", key)
	}
	if string(r.Key) != string(key) {
		return nil, errors.Wrapf(ErrCorruption, "key %x holds value for %x", key, r.Key)
	}
	return append([]byte(nil), r.Value...), nil
}
