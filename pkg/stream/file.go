package stream

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/iostreams/pkg/ioerr"
	"github.com/ssargent/iostreams/pkg/transform"
)

// FileAccess selects how an opened file may be used.
type FileAccess int

const (
	AccessNone FileAccess = iota
	AccessRead
	AccessWrite
	AccessReadWrite
)

// FileMode selects what OpenFile does when the file does or does not exist.
type FileMode int

const (
	ModeNone FileMode = iota
	// CreateNew creates the file and fails if it exists.
	CreateNew
	// CreateAlways creates the file, truncating an existing one.
	CreateAlways
	// OpenExisting opens the file and fails if it does not exist.
	OpenExisting
	// OpenAlways opens the file, creating it if needed.
	OpenAlways
	// TruncateExisting opens an existing file and truncates it.
	TruncateExisting
)

// FileShare holds the permission bits given to files OpenFile creates. Zero
// selects 0o666 before the umask.
type FileShare os.FileMode

// fileChunkSize is the read size ToString uses.
const fileChunkSize = 4 * 1024

// FileStream is a stream over an operating system file. Every operation
// after Close fails with ioerr.ErrStreamClosed.
type FileStream struct {
	f         *os.File
	path      string
	access    FileAccess
	mode      FileMode
	share     FileShare
	autoFlush bool
}

// OpenFile opens path with the given access, creation mode and permissions.
func OpenFile(path string, access FileAccess, mode FileMode, share FileShare) (*FileStream, error) {
	flag, err := openFlags(access, mode)
	if err != nil {
		return nil, err
	}

	perm := os.FileMode(share)
	if perm == 0 {
		perm = 0o666
	}

	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, ioerr.Wrap(ioerr.BadFile, "file.open", errors.Wrapf(err, "open %s", path))
	}

	return &FileStream{
		f:      f,
		path:   path,
		access: access,
		mode:   mode,
		share:  share,
	}, nil
}

// NewFileStream adopts an already open file. The stream closes it on Close.
func NewFileStream(f *os.File) (*FileStream, error) {
	if f == nil {
		return nil, ioerr.New(ioerr.BadFileDescriptor, "file.create")
	}
	return &FileStream{f: f, path: f.Name()}, nil
}

func openFlags(access FileAccess, mode FileMode) (int, error) {
	var flag int
	switch access {
	case AccessRead:
		flag = os.O_RDONLY
	case AccessWrite:
		flag = os.O_WRONLY
	case AccessReadWrite:
		flag = os.O_RDWR
	default:
		return 0, ioerr.New(ioerr.BadFileAccessValue, "file.open")
	}

	switch mode {
	case CreateNew:
		flag |= os.O_CREATE | os.O_EXCL
	case CreateAlways:
		flag |= os.O_CREATE | os.O_TRUNC
	case OpenExisting:
	case OpenAlways:
		flag |= os.O_CREATE
	case TruncateExisting:
		flag |= os.O_TRUNC
	default:
		return 0, ioerr.New(ioerr.BadFileModeValue, "file.open")
	}
	return flag, nil
}

func (s *FileStream) Path() string       { return s.path }
func (s *FileStream) Access() FileAccess { return s.access }
func (s *FileStream) Mode() FileMode     { return s.mode }
func (s *FileStream) Share() FileShare   { return s.share }
func (s *FileStream) AutoFlush() bool    { return s.autoFlush }
func (s *FileStream) Closed() bool       { return s.f == nil }

// SetAutoFlush makes every Write sync the file to stable storage.
func (s *FileStream) SetAutoFlush(v bool) error {
	if s.f == nil {
		return ioerr.New(ioerr.StreamClosed, "file.autoflush")
	}
	s.autoFlush = v
	return nil
}

// Close releases the file. Closing twice is a no-op.
func (s *FileStream) Close() error {
	if s.f == nil {
		return nil
	}
	f := s.f
	s.f = nil
	if err := f.Close(); err != nil {
		return ioerr.Wrap(ioerr.BadFile, "file.close", errors.Wrapf(err, "close %s", s.path))
	}
	return nil
}

// Size returns the file length, or 0 when it cannot be determined.
func (s *FileStream) Size() uint64 {
	if s.f == nil {
		return 0
	}
	info, err := s.f.Stat()
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}

// Tell returns the file offset, or 0 when it cannot be determined.
func (s *FileStream) Tell() uint64 {
	if s.f == nil {
		return 0
	}
	pos, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0
	}
	return uint64(pos)
}

func (s *FileStream) Seek(offset int64, origin Origin) error {
	if s.f == nil {
		return ioerr.New(ioerr.StreamClosed, "file.seek")
	}
	target, err := seekTarget("file.seek", offset, origin, s.Tell(), s.Size())
	if err != nil {
		return err
	}
	if _, err := s.f.Seek(int64(target), io.SeekStart); err != nil {
		return ioerr.Wrap(ioerr.BadFile, "file.seek", errors.Wrapf(err, "seek %s", s.path))
	}
	return nil
}

// Resize truncates or extends the file. The cursor is clamped to n.
func (s *FileStream) Resize(n uint64) error {
	if s.f == nil {
		return ioerr.New(ioerr.StreamClosed, "file.resize")
	}
	if err := s.f.Truncate(int64(n)); err != nil {
		return ioerr.Wrap(ioerr.BadFile, "file.resize", errors.Wrapf(err, "truncate %s", s.path))
	}
	if s.Tell() > n {
		if _, err := s.f.Seek(int64(n), io.SeekStart); err != nil {
			return ioerr.Wrap(ioerr.BadFile, "file.resize", errors.Wrapf(err, "seek %s", s.path))
		}
	}
	return nil
}

// Read fills p from the cursor, stopping early only at end of file.
func (s *FileStream) Read(p []byte) (int, error) {
	if s.f == nil {
		return 0, ioerr.New(ioerr.StreamClosed, "file.read")
	}
	n, err := io.ReadFull(s.f, p)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	if err != nil {
		return n, ioerr.Wrap(ioerr.BadFile, "file.read", errors.Wrapf(err, "read %s", s.path))
	}
	return n, nil
}

func (s *FileStream) Write(p []byte) (int, error) {
	if s.f == nil {
		return 0, ioerr.New(ioerr.StreamClosed, "file.write")
	}
	n, err := s.f.Write(p)
	if err != nil {
		return n, ioerr.Wrap(ioerr.BadFile, "file.write", errors.Wrapf(err, "write %s", s.path))
	}
	if s.autoFlush {
		if err := s.f.Sync(); err != nil {
			return n, ioerr.Wrap(ioerr.BadFile, "file.write", errors.Wrapf(err, "sync %s", s.path))
		}
	}
	return n, nil
}

// ToString reads the file from the start in small chunks and restores the
// cursor afterwards.
func (s *FileStream) ToString(t transform.Transform) (string, error) {
	if s.f == nil {
		return "", ioerr.New(ioerr.StreamClosed, "file.tostring")
	}

	size := s.Size()
	pos := s.Tell()
	if err := s.Seek(0, Begin); err != nil {
		return "", err
	}
	defer func() { _, _ = s.f.Seek(int64(pos), io.SeekStart) }()

	buf := make([]byte, fileChunkSize)
	return collectString("file.tostring", size, t, func(sink transform.Sink) error {
		for remaining := size; remaining > 0; {
			n, err := s.Read(buf)
			if err != nil {
				return err
			}
			if n == 0 {
				break
			}
			if uint64(n) > remaining {
				n = int(remaining)
			}
			if err := t.Update(buf[:n], sink); err != nil {
				return err
			}
			remaining -= uint64(n)
		}
		return nil
	})
}
