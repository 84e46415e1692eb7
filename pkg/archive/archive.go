// Package archive reads and writes zip archives held in streams.
//
// Entries are deflated. A Writer appends the archive at the destination's
// current cursor; a Reader treats the whole source stream as the archive.
package archive

import (
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/ssargent/iostreams/pkg/codec"
	"github.com/ssargent/iostreams/pkg/ioerr"
	"github.com/ssargent/iostreams/pkg/stream"
)

// ErrEntryNotFound is returned when an archive has no entry of the requested
// name or index.
var ErrEntryNotFound = errors.New("archive entry not found")

// Entry describes one file or directory in an archive.
type Entry struct {
	Name             string
	CompressedSize   uint64
	UncompressedSize uint64
	Index            int
	IsDirectory      bool
}

func flateLevel(level codec.Level) int {
	switch level {
	case codec.LevelFastest:
		return flate.BestSpeed
	case codec.LevelBest:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}

// Writer adds entries to a zip archive written into a stream.
type Writer struct {
	zw     *zip.Writer
	closed bool
	now    func() time.Time
}

// NewWriter starts an archive at the current cursor of dst. Only the
// compression level of opts is used.
func NewWriter(dst stream.Stream, opts ...codec.Option) *Writer {
	config := codec.DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	zw := zip.NewWriter(stream.NewWriter(dst))
	level := flateLevel(config.Level)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	return &Writer{zw: zw, now: time.Now}
}

// Add compresses the whole of src into a new entry called name. The source
// is read from its beginning and left positioned at its end.
func (w *Writer) Add(name string, src stream.Stream) error {
	if w.closed {
		return ioerr.New(ioerr.StreamClosed, "zip.add")
	}
	if err := src.Seek(0, stream.Begin); err != nil {
		return err
	}

	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: w.now(),
	})
	if err != nil {
		return ioerr.Wrap(ioerr.Compression, "zip.add", err)
	}

	if _, err := io.Copy(fw, stream.NewReader(src)); err != nil {
		return ioerr.Wrap(ioerr.Compression, "zip.add", err)
	}
	return nil
}

// AddDir adds a directory entry. A trailing slash is appended when missing.
func (w *Writer) AddDir(name string) error {
	if w.closed {
		return ioerr.New(ioerr.StreamClosed, "zip.adddir")
	}
	if !strings.HasSuffix(name, "/") {
		name += "/"
	}

	_, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: w.now(),
	})
	if err != nil {
		return ioerr.Wrap(ioerr.Compression, "zip.adddir", err)
	}
	return nil
}

// Close writes the central directory. Closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.zw.Close(); err != nil {
		return ioerr.Wrap(ioerr.Compression, "zip.close", err)
	}
	return nil
}

// Reader lists and extracts the entries of an archive.
type Reader struct {
	zr *zip.Reader
}

// Open parses the central directory of the archive held in src.
func Open(src stream.Stream) (*Reader, error) {
	r := stream.NewReader(src)
	zr, err := zip.NewReader(r, r.Size())
	if err != nil {
		return nil, ioerr.Wrap(ioerr.Compression, "zip.open", err)
	}
	return &Reader{zr: zr}, nil
}

// Entries returns the archive entries in central directory order.
func (r *Reader) Entries() []Entry {
	entries := make([]Entry, 0, len(r.zr.File))
	for i, f := range r.zr.File {
		entries = append(entries, Entry{
			Name:             f.Name,
			CompressedSize:   f.CompressedSize64,
			UncompressedSize: f.UncompressedSize64,
			Index:            i,
			IsDirectory:      f.FileInfo().IsDir(),
		})
	}
	return entries
}

// Extract decompresses the entry called name into dst at its current
// cursor, then rewinds dst.
func (r *Reader) Extract(name string, dst stream.Stream) error {
	for _, f := range r.zr.File {
		if f.Name == name {
			return extract(f, dst)
		}
	}
	return errors.Wrapf(ErrEntryNotFound, "%q", name)
}

// ExtractIndex is Extract addressed by position in Entries.
func (r *Reader) ExtractIndex(index int, dst stream.Stream) error {
	if index < 0 || index >= len(r.zr.File) {
		return errors.Wrapf(ErrEntryNotFound, "index %d", index)
	}
	return extract(r.zr.File[index], dst)
}

func extract(f *zip.File, dst stream.Stream) error {
	rc, err := f.Open()
	if err != nil {
		return ioerr.Wrap(ioerr.Compression, "zip.extract", err)
	}
	defer rc.Close()

	if _, err := io.Copy(stream.NewWriter(dst), rc); err != nil {
		if ioerr.KindOf(err) != ioerr.Unknown {
			return err
		}
		return ioerr.Wrap(ioerr.Compression, "zip.extract", err)
	}
	return dst.Seek(0, stream.Begin)
}
