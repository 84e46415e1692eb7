package stream

import (
	"io"
	"reflect"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ssargent/iostreams/pkg/ioerr"
	"github.com/ssargent/iostreams/pkg/transform"
)

// DefaultChunkSize is the read size of the transform driver.
const DefaultChunkSize = 500 * 1024

// Source is the part of a stream the driver reads from.
type Source interface {
	Size() uint64
	Read(p []byte) (int, error)
}

// Destination is the part of a stream the driver writes to.
type Destination interface {
	Write(p []byte) (int, error)
	Seek(offset int64, origin Origin) error
}

// Run describes one completed driver invocation.
type Run struct {
	BytesIn  uint64
	BytesOut uint64
	Chunks   int
	Duration time.Duration
	Err      error
}

// Observer is notified after every driver run, successful or not.
type Observer interface {
	ObserveRun(Run)
}

// Driver moves the contents of a source stream through a transform into a
// destination stream. The zero value uses DefaultChunkSize and logs nothing.
type Driver struct {
	ChunkSize int
	Logger    logrus.FieldLogger
	Observer  Observer
}

var defaultDriver = &Driver{}

// Transform runs src through t into dst with the default driver.
func Transform(src Source, dst Destination, t transform.Transform) error {
	return defaultDriver.Transform(src, dst, t)
}

// Transform reads ceil(Size/ChunkSize) chunks from src starting at its
// cursor, feeds each to t and writes all output to dst. After Final, dst is
// rewound to 0.
func (d *Driver) Transform(src Source, dst Destination, t transform.Transform) error {
	if sameInstance(src, dst) {
		return ioerr.New(ioerr.BadTransformDestination, "stream.transform")
	}

	start := time.Now()
	run := Run{}
	run.Err = d.run(src, dst, t, &run)
	run.Duration = time.Since(start)

	log := d.logger().WithFields(logrus.Fields{
		"bytes_in":  run.BytesIn,
		"bytes_out": run.BytesOut,
		"chunks":    run.Chunks,
		"duration":  run.Duration,
	})
	if run.Err != nil {
		log.WithError(run.Err).Warn("stream transform failed")
	} else {
		log.Debug("stream transform complete")
	}

	if d.Observer != nil {
		d.Observer.ObserveRun(run)
	}
	return run.Err
}

func (d *Driver) run(src Source, dst Destination, t transform.Transform, run *Run) error {
	chunkSize := uint64(d.chunkSize())
	size := src.Size()
	if size < chunkSize {
		chunkSize = size
	}

	sink := func(p []byte) error {
		n, err := dst.Write(p)
		run.BytesOut += uint64(n)
		if err != nil {
			return err
		}
		if n < len(p) {
			return ioerr.Wrap(ioerr.BufferTooSmall, "stream.transform", io.ErrShortWrite)
		}
		return nil
	}

	if chunkSize > 0 {
		buf := make([]byte, chunkSize)
		iterations := size / chunkSize
		if size%chunkSize != 0 {
			iterations++
		}

		for i := uint64(0); i < iterations; i++ {
			n, err := src.Read(buf)
			if err != nil {
				return err
			}
			run.BytesIn += uint64(n)
			run.Chunks++
			d.logger().WithFields(logrus.Fields{"chunk": i, "bytes": n}).Trace("transform chunk")

			if err := t.Update(buf[:n], sink); err != nil {
				return err
			}
		}
	}

	if err := t.Final(sink); err != nil {
		return err
	}
	return dst.Seek(0, Begin)
}

func (d *Driver) chunkSize() int {
	if d.ChunkSize > 0 {
		return d.ChunkSize
	}
	return DefaultChunkSize
}

func (d *Driver) logger() logrus.FieldLogger {
	if d.Logger != nil {
		return d.Logger
	}
	return discardLogger
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}()

// sameInstance reports whether a and b are the same pointer.
func sameInstance(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != reflect.Pointer || vb.Kind() != reflect.Pointer {
		return false
	}
	return va.Pointer() == vb.Pointer()
}
