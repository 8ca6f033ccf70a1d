package grid

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

// Compression is the stream compression applied to a grid file.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionXz
)

// CompressionOf deduces the stream compression from the file name suffix.
func CompressionOf(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(name, ".xz"):
		return CompressionXz
	}
	return CompressionNone
}

// Reader is a grid input stream. Streams which are piped or compressed cannot
// seek; skipping on them reads and discards.
type Reader struct {
	name    string
	r       io.Reader
	file    *os.File
	seeker  io.Seeker
	closers []io.Closer
	pos     int64
}

// Open opens the named grid for reading. PipeName opens the session's
// standard input.
func (s *Session) Open(name string) (*Reader, error) {
	if IsPipe(name) {
		if s.pipe == nil {
			s.logger.Debug("libgrid: reading from standard input")
			s.pipe = &Reader{name: name, r: s.stdin}
		}
		return s.pipe, nil
	}
	file, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	rd := &Reader{name: name, r: file, file: file, seeker: file, closers: []io.Closer{file}}

	switch CompressionOf(name) {
	case CompressionGzip:
		zr, err := gzip.NewReader(bufio.NewReader(file))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, name, err)
		}
		rd.r, rd.seeker = zr, nil
		rd.closers = append([]io.Closer{zr}, rd.closers...)
	case CompressionXz:
		zr, err := xz.NewReader(bufio.NewReader(file))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, name, err)
		}
		rd.r, rd.seeker = zr, nil
	}
	return rd, nil
}

func (r *Reader) Name() string {
	return r.name
}

// Seekable reports whether the stream supports random access.
func (r *Reader) Seekable() bool {
	return r.seeker != nil
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.pos
}

// Size returns the size of the underlying file.
func (r *Reader) Size() (int64, error) {
	if r.file == nil || r.seeker == nil {
		return 0, fmt.Errorf("%w: %s: size of a stream", ErrPipeUnsupported, r.name)
	}
	info, err := r.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrReadFailed, r.name, err)
	}
	return info.Size(), nil
}

// ReadFull fills buf or fails with ErrReadFailed.
func (r *Reader) ReadFull(buf []byte) error {
	n, err := io.ReadFull(r.r, buf)
	r.pos += int64(n)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFailed, r.name, err)
	}
	return nil
}

// Skip advances the stream by n bytes.
func (r *Reader) Skip(n int64) error {
	if n == 0 {
		return nil
	}
	if n < 0 {
		return r.SeekTo(r.pos + n)
	}
	if r.seeker != nil {
		return r.SeekTo(r.pos + n)
	}
	copied, err := io.CopyN(io.Discard, r.r, n)
	r.pos += copied
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadFailed, r.name, err)
	}
	return nil
}

// SeekTo moves the stream to the absolute offset. Streams without random
// access can only move forward.
func (r *Reader) SeekTo(offset int64) error {
	if r.seeker == nil {
		if offset < r.pos {
			return fmt.Errorf("%w: %s: cannot rewind a stream", ErrSeekFailed, r.name)
		}
		return r.Skip(offset - r.pos)
	}
	if _, err := r.seeker.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSeekFailed, r.name, err)
	}
	r.pos = offset
	return nil
}

func (r *Reader) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Writer is a buffered grid output stream.
type Writer struct {
	name    string
	bw      *bufio.Writer
	file    *os.File
	closers []io.Closer
}

// Create creates or truncates the named grid for writing. PipeName writes to
// the session's standard output.
func (s *Session) Create(name string) (*Writer, error) {
	if IsPipe(name) {
		s.logger.Debug("libgrid: writing to standard output")
		return &Writer{name: name, bw: bufio.NewWriter(s.stdout)}, nil
	}
	file, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	w := &Writer{name: name, file: file, closers: []io.Closer{file}}

	switch CompressionOf(name) {
	case CompressionGzip:
		zw, err := gzip.NewWriterLevel(file, gzip.BestCompression)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrCreateFailed, name, err)
		}
		w.bw = bufio.NewWriter(zw)
		w.closers = append([]io.Closer{zw}, w.closers...)
	case CompressionXz:
		zw, err := xz.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrCreateFailed, name, err)
		}
		w.bw = bufio.NewWriter(zw)
		w.closers = append([]io.Closer{zw}, w.closers...)
	default:
		w.bw = bufio.NewWriter(file)
	}
	return w, nil
}

// OpenUpdate opens an existing uncompressed grid file for rewriting its
// header in place.
func (s *Session) OpenUpdate(name string) (*Writer, error) {
	if IsPipe(name) || CompressionOf(name) != CompressionNone {
		return nil, fmt.Errorf("%w: %s: header update needs random access", ErrPipeUnsupported, name)
	}
	file, err := os.OpenFile(name, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	return &Writer{name: name, bw: bufio.NewWriter(file), file: file, closers: []io.Closer{file}}, nil
}

func (w *Writer) Name() string {
	return w.name
}

// Write writes all of p or fails with ErrWriteFailed.
func (w *Writer) Write(p []byte) error {
	if _, err := w.bw.Write(p); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, w.name, err)
	}
	return nil
}

// Close flushes buffered data and releases the file. Standard output is
// flushed but left open.
func (w *Writer) Close() error {
	var errs []error
	if w.bw != nil {
		if err := w.bw.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrWriteFailed, w.name, err))
		}
		w.bw = nil
	}
	for _, c := range w.closers {
		errs = append(errs, c.Close())
	}
	w.closers = nil
	return errors.Join(errs...)
}
