package xy

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/eak1mov/go-libgrid/contour"
)

// Writer implements contour.Writer interface for multi-segment files.
type Writer struct {
	filePattern string
	files       map[string]*output
}

type output struct {
	file *os.File
	bw   *bufio.Writer
}

// NewWriter creates a new Writer for the given file pattern
// (e.g. "/home/user/contours/{level}.xy"). Without a {level} placeholder all
// lines are written to a single file.
func NewWriter(filePattern string) (*Writer, error) {
	if err := validatePattern(filePattern); err != nil {
		return nil, err
	}
	return &Writer{filePattern, make(map[string]*output)}, nil
}

func (w *Writer) open(filePath string) (*output, error) {
	if out, ok := w.files[filePath]; ok {
		return out, nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, err
	}
	file, err := os.Create(filePath)
	if err != nil {
		return nil, err
	}
	out := &output{file, bufio.NewWriter(file)}
	w.files[filePath] = out
	return out, nil
}

func (w *Writer) WriteLine(line contour.Line) error {
	out, err := w.open(formatPattern(w.filePattern, line.Level))
	if err != nil {
		return err
	}

	buf := make([]byte, 0, 64)
	buf = append(buf, "> -Z"...)
	buf = strconv.AppendFloat(buf, line.Level, 'g', -1, 64)
	if line.Closed {
		buf = append(buf, " closed"...)
	}
	buf = append(buf, '\n')
	for _, p := range line.Points {
		buf = strconv.AppendFloat(buf, p.X, 'g', -1, 64)
		buf = append(buf, '\t')
		buf = strconv.AppendFloat(buf, p.Y, 'g', -1, 64)
		buf = append(buf, '\n')
	}
	_, err = out.bw.Write(buf)
	return err
}

// Finalize flushes and closes all files written so far.
func (w *Writer) Finalize() error {
	return w.Close()
}

// Close flushes and closes all open files. It is safe to call after Finalize.
func (w *Writer) Close() error {
	var errs []error
	for filePath, out := range w.files {
		errs = append(errs, out.bw.Flush(), out.file.Close())
		delete(w.files, filePath)
	}
	return errors.Join(errs...)
}
