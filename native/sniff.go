package native

import (
	"fmt"

	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/native/spec"
)

// sniffOrder lists the encodings tried by Sniff. A 4-byte element is taken as
// float; int32 files must be named explicitly.
var sniffOrder = []grid.FormatID{
	grid.FormatNativeFloat,
	grid.FormatNativeShort,
	grid.FormatNativeByte,
	grid.FormatNativeDouble,
}

// Sniff decides whether the named file is a native grid by checking that its
// header is valid and its size matches the size of one of the encodings.
// It fails with grid.ErrNotThisFormat otherwise.
func Sniff(s *grid.Session, name string) (grid.FormatID, error) {
	h, size, err := SniffHeader(s, name)
	if err != nil {
		return grid.FormatAuto, err
	}
	for _, format := range sniffOrder {
		if size == spec.HeaderLength+int64(h.Size())*int64(elems[format].Size()) {
			return format, nil
		}
	}
	return grid.FormatAuto, fmt.Errorf("%w: %s: size %d does not match a native encoding", grid.ErrNotThisFormat, name, size)
}

// SniffHeader reads the native header of the named file and returns it with
// the file size, for formats which share the native header.
func SniffHeader(s *grid.Session, name string) (grid.Header, int64, error) {
	if grid.IsPipe(name) {
		return grid.Header{}, 0, fmt.Errorf("%w: cannot detect the format of a pipe", grid.ErrPipeUnsupported)
	}
	r, err := s.Open(name)
	if err != nil {
		return grid.Header{}, 0, err
	}
	defer r.Close()

	size, err := r.Size()
	if err != nil {
		return grid.Header{}, 0, fmt.Errorf("%w: %w", grid.ErrNotThisFormat, err)
	}
	h, err := ReadHeader(r)
	if err != nil {
		return grid.Header{}, 0, fmt.Errorf("%w: %w", grid.ErrNotThisFormat, err)
	}
	return h, size, nil
}
