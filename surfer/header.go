package surfer

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/eak1mov/go-libgrid/grid"
)

// Section tags, stored as little-endian 32-bit words.
const (
	tagV6    = "DSBB"
	tagV7    = "DSRB"
	tagGrid  = "GRID"
	tagData  = "DATA"
	tagFault = "FLTI"
)

const (
	HeaderLengthV6 = 56
	HeaderLengthV7 = 100

	v7HeaderSectionSize = 4
	v7GridSectionSize   = 72

	// Blank is the value Surfer stores for missing nodes.
	Blank = 1.70141e38
)

var byteOrder = binary.LittleEndian

// HeaderV6 is the fixed header of a Surfer 6 binary grid.
type HeaderV6 struct {
	Tag [4]byte
	Nx  int16
	Ny  int16
	XLo float64
	XHi float64
	YLo float64
	YHi float64
	ZLo float64
	ZHi float64
}

// HeaderV7 holds the header and grid sections of a Surfer 7 grid.
type HeaderV7 struct {
	Tag        [4]byte
	Size       int32
	Version    int32
	GridTag    [4]byte
	GridSize   int32
	NRow       int32
	NCol       int32
	XLL        float64
	YLL        float64
	XSize      float64
	YSize      float64
	ZMin       float64
	ZMax       float64
	Rotation   float64
	BlankValue float64
	DataTag    [4]byte
	DataSize   int32
}

func serialize(header any) []byte {
	var buffer bytes.Buffer
	binary.Write(&buffer, byteOrder, header)
	return buffer.Bytes()
}

func DeserializeHeaderV6(buffer []byte) (*HeaderV6, error) {
	header := HeaderV6{}
	if err := binary.Read(bytes.NewReader(buffer), byteOrder, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", grid.ErrReadFailed, err)
	}
	if string(header.Tag[:]) != tagV6 {
		return nil, fmt.Errorf("%w: tag %q", grid.ErrNotThisFormat, header.Tag[:])
	}
	if header.Nx <= 0 || header.Ny <= 0 {
		return nil, fmt.Errorf("%w: dimensions %d x %d", grid.ErrBadValue, header.Nx, header.Ny)
	}
	return &header, nil
}

// DeserializeHeaderV7 parses the leading sections of a Surfer 7 grid. Only a
// single grid section directly followed by its data is supported: fault
// (break-line) sections and unexpected section sizes are rejected.
func DeserializeHeaderV7(buffer []byte) (*HeaderV7, error) {
	header := HeaderV7{}
	if err := binary.Read(bytes.NewReader(buffer), byteOrder, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", grid.ErrReadFailed, err)
	}
	if string(header.Tag[:]) != tagV7 {
		return nil, fmt.Errorf("%w: tag %q", grid.ErrNotThisFormat, header.Tag[:])
	}
	if header.Size != v7HeaderSectionSize {
		return nil, fmt.Errorf("%w: header section size %d", grid.ErrUnsupportedVariant, header.Size)
	}
	if string(header.GridTag[:]) != tagGrid {
		return nil, fmt.Errorf("%w: section %q where %q expected", grid.ErrUnsupportedVariant, header.GridTag[:], tagGrid)
	}
	if header.GridSize != v7GridSectionSize {
		return nil, fmt.Errorf("%w: grid section size %d", grid.ErrUnsupportedVariant, header.GridSize)
	}
	switch string(header.DataTag[:]) {
	case tagData:
	case tagFault:
		return nil, fmt.Errorf("%w: grids with break-line sections are not supported", grid.ErrUnsupportedVariant)
	default:
		return nil, fmt.Errorf("%w: section %q where %q expected", grid.ErrUnsupportedVariant, header.DataTag[:], tagData)
	}
	if header.NRow <= 0 || header.NCol <= 0 {
		return nil, fmt.Errorf("%w: dimensions %d x %d", grid.ErrBadValue, header.NCol, header.NRow)
	}
	if int64(header.DataSize) != int64(header.NRow)*int64(header.NCol)*8 {
		return nil, fmt.Errorf("%w: data section size %d for %d x %d nodes",
			grid.ErrUnsupportedVariant, header.DataSize, header.NCol, header.NRow)
	}
	if header.Rotation != 0 {
		return nil, fmt.Errorf("%w: rotated grid (%g degrees)", grid.ErrUnsupportedVariant, header.Rotation)
	}
	return &header, nil
}
