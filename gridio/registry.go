// Package gridio selects grid codecs by format code or by probing files, and
// dispatches grid reads and writes to them.
package gridio

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/eak1mov/go-libgrid/bit"
	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/native"
	"github.com/eak1mov/go-libgrid/sunras"
	"github.com/eak1mov/go-libgrid/surfer"
)

// Format is one entry of the format table.
type Format struct {
	ID          grid.FormatID
	Code        string
	Description string
	Codec       grid.Codec
}

type sniffer func(*grid.Session, string) (grid.FormatID, error)

// Registry is the immutable table of grid formats. It is safe for concurrent
// use once built.
type Registry struct {
	formats  [grid.FormatCount]*Format
	codes    map[string]grid.FormatID
	sniffers []sniffer
}

func mustNative(format grid.FormatID) grid.Codec {
	c, err := native.New(format)
	if err != nil {
		panic(err)
	}
	return c
}

func mustSurfer(format grid.FormatID) grid.Codec {
	c, err := surfer.New(format)
	if err != nil {
		panic(err)
	}
	return c
}

// NewRegistry builds the format table. It performs no I/O.
func NewRegistry() *Registry {
	r := &Registry{codes: make(map[string]grid.FormatID)}
	for _, f := range []Format{
		{grid.FormatNativeFloat, "bf", "native binary float", mustNative(grid.FormatNativeFloat)},
		{grid.FormatNativeShort, "bs", "native binary short int", mustNative(grid.FormatNativeShort)},
		{grid.FormatSunRaster, "rb", "Sun raster 8-bit", sunras.Codec{}},
		{grid.FormatNativeByte, "bb", "native binary byte", mustNative(grid.FormatNativeByte)},
		{grid.FormatBitMask, "bm", "native binary bit mask", bit.Codec{}},
		{grid.FormatSurfer6, "sf", "Surfer 6 binary float", mustSurfer(grid.FormatSurfer6)},
		{grid.FormatSurfer7, "sd", "Surfer 7 binary double", mustSurfer(grid.FormatSurfer7)},
		{grid.FormatNativeInt, "bi", "native binary int", mustNative(grid.FormatNativeInt)},
		{grid.FormatNativeDouble, "bd", "native binary double", mustNative(grid.FormatNativeDouble)},
	} {
		r.formats[f.ID] = &f
		r.codes[f.Code] = f.ID
	}
	r.sniffers = []sniffer{sunras.Sniff, surfer.Sniff, native.Sniff, bit.Sniff}
	return r
}

// Default returns the process-wide registry, built on first use.
var Default = sync.OnceValue(NewRegistry)

// Lookup returns the format with the given id.
func (r *Registry) Lookup(id grid.FormatID) (Format, error) {
	if id <= grid.FormatAuto || int(id) >= len(r.formats) || r.formats[id] == nil {
		return Format{}, fmt.Errorf("%w: format id %d", grid.ErrUnknownFormat, id)
	}
	return *r.formats[id], nil
}

// Resolve returns the id of a format code such as "bf" or "sd". A numeric
// string is taken as the id itself, and "" or "auto" resolve to
// grid.FormatAuto.
func (r *Registry) Resolve(code string) (grid.FormatID, error) {
	if code == "" || code == "auto" {
		return grid.FormatAuto, nil
	}
	if id, ok := r.codes[code]; ok {
		return id, nil
	}
	if n, err := strconv.Atoi(code); err == nil {
		if _, err := r.Lookup(grid.FormatID(n)); err != nil {
			return grid.FormatAuto, err
		}
		return grid.FormatID(n), nil
	}
	return grid.FormatAuto, fmt.Errorf("%w: format code %q", grid.ErrUnknownFormat, code)
}

// Formats returns the table entries in id order.
func (r *Registry) Formats() []Format {
	formats := make([]Format, 0, len(r.formats))
	for _, f := range r.formats {
		if f != nil {
			formats = append(formats, *f)
		}
	}
	return formats
}

// FormatSpec is a parsed format string "code[/scale/offset[/nan]]".
type FormatSpec struct {
	ID     grid.FormatID
	Scale  float64
	Offset float64
	// NaN is the missing-data proxy, NaN when not given.
	NaN float64
}

// ParseFormat parses a format string such as "bs", "bs/0.1/0" or
// "bs/1/0/-32768".
func (r *Registry) ParseFormat(s string) (FormatSpec, error) {
	parts := strings.Split(s, "/")
	spec := FormatSpec{Scale: 1, NaN: math.NaN()}
	var err error
	if spec.ID, err = r.Resolve(parts[0]); err != nil {
		return FormatSpec{}, err
	}
	values := []*float64{&spec.Scale, &spec.Offset, &spec.NaN}
	if len(parts)-1 > len(values) {
		return FormatSpec{}, fmt.Errorf("%w: format %q has too many fields", grid.ErrBadValue, s)
	}
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return FormatSpec{}, fmt.Errorf("%w: format %q: %w", grid.ErrBadValue, s, err)
		}
		*values[i] = v
	}
	if spec.Scale == 0 {
		return FormatSpec{}, fmt.Errorf("%w: format %q: zero scale", grid.ErrBadValue, s)
	}
	return spec, nil
}

// Sniff probes the named file with every format detector in turn.
func (r *Registry) Sniff(s *grid.Session, name string) (grid.FormatID, error) {
	if grid.IsPipe(name) {
		return grid.FormatAuto, fmt.Errorf("%w: the format of piped input must be given", grid.ErrPipeUnsupported)
	}
	for _, sniff := range r.sniffers {
		id, err := sniff(s, name)
		if err == nil {
			s.Logger().Debug("libgrid: format detected", "name", name, "format", r.formats[id].Code)
			return id, nil
		}
		if !errors.Is(err, grid.ErrNotThisFormat) && !errors.Is(err, grid.ErrPipeUnsupported) {
			return grid.FormatAuto, err
		}
	}
	return grid.FormatAuto, fmt.Errorf("%w: %s", grid.ErrUnknownFormat, name)
}
