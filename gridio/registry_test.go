package gridio_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/gridio"
	"github.com/eak1mov/go-libgrid/internal"
)

func TestResolve(t *testing.T) {
	r := gridio.NewRegistry()
	tests := []struct {
		code string
		want grid.FormatID
	}{
		{"", grid.FormatAuto},
		{"auto", grid.FormatAuto},
		{"bf", grid.FormatNativeFloat},
		{"bs", grid.FormatNativeShort},
		{"rb", grid.FormatSunRaster},
		{"bb", grid.FormatNativeByte},
		{"bm", grid.FormatBitMask},
		{"sf", grid.FormatSurfer6},
		{"sd", grid.FormatSurfer7},
		{"bi", grid.FormatNativeInt},
		{"bd", grid.FormatNativeDouble},
		{"7", grid.FormatSurfer7},
	}
	for _, tt := range tests {
		got, err := r.Resolve(tt.code)
		require.NoErrorf(t, err, "code %q", tt.code)
		require.Equalf(t, tt.want, got, "code %q", tt.code)
	}

	for _, code := range []string{"xx", "0", "10", "-1"} {
		_, err := r.Resolve(code)
		require.ErrorIsf(t, err, grid.ErrUnknownFormat, "code %q", code)
	}
}

func TestLookup(t *testing.T) {
	r := gridio.NewRegistry()
	formats := r.Formats()
	require.Len(t, formats, grid.FormatCount-1)
	for k, f := range formats {
		require.Equal(t, grid.FormatID(k+1), f.ID)
		got, err := r.Lookup(f.ID)
		require.NoError(t, err)
		require.Equal(t, f.Code, got.Code)
		require.NotNil(t, got.Codec)
	}

	_, err := r.Lookup(grid.FormatAuto)
	require.ErrorIs(t, err, grid.ErrUnknownFormat)
	_, err = r.Lookup(grid.FormatCount)
	require.ErrorIs(t, err, grid.ErrUnknownFormat)

	require.Same(t, gridio.Default(), gridio.Default())
}

func TestParseFormat(t *testing.T) {
	r := gridio.NewRegistry()
	tests := []struct {
		s    string
		want gridio.FormatSpec
	}{
		{"bf", gridio.FormatSpec{ID: grid.FormatNativeFloat, Scale: 1, NaN: math.NaN()}},
		{"bs/0.1/5", gridio.FormatSpec{ID: grid.FormatNativeShort, Scale: 0.1, Offset: 5, NaN: math.NaN()}},
		{"bs/1/0/-32768", gridio.FormatSpec{ID: grid.FormatNativeShort, Scale: 1, NaN: -32768}},
		{"auto/2", gridio.FormatSpec{ID: grid.FormatAuto, Scale: 2, NaN: math.NaN()}},
	}
	for _, tt := range tests {
		got, err := r.ParseFormat(tt.s)
		require.NoError(t, err)
		if diff := cmp.Diff(tt.want, got, cmpopts.EquateNaNs()); diff != "" {
			t.Errorf("ParseFormat(%q) mismatch (-want +got):\n%s", tt.s, diff)
		}
	}

	for _, s := range []string{"bs/1/0/0/0", "bs/x", "bs/0"} {
		_, err := r.ParseFormat(s)
		require.ErrorIsf(t, err, grid.ErrBadValue, "format %q", s)
	}
	_, err := r.ParseFormat("zz/1")
	require.ErrorIs(t, err, grid.ErrUnknownFormat)
}

func TestSniff(t *testing.T) {
	dir := t.TempDir()
	r := gridio.NewRegistry()
	g := internal.Ramp(7, 5)

	tests := []struct {
		code string
		want grid.FormatID
	}{
		{"bf", grid.FormatNativeFloat},
		{"bs", grid.FormatNativeShort},
		{"rb", grid.FormatSunRaster},
		{"bb", grid.FormatNativeByte},
		{"bm", grid.FormatBitMask},
		{"sf", grid.FormatSurfer6},
		{"sd", grid.FormatSurfer7},
		// int32 is indistinguishable from float32 by size
		{"bi", grid.FormatNativeFloat},
		{"bd", grid.FormatNativeDouble},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			id, err := r.Resolve(tt.code)
			require.NoError(t, err)
			h := g.Header
			h.Name = filepath.Join(dir, tt.code+".grd")
			h.Format = id
			_, err = r.WriteGrid(grid.NewSession(), h, g.Data, grid.IO{})
			require.NoError(t, err)

			got, err := r.Sniff(grid.NewSession(), h.Name)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	junk := filepath.Join(dir, "junk.grd")
	require.NoError(t, os.WriteFile(junk, []byte("neither raster nor grid"), 0o644))
	_, err := r.Sniff(grid.NewSession(), junk)
	require.ErrorIs(t, err, grid.ErrUnknownFormat)

	_, err = r.Sniff(grid.NewSession(), filepath.Join(dir, "missing.grd"))
	require.ErrorIs(t, err, grid.ErrOpenFailed)

	_, err = r.Sniff(grid.NewSession(), grid.PipeName)
	require.ErrorIs(t, err, grid.ErrPipeUnsupported)
}
