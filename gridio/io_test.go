package gridio_test

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/gridio"
	"github.com/eak1mov/go-libgrid/internal"
)

func write(t *testing.T, r *gridio.Registry, name, format string, g internal.Grid) grid.Header {
	t.Helper()
	spec, err := r.ParseFormat(format)
	require.NoError(t, err)
	h := g.Header
	h.Name = name
	h.Format = spec.ID
	h.ZScaleFactor, h.ZAddOffset = spec.Scale, spec.Offset
	h.NaNValue = spec.NaN
	out, err := r.WriteGrid(grid.NewSession(), h, g.Data, grid.IO{})
	require.NoError(t, err)
	return out
}

func TestReadAllFormats(t *testing.T) {
	dir := t.TempDir()
	r := gridio.NewRegistry()

	for _, f := range r.Formats() {
		for name, g := range internal.GridCases() {
			if f.ID == grid.FormatBitMask || f.ID == grid.FormatSunRaster {
				continue
			}
			t.Run(f.Code+"/"+name, func(t *testing.T) {
				want := g.Data
				if integral(f.ID) {
					// without a proxy missing nodes are stored as zero
					g = internal.Scaled(g, 1, 0)
					want = make([]float32, len(g.Data))
					for k, v := range g.Data {
						g.Data[k] = float32(math.Round(float64(v)))
						if !math.IsNaN(float64(v)) {
							want[k] = g.Data[k]
						}
					}
				}
				fileName := filepath.Join(dir, f.Code+"-"+name+".grd")
				write(t, r, fileName, f.Code, g)

				spec, err := r.ParseFormat(f.Code)
				require.NoError(t, err)
				h, data, err := r.Read(grid.NewSession(), fileName, spec, grid.IO{})
				require.NoError(t, err)
				require.Equal(t, f.ID, h.Format)
				require.Equal(t, g.Header.Nx, h.Nx)
				require.Equal(t, g.Header.Ny, h.Ny)
				if diff := cmp.Diff(want, data, cmpopts.EquateNaNs()); diff != "" {
					t.Errorf("data mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func integral(id grid.FormatID) bool {
	return id == grid.FormatNativeByte || id == grid.FormatNativeShort || id == grid.FormatNativeInt
}

func TestAutoDetect(t *testing.T) {
	dir := t.TempDir()
	r := gridio.NewRegistry()
	g := internal.Bump(9, 9, 3)

	for _, code := range []string{"bf", "sf", "sd", "bd"} {
		name := filepath.Join(dir, code+".grd")
		write(t, r, name, code, g)
		h, data, err := r.Read(grid.NewSession(), name, gridio.FormatSpec{Scale: 1, NaN: math.NaN()}, grid.IO{})
		require.NoError(t, err)
		require.Equal(t, code, mustLookup(t, r, h.Format).Code)
		require.Equal(t, g.Data, data)
	}
}

func mustLookup(t *testing.T, r *gridio.Registry, id grid.FormatID) gridio.Format {
	t.Helper()
	f, err := r.Lookup(id)
	require.NoError(t, err)
	return f
}

func TestScaleAndOffset(t *testing.T) {
	name := filepath.Join(t.TempDir(), "scaled.grd")
	r := gridio.NewRegistry()
	g := internal.Ramp(7, 5)

	out := write(t, r, name, "bs/0.5/10", g)
	require.Equal(t, 0.0, out.ZMin)
	require.Equal(t, 46.0, out.ZMax)

	// the stored shorts are (v - 10) / 0.5
	info, err := r.ReadInfo(grid.NewSession(), name, gridio.FormatSpec{ID: grid.FormatNativeShort, Scale: 1, NaN: math.NaN()})
	require.NoError(t, err)
	require.Equal(t, 0.5, info.ZScaleFactor)
	require.Equal(t, 10.0, info.ZAddOffset)
	info.ZScaleFactor, info.ZAddOffset = 1, 0
	stored := make([]float32, info.Size())
	_, err = r.ReadGrid(grid.NewSession(), info, stored, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, float32(60), stored[0])
	require.Equal(t, float32(-20), stored[len(stored)-7])

	h, data, err := r.Read(grid.NewSession(), name, gridio.FormatSpec{ID: grid.FormatNativeShort, Scale: 1, NaN: math.NaN()}, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, g.Data, data)
	require.Equal(t, 0.0, h.ZMin)
	require.Equal(t, 46.0, h.ZMax)

	// an explicit scale overrides the header
	spec, err := r.ParseFormat("bs/2/1")
	require.NoError(t, err)
	_, data, err = r.Read(grid.NewSession(), name, spec, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, float32(60*2+1), data[0])
}

func TestNegativeScale(t *testing.T) {
	name := filepath.Join(t.TempDir(), "negative.grd")
	r := gridio.NewRegistry()
	g := internal.Ramp(7, 5)

	out := write(t, r, name, "bi/-1/0", g)
	require.Equal(t, 0.0, out.ZMin)
	require.Equal(t, 46.0, out.ZMax)

	h, data, err := r.Read(grid.NewSession(), name, gridio.FormatSpec{ID: grid.FormatNativeInt, Scale: 1, NaN: math.NaN()}, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, g.Data, data)
	require.Equal(t, 0.0, h.ZMin)
	require.Equal(t, 46.0, h.ZMax)
}

func TestNaNProxyFromFormat(t *testing.T) {
	name := filepath.Join(t.TempDir(), "proxy.grd")
	r := gridio.NewRegistry()
	g := internal.Holes(33, 4)
	write(t, r, name, "bs/1/0/-32768", g)

	spec, err := r.ParseFormat("bs/1/0/-32768")
	require.NoError(t, err)
	_, data, err := r.Read(grid.NewSession(), name, spec, grid.IO{})
	require.NoError(t, err)
	if diff := cmp.Diff(g.Data, data, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}

	// without the proxy the sentinel is an ordinary value
	_, data, err = r.Read(grid.NewSession(), name, gridio.FormatSpec{ID: grid.FormatNativeShort, Scale: 1, NaN: math.NaN()}, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, float32(-32768), data[0])
}

func TestWriteLeavesDataUnchanged(t *testing.T) {
	name := filepath.Join(t.TempDir(), "scaled.grd")
	r := gridio.NewRegistry()
	g := internal.Ramp(7, 5)
	before := internal.Scaled(g, 1, 0).Data
	write(t, r, name, "bs/0.5/10", g)
	require.Equal(t, before, g.Data)
}

func TestReadRegionWithPad(t *testing.T) {
	name := filepath.Join(t.TempDir(), "ramp.grd")
	r := gridio.NewRegistry()
	g := internal.Ramp(7, 5)
	write(t, r, name, "bs/0.5/10", g)

	pad := grid.UniformPad(2)
	spec, err := r.ParseFormat("bs")
	require.NoError(t, err)
	h, data, err := r.Read(grid.NewSession(), name, spec, grid.IO{Region: grid.Region{W: 1, E: 3, S: 2, N: 3}, Pad: pad})
	require.NoError(t, err)
	require.Len(t, data, (3+4)*(2+4))
	require.Equal(t, []float32{31, 32, 33, 21, 22, 23}, internal.Logical(data, 3, 2, pad))
	// pad cells are not scaled
	require.Equal(t, float32(0), data[0])
	require.Equal(t, 21.0, h.ZMin)
	require.Equal(t, 33.0, h.ZMax)
}

func TestPipeNeedsFormat(t *testing.T) {
	r := gridio.NewRegistry()
	g := internal.Ramp(7, 5)

	var stdout bytes.Buffer
	h := g.Header
	h.Name = grid.PipeName
	h.Format = grid.FormatNativeFloat
	_, err := r.WriteGrid(grid.NewSession(grid.WithStdout(&stdout)), h, g.Data, grid.IO{})
	require.NoError(t, err)
	piped := stdout.Bytes()

	auto := gridio.FormatSpec{Scale: 1, NaN: math.NaN()}
	_, _, err = r.Read(grid.NewSession(grid.WithStdin(bytes.NewReader(piped))), grid.PipeName, auto, grid.IO{})
	require.ErrorIs(t, err, grid.ErrPipeUnsupported)

	spec, err := r.ParseFormat("bf")
	require.NoError(t, err)
	_, data, err := r.Read(grid.NewSession(grid.WithStdin(bytes.NewReader(piped))), grid.PipeName, spec, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, g.Data, data)
}

func TestReadErrors(t *testing.T) {
	r := gridio.NewRegistry()
	spec, err := r.ParseFormat("bf")
	require.NoError(t, err)

	h, data, err := r.Read(grid.NewSession(), filepath.Join(t.TempDir(), "missing.grd"), spec, grid.IO{})
	require.ErrorIs(t, err, grid.ErrOpenFailed)
	require.Nil(t, data)
	require.Zero(t, h.Nx)

	name := filepath.Join(t.TempDir(), "ramp.grd")
	write(t, r, name, "bf", internal.Ramp(7, 5))
	_, data, err = r.Read(grid.NewSession(), name, spec, grid.IO{Region: grid.Region{W: 20, E: 30, S: 0, N: 4}})
	require.ErrorIs(t, err, grid.ErrRegionOutsideGrid)
	require.Nil(t, data)

	_, err = r.WriteGrid(grid.NewSession(), grid.Header{Name: name}, nil, grid.IO{})
	require.ErrorIs(t, err, grid.ErrUnknownFormat)
}
