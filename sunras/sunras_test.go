package sunras_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/internal"
	"github.com/eak1mov/go-libgrid/sunras"
)

func TestHeaderSerializer(t *testing.T) {
	h1 := sunras.Header{Magic: sunras.Magic, Width: 7, Height: 5, Depth: 8, Length: 40, Type: 1}
	buf := sunras.SerializeHeader(&h1)
	require.Len(t, buf, sunras.HeaderLength)
	require.Equal(t, []byte{0x59, 0xa6, 0x6a, 0x95, 0, 0, 0, 7}, buf[:8])

	h2, err := sunras.DeserializeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h1, *h2)
}

func TestHeaderErrors(t *testing.T) {
	valid := sunras.Header{Magic: sunras.Magic, Width: 7, Height: 5, Depth: 8, Length: 40, Type: 1}
	tests := []struct {
		name   string
		modify func(*sunras.Header)
		want   error
	}{
		{"magic", func(h *sunras.Header) { h.Magic = 0x12345678 }, grid.ErrNotThisFormat},
		{"depth", func(h *sunras.Header) { h.Depth = 24 }, grid.ErrUnsupportedVariant},
		{"run-length encoded", func(h *sunras.Header) { h.Type = 2 }, grid.ErrUnsupportedVariant},
		{"empty", func(h *sunras.Header) { h.Width = 0 }, grid.ErrBadValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := valid
			tt.modify(&h)
			_, err := sunras.DeserializeHeader(sunras.SerializeHeader(&h))
			require.ErrorIs(t, err, tt.want)
		})
	}

	_, err := sunras.DeserializeHeader(make([]byte, 10))
	require.ErrorIs(t, err, grid.ErrReadFailed)
}

func TestRoundTrip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "image.ras")
	g := internal.Ramp(7, 5)
	h := g.Header
	h.Name = name

	c := sunras.Codec{}
	_, err := c.WriteGrid(grid.NewSession(), h, g.Data, grid.IO{})
	require.NoError(t, err)

	info, err := os.Stat(name)
	require.NoError(t, err)
	// odd rows are padded to an even length
	require.Equal(t, int64(sunras.HeaderLength+8*5), info.Size())

	s := grid.NewSession()
	rh, err := c.ReadInfo(s, name)
	require.NoError(t, err)
	want := grid.Header{
		Name:         name,
		Format:       grid.FormatSunRaster,
		Nx:           7,
		Ny:           5,
		XMax:         7,
		YMax:         5,
		XInc:         1,
		YInc:         1,
		Registration: grid.Pixel,
		ZMax:         255,
		ZScaleFactor: 1,
	}
	if diff := cmp.Diff(want, rh, cmpopts.IgnoreFields(grid.Header{}, "NaNValue")); diff != "" {
		t.Errorf("ReadInfo() mismatch (-want +got):\n%s", diff)
	}

	data := make([]float32, rh.Size())
	out, err := c.ReadGrid(s, rh, data, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, g.Data, data)
	require.Equal(t, 0.0, out.ZMin)
	require.Equal(t, 46.0, out.ZMax)
}

func TestScaledValues(t *testing.T) {
	name := filepath.Join(t.TempDir(), "image.ras")
	// 0..230 fits a byte, 5.2 per step is rounded
	g := internal.Scaled(internal.Ramp(7, 5), 5, 0.2)
	h := g.Header
	h.Name = name

	c := sunras.Codec{}
	_, err := c.WriteGrid(grid.NewSession(), h, g.Data, grid.IO{})
	require.NoError(t, err)

	s := grid.NewSession()
	rh, err := c.ReadInfo(s, name)
	require.NoError(t, err)
	data := make([]float32, rh.Size())
	_, err = c.ReadGrid(s, rh, data, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, internal.Scaled(internal.Ramp(7, 5), 5, 0).Data, data)
}

func TestColormapIsSkipped(t *testing.T) {
	name := filepath.Join(t.TempDir(), "map.ras")
	rh := sunras.Header{
		Magic: sunras.Magic, Width: 3, Height: 2, Depth: 8, Length: 8, Type: 1,
		MapType: 1, MapLength: 6,
	}
	buf := sunras.SerializeHeader(&rh)
	buf = append(buf, 0, 1, 2, 3, 4, 5)
	buf = append(buf, 10, 20, 30, 0, 40, 50, 60, 0)
	require.NoError(t, os.WriteFile(name, buf, 0o644))

	s := grid.NewSession()
	h, err := sunras.Codec{}.ReadInfo(s, name)
	require.NoError(t, err)
	data := make([]float32, h.Size())
	_, err = sunras.Codec{}.ReadGrid(s, h, data, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, []float32{10, 20, 30, 40, 50, 60}, data)
}

func TestPipe(t *testing.T) {
	g := internal.Ramp(7, 5)
	h := g.Header
	h.Name = grid.PipeName

	var stdout bytes.Buffer
	_, err := sunras.Codec{}.WriteGrid(grid.NewSession(grid.WithStdout(&stdout)), h, g.Data, grid.IO{})
	require.NoError(t, err)

	s := grid.NewSession(grid.WithStdin(&stdout))
	rh, err := sunras.Codec{}.ReadInfo(s, grid.PipeName)
	require.NoError(t, err)
	data := make([]float32, rh.Size())
	_, err = sunras.Codec{}.ReadGrid(s, rh, data, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, g.Data, data)
}

func TestSniff(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "image.ras")
	g := internal.Ramp(4, 4)
	h := g.Header
	h.Name = name
	_, err := sunras.Codec{}.WriteGrid(grid.NewSession(), h, g.Data, grid.IO{})
	require.NoError(t, err)

	got, err := sunras.Sniff(grid.NewSession(), name)
	require.NoError(t, err)
	require.Equal(t, grid.FormatSunRaster, got)

	other := filepath.Join(dir, "other")
	require.NoError(t, os.WriteFile(other, []byte("DSBB"), 0o644))
	_, err = sunras.Sniff(grid.NewSession(), other)
	require.ErrorIs(t, err, grid.ErrNotThisFormat)

	short := filepath.Join(dir, "short")
	require.NoError(t, os.WriteFile(short, []byte{0x59}, 0o644))
	_, err = sunras.Sniff(grid.NewSession(), short)
	require.ErrorIs(t, err, grid.ErrNotThisFormat)

	_, err = sunras.Sniff(grid.NewSession(), grid.PipeName)
	require.ErrorIs(t, err, grid.ErrPipeUnsupported)
}
