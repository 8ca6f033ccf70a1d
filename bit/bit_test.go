package bit_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eak1mov/go-libgrid/bit"
	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/internal"
	"github.com/eak1mov/go-libgrid/native"
	"github.com/eak1mov/go-libgrid/native/spec"
)

func TestGetSet(t *testing.T) {
	row := make([]byte, 8)
	for _, i := range []int{0, 5, 31, 32, 63} {
		bit.Set(row, i)
	}
	for i := range 64 {
		want := i == 0 || i == 5 || i == 31 || i == 32 || i == 63
		require.Equalf(t, want, bit.Get(row, i), "bit %d", i)
	}
	// bits are packed from the least significant end of little-endian words
	require.Equal(t, []byte{0x21, 0, 0, 0x80, 0x01, 0, 0, 0x80}, row)
}

func TestDataSize(t *testing.T) {
	require.Equal(t, int64(4*3), bit.DataSize(1, 3))
	require.Equal(t, int64(4*3), bit.DataSize(32, 3))
	require.Equal(t, int64(8*3), bit.DataSize(33, 3))
}

func TestRoundTrip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "mask.grd")
	g := internal.Holes(33, 4)
	h := g.Header
	h.Name = name

	c := bit.Codec{}
	out, err := c.WriteGrid(grid.NewSession(), h, g.Data, grid.IO{})
	require.NoError(t, err)
	require.Equal(t, 33, out.Nx)

	info, err := os.Stat(name)
	require.NoError(t, err)
	require.Equal(t, spec.HeaderLength+bit.DataSize(33, 4), info.Size())

	s := grid.NewSession()
	rh, err := c.ReadInfo(s, name)
	require.NoError(t, err)
	require.Equal(t, grid.FormatBitMask, rh.Format)
	data := make([]float32, rh.Size())
	_, err = c.ReadGrid(s, rh, data, grid.IO{})
	require.NoError(t, err)

	for k, v := range g.Data {
		want := float32(1)
		if v == 0 || math.IsNaN(float64(v)) {
			want = 0
		}
		require.Equalf(t, want, data[k], "node %d (%v)", k, v)
	}
}

func TestRegion(t *testing.T) {
	name := filepath.Join(t.TempDir(), "mask.grd")
	g := internal.NewGrid(40, 3, 0, 0, func(x, y float64) float32 {
		return float32(int(x+y) % 2)
	})
	h := g.Header
	h.Name = name
	c := bit.Codec{}
	_, err := c.WriteGrid(grid.NewSession(), h, g.Data, grid.IO{})
	require.NoError(t, err)

	s := grid.NewSession()
	rh, err := c.ReadInfo(s, name)
	require.NoError(t, err)
	data := make([]float32, 4*2)
	out, err := c.ReadGrid(s, rh, data, grid.IO{Region: grid.Region{W: 30, E: 33, S: 0, N: 1}})
	require.NoError(t, err)
	require.Equal(t, 4, out.Nx)
	// row y=1 then row y=0
	require.Equal(t, []float32{1, 0, 1, 0, 0, 1, 0, 1}, data)
}

func TestSniff(t *testing.T) {
	dir := t.TempDir()
	g := internal.Ramp(7, 5)

	mask := filepath.Join(dir, "mask.grd")
	h := g.Header
	h.Name = mask
	_, err := bit.Codec{}.WriteGrid(grid.NewSession(), h, g.Data, grid.IO{})
	require.NoError(t, err)
	got, err := bit.Sniff(grid.NewSession(), mask)
	require.NoError(t, err)
	require.Equal(t, grid.FormatBitMask, got)

	floats := filepath.Join(dir, "float.grd")
	c, err := native.New(grid.FormatNativeFloat)
	require.NoError(t, err)
	h.Name = floats
	_, err = c.WriteGrid(grid.NewSession(), h, g.Data, grid.IO{})
	require.NoError(t, err)
	_, err = bit.Sniff(grid.NewSession(), floats)
	require.ErrorIs(t, err, grid.ErrNotThisFormat)
}
