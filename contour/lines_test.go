package contour_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/eak1mov/go-libgrid/contour"
	"github.com/eak1mov/go-libgrid/grid"
	"github.com/eak1mov/go-libgrid/internal"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		zmin, zmax, interval float64
		want                 []float64
	}{
		{-3.2, 7.9, 2, []float64{-2, 0, 2, 4, 6}},
		{0, 1, 0.25, []float64{0, 0.25, 0.5, 0.75, 1}},
		{0.5, 1.5, 1, []float64{1}},
		{0.1, 0.2, 1, nil},
	}
	for _, tt := range tests {
		got, err := contour.Levels(tt.zmin, tt.zmax, tt.interval)
		require.NoError(t, err)
		if diff := cmp.Diff(tt.want, got, approx); diff != "" {
			t.Errorf("Levels(%v, %v, %v) mismatch (-want +got):\n%s", tt.zmin, tt.zmax, tt.interval, diff)
		}
	}

	_, err := contour.Levels(0, 1, 0)
	require.ErrorIs(t, err, grid.ErrBadValue)
	_, err = contour.Levels(2, 1, 1)
	require.ErrorIs(t, err, grid.ErrBadValue)
}

func TestLinesStopsEarly(t *testing.T) {
	// five parallel lines running south to north
	g := internal.NewGrid(6, 3, 0, 0, func(x, y float64) float32 {
		if int(x)%2 == 0 {
			return -1
		}
		return 1
	})
	f, err := contour.NewField(g.Data, g.Header, grid.Pad{})
	require.NoError(t, err)

	all := slices.Collect(f.Lines(0))
	require.Len(t, all, 5)

	var first []contour.Line
	for line := range f.Lines(0) {
		first = append(first, line)
		if len(first) == 2 {
			break
		}
	}
	if diff := cmp.Diff(all[:2], first); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestLinesAcrossLevels(t *testing.T) {
	g := internal.Bump(9, 9, 3)
	f, err := contour.NewField(g.Data, g.Header, grid.Pad{})
	require.NoError(t, err)

	// the same field traced level after level, revisiting the first one
	for _, level := range []float64{0.5, 1.5, 0.5, 2.5} {
		got := slices.Collect(f.Lines(level))
		require.NotEmpty(t, got, "level %v", level)
		if diff := cmp.Diff(trace(t, g, level), got); diff != "" {
			t.Errorf("Lines(%v) mismatch (-want +got):\n%s", level, diff)
		}
	}
}

type memory []contour.Line

func (m *memory) WriteLine(line contour.Line) error {
	*m = append(*m, line)
	return nil
}

func (m *memory) Finalize() error { return nil }

func (m *memory) VisitLines(visitor func(contour.Line) error) error {
	for _, line := range *m {
		if err := visitor(line); err != nil {
			return err
		}
	}
	return nil
}

func TestIterLines(t *testing.T) {
	lines := trace(t, internal.Bump(9, 9, 2), 0)
	lines = append(lines, trace(t, internal.Ramp(5, 5), 12.5)...)

	var m memory
	var w contour.Writer = &m
	for _, line := range lines {
		require.NoError(t, w.WriteLine(line))
	}
	require.NoError(t, w.Finalize())

	if diff := cmp.Diff(lines, slices.Collect(contour.IterLines(&m))); diff != "" {
		t.Errorf("IterLines() mismatch (-want +got):\n%s", diff)
	}
}

func TestEdgeSet(t *testing.T) {
	edges := contour.NewEdgeSet(5, 3)
	marked := []contour.Edge{
		{Kind: contour.Horizontal, I: 0, J: 0},
		{Kind: contour.Vertical, I: 4, J: 2},
		{Kind: contour.Vertical, I: 2, J: 1},
	}
	for _, e := range marked {
		edges.Mark(e)
	}
	require.Equal(t, len(marked), edges.Count())
	for _, e := range marked {
		require.True(t, edges.Marked(e), "%v", e)
	}
	require.False(t, edges.Marked(contour.Edge{Kind: contour.Vertical, I: 0, J: 0}))
	require.False(t, edges.Marked(contour.Edge{Kind: contour.Horizontal, I: 2, J: 1}))

	edges.Reset()
	require.Zero(t, edges.Count())
}
