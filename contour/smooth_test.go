package contour_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/eak1mov/go-libgrid/contour"
)

func bbox(pts []contour.Point) [4]float64 {
	b := [4]float64{pts[0].X, pts[0].X, pts[0].Y, pts[0].Y}
	for _, p := range pts {
		b[0], b[1] = min(b[0], p.X), max(b[1], p.X)
		b[2], b[3] = min(b[2], p.Y), max(b[3], p.Y)
	}
	return b
}

func TestSmoothUnitFactor(t *testing.T) {
	// two samples per unit length along a bent line
	var pts []contour.Point
	for k := range 9 {
		pts = append(pts, contour.Point{X: float64(k) / 2, Y: 0})
	}
	for k := 1; k < 9; k++ {
		pts = append(pts, contour.Point{X: 4, Y: float64(k) / 2})
	}

	for _, scheme := range []contour.Scheme{contour.Linear, contour.Akima, contour.Cubic} {
		t.Run(scheme.String(), func(t *testing.T) {
			got, err := contour.Smooth(pts, 1, scheme)
			require.NoError(t, err)
			require.Len(t, got, len(pts))
			if diff := cmp.Diff(bbox(pts), bbox(got), approx); diff != "" {
				t.Errorf("bounding box mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSmoothResample(t *testing.T) {
	pts := []contour.Point{{0, 0}, {1, 0}, {1, 0}, {2, 1}, {3, 1}, {3, 3}}

	for _, scheme := range []contour.Scheme{contour.Linear, contour.Akima, contour.Cubic} {
		t.Run(scheme.String(), func(t *testing.T) {
			got, err := contour.Smooth(pts, 3, scheme)
			require.NoError(t, err)
			// five distinct points
			require.Len(t, got, 3*5-1)
			require.Equal(t, pts[0], got[0])
			require.Equal(t, pts[len(pts)-1], got[len(got)-1])

			b := bbox(pts)
			for _, p := range got {
				require.True(t, p.X >= b[0] && p.X <= b[1] && p.Y >= b[2] && p.Y <= b[3], "%v outside %v", p, b)
			}
		})
	}
}

func TestSmoothShortLine(t *testing.T) {
	pts := []contour.Point{{0, 0}, {0, 0}, {1, 1}, {2, 1}}
	got, err := contour.Smooth(pts, 5, contour.Cubic)
	require.NoError(t, err)
	want := []contour.Point{{0, 0}, {1, 1}, {2, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Smooth() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseScheme(t *testing.T) {
	for _, scheme := range []contour.Scheme{contour.Linear, contour.Akima, contour.Cubic} {
		got, err := contour.ParseScheme(scheme.String())
		require.NoError(t, err)
		require.Equal(t, scheme, got)
	}
	_, err := contour.ParseScheme("bezier")
	require.Error(t, err)
}
