package contour

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Scheme selects the 1-D interpolation used to resample contour lines.
type Scheme int

const (
	Linear Scheme = iota
	Akima
	Cubic
)

var schemeNames = [...]string{"linear", "akima", "cubic"}

func (s Scheme) String() string {
	if s >= 0 && int(s) < len(schemeNames) {
		return schemeNames[s]
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme returns the scheme with the given name.
func ParseScheme(name string) (Scheme, error) {
	for i, n := range schemeNames {
		if n == name {
			return Scheme(i), nil
		}
	}
	return Linear, fmt.Errorf("unknown interpolation scheme %q", name)
}

func (s Scheme) predictor() interp.FittablePredictor {
	switch s {
	case Akima:
		return &interp.AkimaSpline{}
	case Cubic:
		return &interp.NaturalCubic{}
	}
	return &interp.PiecewiseLinear{}
}

// minSmoothPoints is the number of distinct points needed for resampling.
const minSmoothPoints = 4

// Smooth removes repeated points from pts and, when sfactor > 1, resamples
// the line to sfactor*n-1 points equally spaced in cumulative chord length.
// x(t) and y(t) are interpolated independently and clamped to the bounding
// box of the input segment they fall on. The end points are kept exactly.
func Smooth(pts []Point, sfactor int, scheme Scheme) ([]Point, error) {
	if len(pts) == 0 {
		return pts, nil
	}
	xs := make([]float64, 0, len(pts))
	ys := make([]float64, 0, len(pts))
	ts := make([]float64, 0, len(pts))
	xs, ys, ts = append(xs, pts[0].X), append(ys, pts[0].Y), append(ts, 0)
	for _, p := range pts[1:] {
		k := len(xs) - 1
		ds := math.Hypot(p.X-xs[k], p.Y-ys[k])
		if ds > 0 {
			xs, ys, ts = append(xs, p.X), append(ys, p.Y), append(ts, ts[k]+ds)
		}
	}
	n := len(xs)
	if sfactor <= 1 || n < minSmoothPoints {
		out := make([]Point, n)
		for k := range n {
			out[k] = Point{xs[k], ys[k]}
		}
		return out, nil
	}

	nOut := sfactor*n - 1
	dt := ts[n-1] / float64(nOut-1)

	fx, fy := scheme.predictor(), scheme.predictor()
	if err := fx.Fit(ts, xs); err != nil {
		return nil, fmt.Errorf("fitting x(t): %w", err)
	}
	if err := fy.Fit(ts, ys); err != nil {
		return nil, fmt.Errorf("fitting y(t): %w", err)
	}

	out := make([]Point, nOut)
	k := 0
	for i := range nOut {
		t := float64(i) * dt
		if i == nOut-1 {
			t = ts[n-1]
		}
		for k < n-2 && ts[k+1] < t {
			k++
		}
		x := clamp(fx.Predict(t), xs[k], xs[k+1])
		y := clamp(fy.Predict(t), ys[k], ys[k+1])
		out[i] = Point{x, y}
	}
	out[0] = Point{xs[0], ys[0]}
	out[nOut-1] = Point{xs[n-1], ys[n-1]}
	return out, nil
}

func clamp(v, a, b float64) float64 {
	return max(min(a, b), min(v, max(a, b)))
}
