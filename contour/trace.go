package contour

import (
	"math"
	"slices"
)

// Side is the part of the grid scanned for the next starting crossing.
type Side uint8

const (
	South Side = iota
	East
	North
	West
	InteriorH
	InteriorV
	Done
)

var sideNames = [...]string{"south", "east", "north", "west", "interior-h", "interior-v", "done"}

func (s Side) String() string {
	if int(s) < len(sideNames) {
		return sideNames[s]
	}
	return "invalid"
}

// Cursor is the scan position carried between calls to Field.Next. The zero
// value starts a new scan. On the boundary sides I counts the edges already
// examined along the side; on the interior sides I and J count the columns
// and rows examined.
type Cursor struct {
	Side Side
	I, J int
}

// Cell sides in the order they are tried when leaving a cell.
const (
	sideS = iota
	sideE
	sideN
	sideW
)

// noEdge never matches a grid edge.
var noEdge = Edge{I: -1, J: -1}

// start is a crossing found by the scan, with the cell entered through it and
// the cell on its other side, if any.
type start struct {
	edge     Edge
	i, j     int
	entry    int
	interior bool
	altI     int
	altJ     int
	altEntry int
}

// Next traces the next contour line at level zero, starting the scan at cur.
// It returns the line, the cursor to pass to the following call, and false
// once every edge has been examined. The edges crossed by the line are
// marked in edges, which must cover the same grid as f.
func (f *Field) Next(edges *EdgeSet, cur Cursor) (Line, Cursor, bool) {
	for cur.Side != Done {
		st, ok := f.scan(&cur)
		if !ok {
			cur = Cursor{Side: cur.Side + 1}
			continue
		}
		a, b := edgeNodes(st.edge)
		za, zb := f.z(a[0], a[1]), f.z(b[0], b[1])
		if f.opts.periodic {
			z := [2]float32{za, zb}
			setJump(z[:])
			za, zb = z[0], z[1]
		}
		if !crosses(za, zb) || edges.Marked(st.edge) {
			continue
		}
		line := f.traceFrom(edges, st, za, zb)
		if len(line.Points) < 2 {
			// isolated crossing between missing values
			continue
		}
		return line, cur, true
	}
	return Line{}, cur, false
}

// scan returns the start at the cursor position and advances the cursor.
// It reports false when the side is exhausted.
func (f *Field) scan(cur *Cursor) (start, bool) {
	nx, ny := f.header.Nx, f.header.Ny
	if nx < 2 || ny < 2 {
		return start{}, false
	}
	var st start
	switch cur.Side {
	case South:
		if cur.I > nx-2 {
			return st, false
		}
		i := cur.I
		st = start{edge: Edge{Horizontal, i, ny - 1}, i: i, j: ny - 1, entry: sideS}
		cur.I++
	case East:
		if cur.I > ny-2 {
			return st, false
		}
		j := ny - 1 - cur.I
		st = start{edge: Edge{Vertical, nx - 1, j}, i: nx - 2, j: j, entry: sideE}
		cur.I++
	case North:
		if cur.I > nx-2 {
			return st, false
		}
		i := nx - 2 - cur.I
		st = start{edge: Edge{Horizontal, i, 0}, i: i, j: 1, entry: sideN}
		cur.I++
	case West:
		if cur.I > ny-2 {
			return st, false
		}
		j := 1 + cur.I
		st = start{edge: Edge{Vertical, 0, j}, i: 0, j: j, entry: sideW}
		cur.I++
	case InteriorH:
		if cur.J > ny-3 {
			return st, false
		}
		i, j := cur.I, cur.J+1
		st = start{
			edge: Edge{Horizontal, i, j}, i: i, j: j, entry: sideS,
			interior: true, altI: i, altJ: j + 1, altEntry: sideN,
		}
		if cur.I++; cur.I > nx-2 {
			cur.I, cur.J = 0, cur.J+1
		}
	case InteriorV:
		if cur.J > ny-2 || nx < 3 {
			return st, false
		}
		i, j := cur.I+1, cur.J+1
		st = start{
			edge: Edge{Vertical, i, j}, i: i, j: j, entry: sideW,
			interior: true, altI: i - 1, altJ: j, altEntry: sideE,
		}
		if cur.I++; cur.I > nx-3 {
			cur.I, cur.J = 0, cur.J+1
		}
	default:
		return st, false
	}
	return st, true
}

// traceFrom walks the line through the start crossing. A line starting in the
// interior that does not close on itself is walked again from the cell on the
// other side of the start edge and the two halves are joined.
func (f *Field) traceFrom(edges *EdgeSet, st start, za, zb float32) Line {
	a, b := edgeNodes(st.edge)
	p0 := crossing(f.point(a[0], a[1]), f.point(b[0], b[1]), za, zb)
	edges.Mark(st.edge)

	closeOn := noEdge
	if st.interior {
		closeOn = st.edge
	}
	pts, closed, cut := f.walk(edges, st.i, st.j, st.entry, closeOn, []Point{p0})
	if st.interior && !closed && !cut {
		back, _, _ := f.walk(edges, st.altI, st.altJ, st.altEntry, noEdge, []Point{p0})
		slices.Reverse(pts)
		pts = append(pts, back[1:]...)
	}

	line := Line{Level: f.level, Closed: closed}
	smoothed, err := Smooth(pts, f.opts.smooth, f.opts.scheme)
	if err != nil {
		f.opts.logger.Warn("libgrid: contour smoothing failed", "level", f.level, "points", len(pts), "error", err)
		smoothed = pts
	}
	line.Points = slices.Clip(smoothed)
	return line
}

// walk follows the line from cell (i, j), entered through side entry,
// appending a point for every edge crossed. When closeOn is reached again the
// first point is repeated and closed is true. cut reports that the walk was
// abandoned after too many steps.
func (f *Field) walk(edges *EdgeSet, i, j, entry int, closeOn Edge, pts []Point) (_ []Point, closed, cut bool) {
	first := pts[0]
	for step := 0; ; step++ {
		if step >= f.opts.maxSteps {
			f.opts.logger.Warn("libgrid: contour trace abandoned", "level", f.level, "steps", step, "points", len(pts),
				"x", first.X, "y", first.Y)
			return pts, false, true
		}
		corners := f.corners(i, j)
		last := pts[len(pts)-1]

		best, bestDist := -1, math.Inf(1)
		var bestPoint Point
		for k := range 4 {
			if k == entry {
				continue
			}
			e := cellEdge(i, j, k)
			za, zb := corners[sidePairs[k][0]], corners[sidePairs[k][1]]
			if !crosses(za, zb) {
				continue
			}
			var p Point
			if e == closeOn {
				p = first
			} else if edges.Marked(e) {
				continue
			} else {
				ca, cb := cornerNodes(i, j, sidePairs[k][0]), cornerNodes(i, j, sidePairs[k][1])
				p = crossing(f.point(ca[0], ca[1]), f.point(cb[0], cb[1]), za, zb)
			}
			if d := dist2(p, last); d < bestDist {
				best, bestDist, bestPoint = k, d, p
			}
		}
		if best < 0 {
			return pts, false, false
		}
		e := cellEdge(i, j, best)
		pts = append(pts, bestPoint)
		if e == closeOn {
			return pts, true, false
		}
		edges.Mark(e)

		switch best {
		case sideS:
			j++
		case sideE:
			i++
		case sideN:
			j--
		case sideW:
			i--
		}
		entry = (best + 2) % 4
		if i < 0 || i > f.header.Nx-2 || j < 1 || j > f.header.Ny-1 {
			return pts, false, false
		}
	}
}

// Corners of cell (i, j) are numbered counter-clockwise from the south-west
// node (i, j). sidePairs lists the corners bounding each side in the node
// order of the side's edge.
var sidePairs = [4][2]int{
	sideS: {0, 1},
	sideE: {1, 2},
	sideN: {3, 2},
	sideW: {0, 3},
}

func cornerNodes(i, j, c int) [2]int {
	switch c {
	case 1:
		return [2]int{i + 1, j}
	case 2:
		return [2]int{i + 1, j - 1}
	case 3:
		return [2]int{i, j - 1}
	}
	return [2]int{i, j}
}

func (f *Field) corners(i, j int) [4]float32 {
	z := [4]float32{f.z(i, j), f.z(i+1, j), f.z(i+1, j-1), f.z(i, j-1)}
	if f.opts.periodic {
		setJump(z[:])
	}
	return z
}

func cellEdge(i, j, k int) Edge {
	switch k {
	case sideS:
		return Edge{Horizontal, i, j}
	case sideE:
		return Edge{Vertical, i + 1, j}
	case sideN:
		return Edge{Horizontal, i, j - 1}
	}
	return Edge{Vertical, i, j}
}

func edgeNodes(e Edge) (a, b [2]int) {
	if e.Kind == Horizontal {
		return [2]int{e.I, e.J}, [2]int{e.I + 1, e.J}
	}
	return [2]int{e.I, e.J}, [2]int{e.I, e.J - 1}
}

func crosses(za, zb float32) bool {
	if math.IsNaN(float64(za)) || math.IsNaN(float64(zb)) || math.IsInf(float64(za), 0) || math.IsInf(float64(zb), 0) {
		return false
	}
	return float64(za)*float64(zb) < 0
}

// crossing interpolates the zero crossing between a and b.
func crossing(a, b Point, za, zb float32) Point {
	t := float64(za) / (float64(za) - float64(zb))
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

func dist2(p, q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}
