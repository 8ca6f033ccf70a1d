package contour

import "math/bits"

// EdgeKind distinguishes the two edges owned by a grid node.
type EdgeKind uint8

const (
	// Horizontal is the edge from node (i, j) to its east neighbour (i+1, j).
	Horizontal EdgeKind = 0
	// Vertical is the edge from node (i, j) to its north neighbour (i, j-1).
	Vertical EdgeKind = 1
)

// Edge identifies one grid edge by its kind and owning node.
type Edge struct {
	Kind EdgeKind
	I, J int
}

// EdgeSet records the grid edges consumed by traced contours, one bit per
// edge packed into 64-bit words. It is reused for every line of one level.
type EdgeSet struct {
	nx, ny int
	words  []uint64
}

func NewEdgeSet(nx, ny int) *EdgeSet {
	return &EdgeSet{nx: nx, ny: ny, words: make([]uint64, (2*nx*ny+63)/64)}
}

func (e *EdgeSet) bit(edge Edge) int {
	return 2*(edge.J*e.nx+edge.I) + int(edge.Kind)
}

func (e *EdgeSet) Marked(edge Edge) bool {
	b := e.bit(edge)
	return e.words[b/64]&(1<<(b%64)) != 0
}

func (e *EdgeSet) Mark(edge Edge) {
	b := e.bit(edge)
	e.words[b/64] |= 1 << (b % 64)
}

// Reset clears all marks so the set can be reused for another level.
func (e *EdgeSet) Reset() {
	clear(e.words)
}

// Count returns the number of marked edges.
func (e *EdgeSet) Count() int {
	n := 0
	for _, w := range e.words {
		n += bits.OnesCount64(w)
	}
	return n
}
