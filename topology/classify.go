// Package topology turns a spanning tree over cluster chunks into a map of classified
// cells: the chunks on each edge's orthogonal path and the cluster chunks themselves.
package topology

import (
	"sort"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
	"github.com/janelia-flyem/chunkgrid/spantree"
)

// CellType classifies a grid cell.
type CellType uint8

const (
	Empty CellType = iota
	Connector
	Anchor
)

func (t CellType) String() string {
	switch t {
	case Empty:
		return "empty"
	case Connector:
		return "connector"
	case Anchor:
		return "anchor"
	default:
		return "unknown"
	}
}

// Map holds the classification of every non-empty cell.
type Map map[chunkgrid.Point2d]CellType

// Count returns the number of cells of the given type.
func (m Map) Count(t CellType) int {
	var n int
	for _, ct := range m {
		if ct == t {
			n++
		}
	}
	return n
}

// Sorted returns the classified coordinates in lexicographic order.
func (m Map) Sorted() []chunkgrid.Point2d {
	pts := make([]chunkgrid.Point2d, 0, len(m))
	for p := range m {
		pts = append(pts, p)
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Less(pts[j]) })
	return pts
}

// Result is the output of Classify.
type Result struct {
	Cells Map

	// Anomalies lists tree nodes that were expected to sit on an edge path but carried
	// no connector mark before being anchored.
	Anomalies []chunkgrid.Point2d
}

// Classify marks every cell on each edge's path as a Connector and then every tree node
// as an Anchor.  The path for edge (A, B) runs along z = A.z from A.x to B.x and then
// along x = B.x from A.z to B.z, turning at (B.x, A.z).
func Classify(tree *spantree.Tree) *Result {
	cells := make(Map)
	for _, e := range tree.Edges {
		markPath(cells, tree.Nodes[e.A], tree.Nodes[e.B])
	}
	var anomalies []chunkgrid.Point2d
	for _, node := range tree.Nodes {
		prev := cells[node]
		cells[node] = Anchor
		if len(tree.Edges) > 0 && prev != Connector {
			chunkgrid.Warningf("missing edge at cluster chunk %s\n", node)
			anomalies = append(anomalies, node)
		}
	}
	return &Result{Cells: cells, Anomalies: anomalies}
}

func markPath(cells Map, a, b chunkgrid.Point2d) {
	x0, x1 := minmax(a[0], b[0])
	for x := x0; x <= x1; x++ {
		cells[chunkgrid.Point2d{x, a[1]}] = Connector
	}
	z0, z1 := minmax(a[1], b[1])
	for z := z0; z <= z1; z++ {
		cells[chunkgrid.Point2d{b[0], z}] = Connector
	}
}

func minmax(a, b int32) (int32, int32) {
	if a < b {
		return a, b
	}
	return b, a
}
