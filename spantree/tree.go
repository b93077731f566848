/*
	Package spantree builds a minimum spanning tree over grid coordinates using Manhattan
	distance.  The tree is grown from a single seed by repeatedly attaching the closest
	unconnected coordinate, which is O(N^2) for N coordinates.
*/
package spantree

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/janelia-flyem/chunkgrid/chunkgrid"
)

// DefaultParallelMin is the number of unconnected candidates below which relaxation
// runs on the calling goroutine even if more workers are allowed.
const DefaultParallelMin = 2048

// Edge joins two nodes of a Tree by index.  A is the node that was already part of the
// tree when B was attached.
type Edge struct {
	A, B   int
	Weight int32
}

// Tree is an undirected spanning tree.  Nodes are in attachment order, so Nodes[0] is
// the seed and Edges[i] attaches Nodes[i+1].
type Tree struct {
	Nodes []chunkgrid.Point2d
	Edges []Edge
}

// TotalWeight returns the sum of all edge weights.
func (t *Tree) TotalWeight() int64 {
	var total int64
	for _, e := range t.Edges {
		total += int64(e.Weight)
	}
	return total
}

// Options tune the tree build without changing its result.
type Options struct {
	// Workers is the maximum number of goroutines used to relax candidate distances.
	// Zero uses GOMAXPROCS; one forces a sequential build.
	Workers int

	// ParallelMin is the candidate count at which relaxation is split across workers.
	// Zero uses DefaultParallelMin.
	ParallelMin int
}

// candidate is an unconnected point with its closest distance to the tree.
type candidate struct {
	pos    chunkgrid.Point2d
	best   int32
	parent int // index into Tree.Nodes
}

// Build returns a minimum spanning tree over the given points, seeded with pts[0].
// Points must be distinct.
func Build(pts []chunkgrid.Point2d, opts Options) (*Tree, error) {
	if len(pts) == 0 {
		return nil, fmt.Errorf("cannot build spanning tree over zero points")
	}
	seen := make(map[chunkgrid.Point2d]struct{}, len(pts))
	for _, p := range pts {
		if _, dup := seen[p]; dup {
			return nil, fmt.Errorf("duplicate point %s given to spanning tree", p)
		}
		seen[p] = struct{}{}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	parallelMin := opts.ParallelMin
	if parallelMin <= 0 {
		parallelMin = DefaultParallelMin
	}

	tree := &Tree{
		Nodes: make([]chunkgrid.Point2d, 1, len(pts)),
		Edges: make([]Edge, 0, len(pts)-1),
	}
	tree.Nodes[0] = pts[0]

	cands := make([]candidate, len(pts)-1)
	for i, p := range pts[1:] {
		cands[i] = candidate{pos: p, best: math.MaxInt32}
	}
	if err := relax(cands, pts[0], 0, workers, parallelMin); err != nil {
		return nil, err
	}

	for len(cands) > 0 {
		// Closest candidate; ties keep the lowest index.
		min := 0
		for i := 1; i < len(cands); i++ {
			if cands[i].best < cands[min].best {
				min = i
			}
		}
		c := cands[min]
		nodeIndex := len(tree.Nodes)
		tree.Nodes = append(tree.Nodes, c.pos)
		tree.Edges = append(tree.Edges, Edge{A: c.parent, B: nodeIndex, Weight: c.best})

		// Remove while keeping candidate order stable so tie-breaks are reproducible.
		cands = append(cands[:min], cands[min+1:]...)
		if err := relax(cands, c.pos, nodeIndex, workers, parallelMin); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// relax lowers each candidate's best distance using the newly attached node.  Every
// worker owns a disjoint range of candidates.
func relax(cands []candidate, node chunkgrid.Point2d, nodeIndex, workers, parallelMin int) error {
	if workers <= 1 || len(cands) < parallelMin {
		relaxRange(cands, node, nodeIndex)
		return nil
	}
	chunkSize := (len(cands) + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(cands); start += chunkSize {
		end := start + chunkSize
		if end > len(cands) {
			end = len(cands)
		}
		part := cands[start:end]
		g.Go(func() error {
			relaxRange(part, node, nodeIndex)
			return nil
		})
	}
	return g.Wait()
}

func relaxRange(cands []candidate, node chunkgrid.Point2d, nodeIndex int) {
	for i := range cands {
		if d := cands[i].pos.ManhattanDistance(node); d < cands[i].best {
			cands[i].best = d
			cands[i].parent = nodeIndex
		}
	}
}
