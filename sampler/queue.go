package sampler

import "github.com/janelia-flyem/chunkgrid/chunkgrid"

// Cell is a grid coordinate with its masked hash.
type Cell struct {
	Pos  chunkgrid.Point2d
	Hash uint64
}

// Less orders cells by ascending hash, with the coordinate breaking ties.
func (c Cell) Less(other Cell) bool {
	if c.Hash != other.Hash {
		return c.Hash < other.Hash
	}
	return c.Pos.Less(other.Pos)
}

// cellQueue is a value-based binary min-heap of cells.
type cellQueue struct {
	items []Cell
}

func (q *cellQueue) Len() int { return len(q.items) }

// top returns the minimum cell without removing it.
func (q *cellQueue) top() (Cell, bool) {
	if len(q.items) == 0 {
		return Cell{}, false
	}
	return q.items[0], true
}

func (q *cellQueue) push(c Cell) {
	q.items = append(q.items, c)
	q.siftUp(len(q.items) - 1)
}

func (q *cellQueue) pop() (Cell, bool) {
	n := len(q.items)
	if n == 0 {
		return Cell{}, false
	}
	root := q.items[0]
	last := q.items[n-1]
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}
	return root, true
}

func (q *cellQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.items[i].Less(q.items[p]) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *cellQueue) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.items[r].Less(q.items[l]) {
			best = r
		}
		if !q.items[best].Less(q.items[i]) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
