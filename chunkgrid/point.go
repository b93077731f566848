package chunkgrid

import (
	"fmt"
	"strconv"
	"strings"
)

// Point2d is a 2d grid coordinate.  The first element is the x coordinate and the
// second element is the z coordinate of a chunk in the horizontal plane.
type Point2d [2]int32

// X returns the x coordinate.
func (p Point2d) X() int32 {
	return p[0]
}

// Z returns the z coordinate.
func (p Point2d) Z() int32 {
	return p[1]
}

// Add returns the addition of two points.
func (p Point2d) Add(x Point2d) Point2d {
	return Point2d{p[0] + x[0], p[1] + x[1]}
}

// Sub returns the subtraction of the passed point from the receiver.
func (p Point2d) Sub(x Point2d) Point2d {
	return Point2d{p[0] - x[0], p[1] - x[1]}
}

// Less returns true if the receiver sorts before the passed point in (x, z)
// lexicographic order.
func (p Point2d) Less(x Point2d) bool {
	if p[0] != x[0] {
		return p[0] < x[0]
	}
	return p[1] < x[1]
}

// Compare returns -1, 0 or +1 depending on the lexicographic order of the points.
func (p Point2d) Compare(x Point2d) int {
	switch {
	case p.Less(x):
		return -1
	case x.Less(p):
		return 1
	default:
		return 0
	}
}

// ManhattanDistance returns the L1 distance between two grid coordinates.
func (p Point2d) ManhattanDistance(x Point2d) int32 {
	return abs32(p[0]-x[0]) + abs32(p[1]-x[1])
}

// Neighbors returns the 4-connected neighbors in the order +x, -x, +z, -z.
func (p Point2d) Neighbors() [4]Point2d {
	return [4]Point2d{
		{p[0] + 1, p[1]},
		{p[0] - 1, p[1]},
		{p[0], p[1] + 1},
		{p[0], p[1] - 1},
	}
}

func (p Point2d) String() string {
	return fmt.Sprintf("(%d,%d)", p[0], p[1])
}

// StringToPoint2d parses a string of form "x,z" (with given separator) into a Point2d.
func StringToPoint2d(str, separator string) (p Point2d, err error) {
	elems := strings.Split(str, separator)
	if len(elems) != 2 {
		err = fmt.Errorf("cannot convert %q into a 2d point", str)
		return
	}
	for i, elem := range elems {
		var n int64
		n, err = strconv.ParseInt(strings.TrimSpace(elem), 10, 32)
		if err != nil {
			return
		}
		p[i] = int32(n)
	}
	return
}

// Point3d is an ordered list of three 32-bit signed integers (x, y, z) giving a block
// position in voxel space.
type Point3d [3]int32

// Add returns the addition of two points.
func (p Point3d) Add(x Point3d) Point3d {
	return Point3d{p[0] + x[0], p[1] + x[1], p[2] + x[2]}
}

// Sub returns the subtraction of the passed point from the receiver.
func (p Point3d) Sub(x Point3d) Point3d {
	return Point3d{p[0] - x[0], p[1] - x[1], p[2] - x[2]}
}

// AddScalar adds a scalar value to each element of the point.
func (p Point3d) AddScalar(value int32) Point3d {
	return Point3d{p[0] + value, p[1] + value, p[2] + value}
}

// SetMinimum sets the point to the minimum elements of current and passed points.
func (p *Point3d) SetMinimum(p2 Point3d) {
	if p[0] > p2[0] {
		p[0] = p2[0]
	}
	if p[1] > p2[1] {
		p[1] = p2[1]
	}
	if p[2] > p2[2] {
		p[2] = p2[2]
	}
}

// SetMaximum sets the point to the maximum elements of current and passed points.
func (p *Point3d) SetMaximum(p2 Point3d) {
	if p[0] < p2[0] {
		p[0] = p2[0]
	}
	if p[1] < p2[1] {
		p[1] = p2[1]
	}
	if p[2] < p2[2] {
		p[2] = p2[2]
	}
}

// Prod returns the product of the point elements.
func (p Point3d) Prod() int64 {
	return int64(p[0]) * int64(p[1]) * int64(p[2])
}

func (p Point3d) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p[0], p[1], p[2])
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
