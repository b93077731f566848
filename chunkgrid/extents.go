package chunkgrid

// Extents3d holds the inclusive extents of a set of voxel positions.  The zero value
// holds no points.
type Extents3d struct {
	MinPoint Point3d
	MaxPoint Point3d

	valid bool
}

// Empty returns true if no point has been added to the extents.
func (ext *Extents3d) Empty() bool {
	return !ext.valid
}

// Extend grows the extents, if necessary, to include the given point.  Returns true if
// the extents changed.
func (ext *Extents3d) Extend(pt Point3d) bool {
	if !ext.valid {
		ext.MinPoint = pt
		ext.MaxPoint = pt
		ext.valid = true
		return true
	}
	oldMin, oldMax := ext.MinPoint, ext.MaxPoint
	ext.MinPoint.SetMinimum(pt)
	ext.MaxPoint.SetMaximum(pt)
	return oldMin != ext.MinPoint || oldMax != ext.MaxPoint
}

// Size returns the number of voxels along each axis, or a zero point for empty extents.
func (ext *Extents3d) Size() Point3d {
	if !ext.valid {
		return Point3d{}
	}
	return ext.MaxPoint.Sub(ext.MinPoint).AddScalar(1)
}

// Contains returns true if the point lies within the extents.
func (ext *Extents3d) Contains(pt Point3d) bool {
	if !ext.valid {
		return false
	}
	for i := 0; i < 3; i++ {
		if pt[i] < ext.MinPoint[i] || pt[i] > ext.MaxPoint[i] {
			return false
		}
	}
	return true
}

// Rect2d is a rectangle of grid cells starting at Origin with the given number of
// cells along x (Width) and z (Height).
type Rect2d struct {
	Origin Point2d
	Width  int32
	Height int32
}

// Contains returns true if the grid coordinate lies within the rectangle.
func (r Rect2d) Contains(p Point2d) bool {
	dx, dz := p[0]-r.Origin[0], p[1]-r.Origin[1]
	return dx >= 0 && dx < r.Width && dz >= 0 && dz < r.Height
}

// Area returns the number of cells in the rectangle.
func (r Rect2d) Area() int64 {
	return int64(r.Width) * int64(r.Height)
}
