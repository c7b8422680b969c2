// Package spatial implements the octree acceleration structure used to
// answer nearest-hit ray queries against a scene's triangles.
package spatial

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min core.Vec3
	Max core.Vec3
}

// NewAABB creates a new AABB from min and max corners.
func NewAABB(min, max core.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points.
func NewAABBFromPoints(points ...core.Vec3) AABB {
	min := points[0]
	max := points[0]
	for _, p := range points[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return AABB{Min: min, Max: max}
}

// Expand returns an AABB widened by amount in all six directions.
func (b AABB) Expand(amount float64) AABB {
	e := core.NewVec3(amount, amount, amount)
	return AABB{Min: b.Min.Subtract(e), Max: b.Max.Add(e)}
}

// Union returns the smallest AABB containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{Min: b.Min.Min(other.Min), Max: b.Max.Max(other.Max)}
}

// Center returns the midpoint of the box.
func (b AABB) Center() core.Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// Size returns the extent of the box along each axis.
func (b AABB) Size() core.Vec3 {
	return b.Max.Subtract(b.Min)
}

// Contains reports whether p lies within the box on every axis
// (inclusive both ends). Used for the leaf hit-acceptance test, where
// the box has already been tolerance-expanded by the caller.
func (b AABB) Contains(p core.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// MakeCubical extends the upper corner along each axis so the box
// becomes a cube with the largest of its three original extents,
// matching the root-bound construction described for the octree build.
func (b AABB) MakeCubical() AABB {
	size := b.Size()
	largest := math.Max(size.X, math.Max(size.Y, size.Z))
	return AABB{
		Min: b.Min,
		Max: core.NewVec3(b.Min.X+largest, b.Min.Y+largest, b.Min.Z+largest),
	}
}
