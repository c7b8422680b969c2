// Package geometry implements MiniLight's sole primitive, the triangle,
// and the surface-point BRDF contract built on top of it.
package geometry

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/spatial"
)

// intersectEpsilon rejects rays nearly parallel to the triangle's plane.
const intersectEpsilon = 1.0 / 1048576.0 // 2^-20

// Triangle is a flat, constant-reflectivity, constant-emissivity surface
// defined by three vertices. Unlike a general scene-graph node it carries
// no transform and no material indirection: reflectivity and emissivity
// are baked in at construction, per the non-goal of a minimal model.
type Triangle struct {
	V0, V1, V2  core.Vec3
	Reflectivity core.Vec3
	Emissivity   core.Vec3

	tangent core.Vec3
	normal  core.Vec3
	area    float64
	bound   spatial.AABB
}

// NewTriangle builds a Triangle, clamping reflectivity to [0,1]^3 and
// emissivity to non-negative, and caching its tangent, normal, area, and
// tolerance-expanded bound.
func NewTriangle(v0, v1, v2 core.Vec3, reflectivity, emissivity core.Vec3) *Triangle {
	t := &Triangle{
		V0:           v0,
		V1:           v1,
		V2:           v2,
		Reflectivity: reflectivity.Clamped(0, 1),
		Emissivity:   emissivity.Clamped(0, math.Inf(1)),
	}

	edge0 := v1.Subtract(v0)
	edge1 := v2.Subtract(v1)

	t.tangent = edge0.Unit()
	t.normal = t.tangent.Cross(edge1).Unit()
	t.area = edge0.Cross(edge1).Length() * 0.5

	t.bound = spatial.NewAABBFromPoints(v0, v1, v2).Expand(spatial.TriangleTolerance)

	return t
}

// Normal returns the triangle's unit face normal.
func (t *Triangle) Normal() core.Vec3 { return t.normal }

// Tangent returns the triangle's unit tangent (the unit edge v1-v0), used
// together with Normal to build a local surface frame.
func (t *Triangle) Tangent() core.Vec3 { return t.tangent }

// Area returns the triangle's area.
func (t *Triangle) Area() float64 { return t.area }

// Bound returns the triangle's tolerance-expanded axis-aligned bound.
func (t *Triangle) Bound() spatial.AABB { return t.bound }

// IsEmitter reports whether the triangle has any emissivity and positive
// area; zero-area or zero-emissivity triangles never get sampled as
// light sources.
func (t *Triangle) IsEmitter() bool {
	return t.area > 0 && !t.Emissivity.IsZero()
}

// Intersect tests ray against the triangle using Möller-Trumbore, with no
// back-face culling (MiniLight's triangles are two-sided). It returns the
// ray parameter t of the intersection, if any, with t > 0.
func (t *Triangle) Intersect(ray core.Ray) (float64, bool) {
	edge0 := t.V1.Subtract(t.V0)
	edge1 := t.V2.Subtract(t.V0)

	pVec := ray.Direction.Cross(edge1)
	det := edge0.Dot(pVec)

	if det > -intersectEpsilon && det < intersectEpsilon {
		return 0, false
	}
	invDet := 1.0 / det

	tVec := ray.Origin.Subtract(t.V0)
	u := tVec.Dot(pVec) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	qVec := tVec.Cross(edge0)
	v := ray.Direction.Dot(qVec) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist := edge1.Dot(qVec) * invDet
	if dist <= 0 {
		return 0, false
	}

	return dist, true
}

// Sample returns a uniformly distributed point on the triangle's surface
// given two uniform random numbers in [0,1), via the standard
// sqrt-barycentric construction.
func (t *Triangle) Sample(r1, r2 float64) core.Vec3 {
	sqrtR1 := math.Sqrt(r1)
	a := 1 - sqrtR1
	b := (1 - r2) * sqrtR1

	return t.V0.Multiply(a).Add(t.V1.Multiply(b)).Add(t.V2.Multiply(1 - a - b))
}
