// Package scene owns a renderable model: its triangles, its emitters,
// its spatial index, and the background seen by rays that escape it.
package scene

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
	"github.com/hxa7241/minilight-go/pkg/spatial"
)

// MaxTriangles bounds the number of triangles a model file may define.
const MaxTriangles = 1 << 24

// Scene owns every triangle in a model, in construction order, along
// with the subset that are emitters and the spatial index built over
// them. It is immutable after construction.
type Scene struct {
	Triangles []*geometry.Triangle
	emitters  []int // indices into Triangles

	index *spatial.Index

	SkyEmission      core.Vec3
	GroundReflection core.Vec3
}

// New builds a Scene from triangles, the eye position (included in the
// spatial index's root bound per the octree's construction contract),
// and the model's sky emission and ground reflectance factor. Sky is
// clamped to non-negative; ground reflectance is derived as
// sky * clamp(groundRaw, 0, 1).
func New(eye core.Vec3, triangles []*geometry.Triangle, sky, groundRaw core.Vec3) *Scene {
	sky = sky.Clamped(0, math.Inf(1))

	s := &Scene{
		Triangles:        triangles,
		SkyEmission:      sky,
		GroundReflection: sky.MultiplyVec(groundRaw.Clamped(0, 1)),
	}

	bounds := make([]spatial.AABB, len(triangles))
	for i, tri := range triangles {
		bounds[i] = tri.Bound()
		if tri.IsEmitter() {
			s.emitters = append(s.emitters, i)
		}
	}
	s.index = spatial.Build(eye, bounds)

	return s
}

// Intersect finds the nearest triangle hit by the ray (origin, direction),
// skipping lastHit (spatial.NoItem to skip nothing). It returns the hit
// triangle's index, the hit position, and whether a hit was found.
func (s *Scene) Intersect(origin, direction core.Vec3, lastHit int) (int, core.Vec3, bool) {
	ray := core.NewRay(origin, direction)
	test := func(item int, r core.Ray) (float64, bool) {
		return s.Triangles[item].Intersect(r)
	}
	return s.index.Traverse(ray, lastHit, test)
}

// SampleEmitter selects one of the scene's emitter triangles uniformly
// at random and returns a uniformly sampled point on it, along with the
// triangle's index. If the scene has no emitters it returns the zero
// point and spatial.NoItem.
func (s *Scene) SampleEmitter(rng core.Rng) (core.Vec3, int) {
	n := len(s.emitters)
	if n == 0 {
		return core.Vec3{}, spatial.NoItem
	}

	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	triIdx := s.emitters[i]
	tri := s.Triangles[triIdx]

	return tri.Sample(rng.Float64(), rng.Float64()), triIdx
}

// EmittersCount returns the number of emitter triangles in the scene.
func (s *Scene) EmittersCount() int { return len(s.emitters) }

// DefaultEmission is the radiance seen by a ray that escapes the scene,
// given backDir (the ray's incoming direction negated, i.e. pointing
// back the way it came): sky if the ray exited downward (it came from
// the sky), ground if it exited upward or horizontally. The backDir.y < 0
// test is strict by design: a horizontal escaping ray sees the ground.
func (s *Scene) DefaultEmission(backDir core.Vec3) core.Vec3 {
	if backDir.Y < 0 {
		return s.SkyEmission
	}
	return s.GroundReflection
}
