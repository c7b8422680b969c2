// Package render implements MiniLight's path tracer, camera, image
// accumulator, and the progressive iteration loop that drives them.
package render

import (
	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
	"github.com/hxa7241/minilight-go/pkg/scene"
	"github.com/hxa7241/minilight-go/pkg/spatial"
)

// RayTracer estimates radiance along rays through a scene by recursive
// path tracing with next-event (emitter) sampling and Russian-roulette
// termination. It holds no mutable state of its own; all per-path state
// lives in the recursion and the caller-supplied RNG.
type RayTracer struct {
	Scene *scene.Scene
}

// NewRayTracer creates a RayTracer over scene.
func NewRayTracer(s *scene.Scene) *RayTracer {
	return &RayTracer{Scene: s}
}

// GetRadiance estimates the radiance arriving at origin from direction
// direction, continuing the path that last hit lastHit (spatial.NoItem
// for a fresh camera ray).
func (rt *RayTracer) GetRadiance(origin, direction core.Vec3, rng core.Rng, lastHit int) core.Vec3 {
	hitIdx, position, ok := rt.Scene.Intersect(origin, direction, lastHit)
	if !ok {
		return rt.Scene.DefaultEmission(direction.Negate())
	}

	tri := rt.Scene.Triangles[hitIdx]
	sp := geometry.SurfacePoint{Triangle: tri, Position: position}

	radiance := core.Vec3{}

	if lastHit == spatial.NoItem {
		radiance = radiance.Add(sp.Emission(origin, direction.Negate(), false))
	}

	radiance = radiance.Add(rt.sampleEmitters(sp, hitIdx, direction, rng))

	nextDir, color := sp.NextDirection(rng, direction.Negate())
	if !nextDir.IsZero() {
		continued := rt.GetRadiance(sp.Position, nextDir, rng, hitIdx)
		radiance = radiance.Add(color.MultiplyVec(continued))
	}

	return radiance
}

// sampleEmitters estimates the direct-lighting contribution at sp (whose
// own triangle index is spHit, to exclude as a shadow-ray self-hit) via a
// single shadow ray toward a uniformly sampled emitter.
func (rt *RayTracer) sampleEmitters(sp geometry.SurfacePoint, spHit int, outDirIn core.Vec3, rng core.Rng) core.Vec3 {
	emitterCount := rt.Scene.EmittersCount()
	if emitterCount == 0 {
		return core.Vec3{}
	}

	emitterPos, emitterIdx := rt.Scene.SampleEmitter(rng)
	if emitterIdx == spatial.NoItem {
		return core.Vec3{}
	}

	emitterDir := emitterPos.Subtract(sp.Position).Unit()

	// A shadow-ray hit counts as unshadowed only when it is exactly the
	// sampled emitter, even if a nearer occluder shares the emitter's
	// plane; this asymmetry is intentional and must not be "improved".
	emissionIn := core.Vec3{}
	hitIdx, _, hit := rt.Scene.Intersect(sp.Position, emitterDir, spHit)
	if !hit || hitIdx == emitterIdx {
		emitterTri := rt.Scene.Triangles[emitterIdx]
		emitterSp := geometry.SurfacePoint{Triangle: emitterTri, Position: emitterPos}
		emissionIn = emitterSp.Emission(sp.Position, emitterDir.Negate(), true)
	}

	lIn := emissionIn.Multiply(float64(emitterCount))
	return sp.Reflection(emitterDir, lIn, outDirIn.Negate())
}
