package geometry

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
)

// emissionSolidAngleFloor bounds the 1/distance^2 singularity in solid
// angle emission.
const emissionSolidAngleFloor = 1e-6

// SurfacePoint is the local shading frame at a ray hit: a triangle and a
// position on it (within tolerance). All direction arguments passed to
// its methods point away from the surface.
type SurfacePoint struct {
	Triangle *Triangle
	Position core.Vec3
}

// Emission returns the radiance emitted from this point toward
// toPosition, along outDir (unit, away from the surface). When
// isSolidAngle is true the result is weighted by the point's projected
// solid angle as seen from toPosition, for use in next-event estimation;
// otherwise it is the raw emissivity, for direct camera-ray hits.
func (sp SurfacePoint) Emission(toPosition, outDir core.Vec3, isSolidAngle bool) core.Vec3 {
	ray := toPosition.Subtract(sp.Position)
	distance2 := ray.LengthSquared()
	cosArea := outDir.Dot(sp.Triangle.Normal()) * sp.Triangle.Area()

	if cosArea <= 0 {
		return core.Vec3{}
	}

	solidAngle := cosArea / math.Max(distance2, emissionSolidAngleFloor)

	weight := 1.0
	if isSolidAngle {
		weight = solidAngle
	}
	return sp.Triangle.Emissivity.Multiply(weight)
}

// Reflection evaluates the Lambertian BRDF at this point: inDir (unit,
// toward the light), the incident radiance arriving along inDir, and
// outDir (unit, toward the eye).
func (sp SurfacePoint) Reflection(inDir, lIn, outDir core.Vec3) core.Vec3 {
	normal := sp.Triangle.Normal()
	ci := inDir.Dot(normal)
	co := outDir.Dot(normal)

	if -ci*co > 0 {
		return core.Vec3{}
	}

	return lIn.MultiplyVec(sp.Triangle.Reflectivity).Multiply(math.Abs(ci) / math.Pi)
}

// NextDirection samples a continuation direction for path tracing, given
// inDir (unit, toward the eye) and an RNG. Russian roulette may terminate
// the path, in which case it returns the zero direction and zero color.
func (sp SurfacePoint) NextDirection(rng core.Rng, inDir core.Vec3) (core.Vec3, core.Vec3) {
	reflectivityMean := sp.Triangle.Reflectivity.MeanComponent()

	if rng.Float64() >= reflectivityMean {
		return core.Vec3{}, core.Vec3{}
	}
	color := sp.Triangle.Reflectivity.Multiply(1.0 / reflectivityMean)

	r1 := rng.Float64()
	r2 := rng.Float64()
	phi := 2 * math.Pi * r1
	s := math.Sqrt(r2)
	x := math.Cos(phi) * s
	y := math.Sin(phi) * s
	z := math.Sqrt(1 - r2)

	normal := sp.Triangle.Normal()
	if normal.Dot(inDir) < 0 {
		normal = normal.Negate()
	}
	tangent := sp.Triangle.Tangent()
	bitangent := normal.Cross(tangent)

	outDir := tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(z))

	return outDir, color
}
