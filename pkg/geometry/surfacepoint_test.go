package geometry

import (
	"math"
	"testing"

	"github.com/hxa7241/minilight-go/pkg/core"
)

func flatTriangle(reflectivity, emissivity core.Vec3) *Triangle {
	return NewTriangle(
		core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0),
		reflectivity, emissivity,
	)
}

func TestSurfacePoint_Emission_FrontFace(t *testing.T) {
	tri := flatTriangle(core.Vec3{}, core.NewVec3(1, 1, 1))
	sp := SurfacePoint{Triangle: tri, Position: core.NewVec3(0, 0, 0)}

	toPosition := core.NewVec3(0, 0, 5)
	outDir := core.NewVec3(0, 0, 1)

	got := sp.Emission(toPosition, outDir, false)
	if got != tri.Emissivity {
		t.Errorf("Emission(isSolidAngle=false) = %v, want raw emissivity %v", got, tri.Emissivity)
	}
}

func TestSurfacePoint_Emission_BackFaceIsZero(t *testing.T) {
	tri := flatTriangle(core.Vec3{}, core.NewVec3(1, 1, 1))
	sp := SurfacePoint{Triangle: tri, Position: core.NewVec3(0, 0, 0)}

	toPosition := core.NewVec3(0, 0, -5)
	outDir := core.NewVec3(0, 0, -1)

	if got := sp.Emission(toPosition, outDir, false); got != (core.Vec3{}) {
		t.Errorf("Emission() from back face = %v, want zero", got)
	}
}

func TestSurfacePoint_Emission_SolidAngleFloor(t *testing.T) {
	tri := flatTriangle(core.Vec3{}, core.NewVec3(1, 1, 1))
	sp := SurfacePoint{Triangle: tri, Position: core.NewVec3(0, 0, 0)}

	// toPosition coincident with sp.Position drives distance^2 to zero;
	// the floor must keep the result finite.
	got := sp.Emission(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1), true)
	if math.IsInf(got.X, 1) || math.IsNaN(got.X) {
		t.Errorf("Emission() with zero distance produced non-finite result: %v", got)
	}
}

func TestSurfacePoint_Reflection_OppositeSidesIsZero(t *testing.T) {
	tri := flatTriangle(core.NewVec3(0.5, 0.5, 0.5), core.Vec3{})
	sp := SurfacePoint{Triangle: tri, Position: core.NewVec3(0, 0, 0)}

	inDir := core.NewVec3(0, 0, 1)  // above the plane
	outDir := core.NewVec3(0, 0, -1) // below the plane
	lIn := core.NewVec3(1, 1, 1)

	if got := sp.Reflection(inDir, lIn, outDir); got != (core.Vec3{}) {
		t.Errorf("Reflection() across opposite sides = %v, want zero", got)
	}
}

func TestSurfacePoint_Reflection_SameSide(t *testing.T) {
	tri := flatTriangle(core.NewVec3(0.5, 0.5, 0.5), core.Vec3{})
	sp := SurfacePoint{Triangle: tri, Position: core.NewVec3(0, 0, 0)}

	inDir := core.NewVec3(0, 0, 1)
	outDir := core.NewVec3(0, 0, 1)
	lIn := core.NewVec3(1, 1, 1)

	got := sp.Reflection(inDir, lIn, outDir)
	want := lIn.MultiplyVec(tri.Reflectivity).Multiply(1.0 / math.Pi)
	if got != want {
		t.Errorf("Reflection() = %v, want %v", got, want)
	}
}

func TestSurfacePoint_NextDirection_RussianRouletteTermination(t *testing.T) {
	tri := flatTriangle(core.Vec3{}, core.Vec3{}) // zero reflectivity: always terminates
	sp := SurfacePoint{Triangle: tri, Position: core.NewVec3(0, 0, 0)}

	rng := core.NewLFSR113(core.ReferenceSeed)
	dir, color := sp.NextDirection(rng, core.NewVec3(0, 0, 1))
	if dir != (core.Vec3{}) || color != (core.Vec3{}) {
		t.Errorf("NextDirection() with zero reflectivity = (%v, %v), want (zero, zero)", dir, color)
	}
}

func TestSurfacePoint_NextDirection_SurvivingPathIsUnitAndInHemisphere(t *testing.T) {
	tri := flatTriangle(core.NewVec3(1, 1, 1), core.Vec3{}) // reflectivity 1: always survives
	sp := SurfacePoint{Triangle: tri, Position: core.NewVec3(0, 0, 0)}

	rng := core.NewLFSR113(core.ReferenceSeed)
	inDir := core.NewVec3(0, 0, 1)
	dir, color := sp.NextDirection(rng, inDir)

	if math.Abs(dir.Length()-1) > 1e-9 {
		t.Errorf("NextDirection() direction is not unit length: %v", dir)
	}
	if dir.Dot(tri.Normal()) < -1e-9 {
		t.Errorf("NextDirection() direction %v is not in the hemisphere around the normal %v", dir, tri.Normal())
	}
	if color != tri.Reflectivity {
		// reflectivity mean == 1 here, so the survival-compensated color
		// equals reflectivity / 1 exactly.
		t.Errorf("NextDirection() color = %v, want %v", color, tri.Reflectivity)
	}
}
