package geometry

import (
	"math"
	"testing"

	"github.com/hxa7241/minilight-go/pkg/core"
)

func TestTriangle_Intersect(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0),
		core.NewVec3(0.5, 0.5, 0.5), core.Vec3{},
	)

	tests := []struct {
		name      string
		ray       core.Ray
		shouldHit bool
		wantT     float64
	}{
		{
			name:      "straight on, center",
			ray:       core.NewRay(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1)),
			shouldHit: true,
			wantT:     1.0,
		},
		{
			name:      "misses outside the triangle",
			ray:       core.NewRay(core.NewVec3(5, 5, -1), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
		{
			name:      "parallel to the plane",
			ray:       core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)),
			shouldHit: false,
		},
		{
			name:      "behind the ray origin",
			ray:       core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1)),
			shouldHit: false,
		},
		{
			name:      "two-sided: hit from the back",
			ray:       core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)),
			shouldHit: true,
			wantT:     1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist, ok := tri.Intersect(tt.ray)
			if ok != tt.shouldHit {
				t.Fatalf("Intersect() ok = %v, want %v", ok, tt.shouldHit)
			}
			if tt.shouldHit && math.Abs(dist-tt.wantT) > 1e-9 {
				t.Errorf("Intersect() t = %v, want %v", dist, tt.wantT)
			}
		})
	}
}

func TestTriangle_AreaAndNormal(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0),
		core.Vec3{}, core.Vec3{},
	)

	if got, want := tri.Area(), 2.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Area() = %v, want %v", got, want)
	}

	n := tri.Normal()
	if math.Abs(n.Length()-1) > 1e-9 {
		t.Errorf("Normal() is not unit length: %v", n)
	}
	if math.Abs(n.Z) < 1-1e-9 {
		t.Errorf("Normal() = %v, want ~(0,0,±1)", n)
	}
}

func TestTriangle_ReflectivityEmissivityClamped(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.NewVec3(1.5, -0.5, 0.5), core.NewVec3(-1, 2, 3),
	)

	wantRefl := core.NewVec3(1, 0, 0.5)
	if tri.Reflectivity != wantRefl {
		t.Errorf("Reflectivity = %v, want %v (clamped to [0,1])", tri.Reflectivity, wantRefl)
	}

	wantEmit := core.NewVec3(0, 2, 3)
	if tri.Emissivity != wantEmit {
		t.Errorf("Emissivity = %v, want %v (clamped to >=0)", tri.Emissivity, wantEmit)
	}
}

func TestTriangle_IsEmitter(t *testing.T) {
	emitter := NewTriangle(
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.Vec3{}, core.NewVec3(1, 1, 1),
	)
	if !emitter.IsEmitter() {
		t.Error("expected emitter with positive emissivity and area to be an emitter")
	}

	dark := NewTriangle(
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.Vec3{}, core.Vec3{},
	)
	if dark.IsEmitter() {
		t.Error("expected zero-emissivity triangle to not be an emitter")
	}

	degenerate := NewTriangle(
		core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 0),
		core.Vec3{}, core.NewVec3(1, 1, 1),
	)
	if degenerate.IsEmitter() {
		t.Error("expected zero-area triangle to not be an emitter")
	}
}

func TestTriangle_SampleIsOnPlaneAndInBounds(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.Vec3{}, core.Vec3{},
	)

	for _, rs := range [][2]float64{{0, 0}, {0.3, 0.7}, {0.99, 0.01}, {1, 1}} {
		p := tri.Sample(rs[0], rs[1])
		if p.Z != 0 {
			t.Errorf("Sample(%v) not on triangle's plane: %v", rs, p)
		}
		if p.X < -1e-9 || p.Y < -1e-9 || p.X+p.Y > 1+1e-9 {
			t.Errorf("Sample(%v) outside triangle: %v", rs, p)
		}
	}
}

func TestTriangle_Bound(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(1, 3, 0),
		core.Vec3{}, core.Vec3{},
	)
	b := tri.Bound()
	if b.Min.X > 0 || b.Min.Y > 0 || b.Max.X < 2 || b.Max.Y < 3 {
		t.Errorf("Bound() = %v does not contain the triangle's vertices", b)
	}
}
