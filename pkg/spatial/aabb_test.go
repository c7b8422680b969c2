package spatial

import (
	"testing"

	"github.com/hxa7241/minilight-go/pkg/core"
)

func TestAABB_Expand(t *testing.T) {
	b := NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))
	got := b.Expand(0.5)
	want := NewAABB(core.NewVec3(-0.5, -0.5, -0.5), core.NewVec3(1.5, 1.5, 1.5))
	if got != want {
		t.Errorf("Expand() = %v, want %v", got, want)
	}
}

func TestAABB_MakeCubical(t *testing.T) {
	b := NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 2, 4))
	got := b.MakeCubical()
	want := NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(4, 4, 4))
	if got != want {
		t.Errorf("MakeCubical() = %v, want %v", got, want)
	}
}

func TestAABB_Contains(t *testing.T) {
	b := NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))
	if !b.Contains(core.NewVec3(0.5, 0.5, 0.5)) {
		t.Error("expected center to be contained")
	}
	if !b.Contains(core.NewVec3(0, 0, 0)) {
		t.Error("expected corner to be contained (inclusive)")
	}
	if b.Contains(core.NewVec3(1.1, 0, 0)) {
		t.Error("expected point outside box to not be contained")
	}
}

func TestAABB_Union(t *testing.T) {
	a := NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))
	b := NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(0.5, 0.5, 0.5))
	got := a.Union(b)
	want := NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))
	if got != want {
		t.Errorf("Union() = %v, want %v", got, want)
	}
}
