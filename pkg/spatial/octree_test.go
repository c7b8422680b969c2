package spatial

import (
	"math"
	"testing"

	"github.com/hxa7241/minilight-go/pkg/core"
)

// slabHit is a minimal ray/AABB intersection used only to exercise the
// octree in isolation from the geometry package (which depends on this
// package, not the other way around).
func slabHit(b AABB, ray core.Ray) (float64, bool) {
	tMin, tMax := 0.0, math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		o := ray.Origin.Component(axis)
		d := ray.Direction.Component(axis)
		lo := b.Min.Component(axis)
		hi := b.Max.Component(axis)
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

func unitBoxAt(center core.Vec3) AABB {
	half := core.NewVec3(0.5, 0.5, 0.5)
	return NewAABB(center.Subtract(half), center.Add(half))
}

func TestIndex_Traverse_FindsNearest(t *testing.T) {
	bounds := []AABB{
		unitBoxAt(core.NewVec3(0, 0, 5)),  // item 0: nearest
		unitBoxAt(core.NewVec3(0, 0, 10)), // item 1: farther, same ray
	}
	idx := Build(core.NewVec3(0, 0, 0), bounds)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	test := func(item int, r core.Ray) (float64, bool) { return slabHit(bounds[item], r) }

	item, _, ok := idx.Traverse(ray, NoItem, test)
	if !ok {
		t.Fatal("expected a hit")
	}
	if item != 0 {
		t.Errorf("Traverse() item = %d, want 0 (nearest)", item)
	}
}

func TestIndex_Traverse_SkipsLastHit(t *testing.T) {
	bounds := []AABB{unitBoxAt(core.NewVec3(0, 0, 5))}
	idx := Build(core.NewVec3(0, 0, 0), bounds)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	test := func(item int, r core.Ray) (float64, bool) { return slabHit(bounds[item], r) }

	_, _, ok := idx.Traverse(ray, 0, test)
	if ok {
		t.Error("expected no hit when the only item is the skipped lastHit")
	}
}

func TestIndex_Traverse_Miss(t *testing.T) {
	bounds := []AABB{unitBoxAt(core.NewVec3(10, 10, 10))}
	idx := Build(core.NewVec3(0, 0, 0), bounds)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	test := func(item int, r core.Ray) (float64, bool) { return slabHit(bounds[item], r) }

	if _, _, ok := idx.Traverse(ray, NoItem, test); ok {
		t.Error("expected no hit for a ray that misses every item")
	}
}

func TestIndex_Traverse_ManyItemsSubdivides(t *testing.T) {
	var bounds []AABB
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			bounds = append(bounds, unitBoxAt(core.NewVec3(float64(x)*2, float64(y)*2, 20)))
		}
	}
	idx := Build(core.NewVec3(0, 0, 0), bounds)
	if _, ok := idx.root.(*branchNode); !ok {
		t.Fatalf("expected root to subdivide with %d items (> MaxItems=%d)", len(bounds), MaxItems)
	}

	target := bounds[5].Center()
	ray := core.NewRay(core.NewVec3(target.X, target.Y, 0), core.NewVec3(0, 0, 1))
	test := func(item int, r core.Ray) (float64, bool) { return slabHit(bounds[item], r) }

	item, _, ok := idx.Traverse(ray, NoItem, test)
	if !ok {
		t.Fatal("expected a hit")
	}
	if item != 5 {
		t.Errorf("Traverse() item = %d, want 5", item)
	}
}

func TestIndex_Traverse_DepthNeverExceedsMaxLevels(t *testing.T) {
	// Many coincident items force maximum subdivision; the build must
	// still curtail to MaxLevels via the degenerate-subdivision rule.
	var bounds []AABB
	for i := 0; i < 1000; i++ {
		bounds = append(bounds, unitBoxAt(core.NewVec3(0, 0, 0)))
	}
	idx := Build(core.NewVec3(0, 0, 0), bounds)

	var depth func(n Node, level int) int
	depth = func(n Node, level int) int {
		branch, ok := n.(*branchNode)
		if !ok {
			return level
		}
		maxD := level
		for _, c := range branch.children {
			if c == nil {
				continue
			}
			if d := depth(c, level+1); d > maxD {
				maxD = d
			}
		}
		return maxD
	}

	if d := depth(idx.root, 0); d > MaxLevels {
		t.Errorf("tree depth %d exceeds MaxLevels %d", d, MaxLevels)
	}
}
