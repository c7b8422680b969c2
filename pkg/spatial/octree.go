package spatial

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
)

const (
	// MaxItems is the maximum number of items a leaf holds before the
	// builder tries to subdivide it further.
	MaxItems = 8
	// MaxLevels bounds the depth of the tree; passing this level to a
	// recursive build call forces a leaf regardless of item count.
	MaxLevels = 44
	// TriangleTolerance is the epsilon used both to expand triangle
	// bounds at construction and to test in-cell hit containment and
	// degenerate-subcell curtailment during the build.
	TriangleTolerance = 1.0 / 1024.0 // 2^-10
)

// Node is one arm of the octree's branch/leaf sum type.
type Node interface {
	bound() AABB
}

// leafNode stores item indices verbatim; it is a leaf either because it
// has few enough items or because the build reached MaxLevels.
type leafNode struct {
	box   AABB
	items []int
}

func (l *leafNode) bound() AABB { return l.box }

// branchNode holds exactly eight child slots; a nil slot is an empty
// subcell. Subcell index bit 0 = x-high, bit 1 = y-high, bit 2 = z-high.
type branchNode struct {
	box      AABB
	children [8]Node
}

func (b *branchNode) bound() AABB { return b.box }

// Index is an octree over a fixed slice of item bounds, built once and
// queried many times by Traverse.
type Index struct {
	root   Node
	bounds []AABB
}

// Build constructs the octree's root bound from the eye position and
// every item's bound, extends it to a cube, then recursively subdivides.
// bounds[i] must be the bound of item i; item i is referred to by index
// throughout traversal (never by pointer), per the ownership model: the
// index holds no owning reference to the underlying geometry.
func Build(eye core.Vec3, bounds []AABB) *Index {
	root := AABB{Min: eye, Max: eye}
	for _, b := range bounds {
		root = root.Union(b)
	}
	root = root.MakeCubical()

	items := make([]int, len(bounds))
	for i := range items {
		items[i] = i
	}

	return &Index{
		root:   buildNode(root, items, bounds, 0),
		bounds: bounds,
	}
}

// buildNode recursively subdivides bound's item list. level is the
// depth of this node; a level of MaxLevels-1 or more forces a leaf.
func buildNode(bound AABB, items []int, allBounds []AABB, level int) Node {
	if len(items) <= MaxItems || level >= MaxLevels-1 {
		return &leafNode{box: bound, items: items}
	}

	mid := bound.Center()
	var children [8]Node
	q1 := 0 // subcells so far that inherited the entire parent item set

	for n := 0; n < 8; n++ {
		subBound := subcellBound(bound, mid, n)
		subItems := itemsOverlapping(items, allBounds, subBound)
		if len(subItems) == 0 {
			continue
		}

		full := len(subItems) == len(items)
		q2 := subBound.Size().X < 4*TriangleTolerance

		childLevel := level + 1
		if q1 > 1 || q2 {
			// Degenerate subdivision: either a second sibling already
			// inherited the whole parent set, or this subcell is too
			// small to usefully subdivide further. Force a leaf.
			childLevel = MaxLevels
		}

		children[n] = buildNode(subBound, subItems, allBounds, childLevel)

		if full {
			q1++
		}
	}

	return &branchNode{box: bound, children: children}
}

// subcellBound returns the bound of subcell n (0-7) of a parent split at
// mid. Bit i of n selects the high half along axis i.
func subcellBound(parent AABB, mid core.Vec3, n int) AABB {
	var lo, hi core.Vec3

	if n&1 != 0 {
		lo.X, hi.X = mid.X, parent.Max.X
	} else {
		lo.X, hi.X = parent.Min.X, mid.X
	}
	if n&2 != 0 {
		lo.Y, hi.Y = mid.Y, parent.Max.Y
	} else {
		lo.Y, hi.Y = parent.Min.Y, mid.Y
	}
	if n&4 != 0 {
		lo.Z, hi.Z = mid.Z, parent.Max.Z
	} else {
		lo.Z, hi.Z = parent.Min.Z, mid.Z
	}

	return AABB{Min: lo, Max: hi}
}

// itemsOverlapping filters items to those whose bound overlaps subBound,
// inclusive on the low face and exclusive on the high face per axis.
func itemsOverlapping(items []int, allBounds []AABB, subBound AABB) []int {
	var out []int
	for _, idx := range items {
		b := allBounds[idx]
		if b.Max.X >= subBound.Min.X && b.Min.X < subBound.Max.X &&
			b.Max.Y >= subBound.Min.Y && b.Min.Y < subBound.Max.Y &&
			b.Max.Z >= subBound.Min.Z && b.Min.Z < subBound.Max.Z {
			out = append(out, idx)
		}
	}
	return out
}

// subcellIndexAt returns the subcell of a branch containing p, comparing
// each component against the branch's midpoint: bit i is set iff
// p[i] >= mid[i].
func subcellIndexAt(p, mid core.Vec3) int {
	n := 0
	if p.X >= mid.X {
		n |= 1
	}
	if p.Y >= mid.Y {
		n |= 2
	}
	if p.Z >= mid.Z {
		n |= 4
	}
	return n
}

// sbit encodes the outward-facing direction of subcell n's face along
// axis: -1 if bit `axis` of n is set, else +1.
func sbit(n, axis int) float64 {
	if n&(1<<uint(axis)) != 0 {
		return -1
	}
	return 1
}

// HitTest intersects item i against ray and returns the hit distance.
// It is supplied by the caller (the owner of the underlying geometry);
// the spatial index only ever deals in item indices and bounds.
type HitTest func(item int, ray core.Ray) (t float64, ok bool)

// NoItem is the sentinel "no such item" index, used both for lastHit
// (meaning "skip nothing") and as the not-found return value.
const NoItem = -1

const noItem = NoItem

// Traverse finds the nearest item hit by ray, skipping lastHit (pass
// noItem-equivalent, i.e. any value outside [0,len(bounds)), such as -1,
// to skip nothing). It descends/ascends the octree by stepping across
// subcell faces in ray order, so the first accepted hit found is
// necessarily the nearest.
func (idx *Index) Traverse(ray core.Ray, lastHit int, test HitTest) (item int, position core.Vec3, ok bool) {
	return traverseNode(idx.root, ray, ray.Origin, lastHit, test)
}

func traverseNode(n Node, ray core.Ray, start core.Vec3, lastHit int, test HitTest) (int, core.Vec3, bool) {
	switch node := n.(type) {
	case *leafNode:
		return traverseLeaf(node, ray, lastHit, test)
	case *branchNode:
		return traverseBranch(node, ray, start, lastHit, test)
	default:
		return noItem, core.Vec3{}, false
	}
}

func traverseLeaf(n *leafNode, ray core.Ray, lastHit int, test HitTest) (int, core.Vec3, bool) {
	cellBound := n.box.Expand(TriangleTolerance)

	best := noItem
	bestT := math.Inf(1)
	var bestPos core.Vec3

	for _, item := range n.items {
		if item == lastHit {
			continue
		}
		t, hit := test(item, ray)
		if !hit || t < 0 || t >= bestT {
			continue
		}
		pos := ray.At(t)
		if !cellBound.Contains(pos) {
			continue
		}
		best, bestT, bestPos = item, t, pos
	}

	if best == noItem {
		return noItem, core.Vec3{}, false
	}
	return best, bestPos, true
}

func traverseBranch(n *branchNode, ray core.Ray, start core.Vec3, lastHit int, test HitTest) (int, core.Vec3, bool) {
	mid := n.box.Center()
	subCell := subcellIndexAt(start, mid)
	cellPos := start

	for {
		if child := n.children[subCell]; child != nil {
			if item, pos, hit := traverseNode(child, ray, cellPos, lastHit, test); hit {
				return item, pos, true
			}
		}

		axis, dist, ok := nextFaceCrossing(n.box, mid, subCell, ray, cellPos)
		if !ok {
			return noItem, core.Vec3{}, false
		}

		if sbit(subCell, axis)*ray.Direction.Component(axis) < 0 {
			// Crossing the parent's outer boundary along this axis.
			return noItem, core.Vec3{}, false
		}

		cellPos = ray.Origin.Add(ray.Direction.Multiply(dist))
		subCell ^= 1 << uint(axis)
	}
}

// nextFaceCrossing finds the nearest face the ray exits subCell through,
// starting from cellPos: for each axis, the exit face is the midplane if
// the ray is moving toward it, otherwise the subcell's outer bound.
func nextFaceCrossing(parentBound AABB, mid core.Vec3, subCell int, ray core.Ray, cellPos core.Vec3) (axis int, dist float64, ok bool) {
	bestAxis := -1
	bestDist := math.Inf(1)

	for a := 0; a < 3; a++ {
		d := ray.Direction.Component(a)
		if d == 0 {
			continue
		}

		high := subCell&(1<<uint(a)) != 0
		movingTowardMid := (!high && d > 0) || (high && d < 0)

		var face float64
		if movingTowardMid {
			face = mid.Component(a)
		} else if high {
			face = parentBound.Max.Component(a)
		} else {
			face = parentBound.Min.Component(a)
		}

		t := (face - ray.Origin.Component(a)) / d
		if t < bestDist {
			bestDist, bestAxis = t, a
		}
	}

	if bestAxis == -1 {
		return 0, 0, false
	}
	return bestAxis, bestDist, true
}
