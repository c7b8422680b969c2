package render

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/spatial"
)

const (
	minViewAngleDegrees = 10.0
	maxViewAngleDegrees = 160.0
)

// Camera generates one stratified-jittered ray per pixel per iteration.
type Camera struct {
	position  core.Vec3
	viewDir   core.Vec3
	right     core.Vec3
	up        core.Vec3
	viewAngle float64 // radians
}

// NewCamera builds a Camera's orthonormal frame from a position, a view
// direction, and a view angle in degrees (clamped to [10, 160]). When
// viewDir is parallel to the Y axis, right falls back to a Z-axis pivot
// before the frame is completed.
func NewCamera(position, viewDir core.Vec3, viewAngleDegrees float64) *Camera {
	viewDir = viewDir.Unit()
	viewAngleDegrees = clamp(viewAngleDegrees, minViewAngleDegrees, maxViewAngleDegrees)

	right := core.NewVec3(0, 1, 0).Cross(viewDir).Unit()
	if right.IsZero() {
		upSign := 1.0
		if viewDir.Y > 0 {
			upSign = -1.0
		}
		up := core.NewVec3(0, 0, upSign)
		right = up.Cross(viewDir).Unit()
	}
	up := viewDir.Cross(right).Unit()

	return &Camera{
		position:  position,
		viewDir:   viewDir,
		right:     right,
		up:        up,
		viewAngle: viewAngleDegrees * math.Pi / 180.0,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// GetFrame fires one jittered ray per pixel of image through tracer into
// scene and accumulates the resulting radiance, using rng for both pixel
// jitter and the path tracer's sampling decisions. This is one iteration.
func (c *Camera) GetFrame(tracer *RayTracer, rng core.Rng, img *Image) {
	c.GetFrameRows(tracer, rng, img, 0, img.Height())
}

// GetFrameRows is GetFrame restricted to pixel rows [yStart, yEnd), so a
// parallel driver can assign disjoint row ranges to independent workers,
// each with its own RNG substream.
func (c *Camera) GetFrameRows(tracer *RayTracer, rng core.Rng, img *Image, yStart, yEnd int) {
	width, height := img.Width(), img.Height()
	aspect := float64(height) / float64(width)
	tanHalfAngle := math.Tan(c.viewAngle / 2)

	for y := yStart; y < yEnd; y++ {
		for x := 0; x < width; x++ {
			xc := (float64(x)+rng.Float64())*2/float64(width) - 1
			yc := (float64(y)+rng.Float64())*2/float64(height) - 1

			offset := c.right.Multiply(xc).Add(c.up.Multiply(yc * aspect))
			sampleDir := c.viewDir.Add(offset.Multiply(tanHalfAngle)).Unit()

			radiance := tracer.GetRadiance(c.position, sampleDir, rng, spatial.NoItem)
			img.AddToPixel(x, y, radiance)
		}
	}
}
