package render

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
)

// MaxImageDimension bounds both width and height of an Image.
const MaxImageDimension = 4000

const (
	displayLuminanceMax = 200.0
	gammaEncode         = 0.45
)

var luminanceWeights = core.NewVec3(0.2126, 0.7152, 0.0722)

// Image accumulates radiance per pixel across render iterations and
// formats the result as a tone-mapped, gamma-encoded PPM (P6) image. It
// is the one mutable entity in the renderer; every other core type is
// immutable after construction.
type Image struct {
	width, height int
	pixels        []float64 // width*height*3, row-major, top row first
}

// NewImage creates a zero-initialized accumulator of the given size,
// with width and height each clamped to [1, MaxImageDimension].
func NewImage(width, height int) *Image {
	width = min(max(width, 1), MaxImageDimension)
	height = min(max(height, 1), MaxImageDimension)
	return &Image{
		width:  width,
		height: height,
		pixels: make([]float64, width*height*3),
	}
}

// Width returns the image width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the image height in pixels.
func (img *Image) Height() int { return img.height }

// AddToPixel adds rgb to pixel (x, y), commutatively. y is flipped at
// the index computation so the accumulator is stored top row first even
// though (x, y) addresses pixels with y increasing upward, matching the
// camera's image-plane convention.
func (img *Image) AddToPixel(x, y int, rgb core.Vec3) {
	if x < 0 || x >= img.width || y < 0 || y >= img.height {
		return
	}
	i := (x + (img.height-1-y)*img.width) * 3
	img.pixels[i+0] += rgb.X
	img.pixels[i+1] += rgb.Y
	img.pixels[i+2] += rgb.Z
}

func (img *Image) pixelAt(x, y int) core.Vec3 {
	i := (x + (img.height-1-y)*img.width) * 3
	return core.NewVec3(img.pixels[i+0], img.pixels[i+1], img.pixels[i+2])
}

// Format writes the accumulated image as a binary PPM (P6), dividing
// every channel by iteration (the number of samples accumulated per
// pixel so far), applying Ward luminance-adaptation tone mapping and
// 0.45-exponent gamma encoding, and quantizing to 8 bits per channel.
func (img *Image) Format(out io.Writer, iteration int) error {
	if _, err := io.WriteString(out, "P6\n# http://www.hxa.name/minilight\n\n"); err != nil {
		return fmt.Errorf("writing PPM header: %w", err)
	}
	if _, err := fmt.Fprintf(out, "%d %d\n255\n", img.width, img.height); err != nil {
		return fmt.Errorf("writing PPM dimensions: %w", err)
	}

	divider := 1.0 / math.Max(float64(iteration), 1)
	scale := img.wardToneMapScale(divider)

	buf := bufio.NewWriter(out)
	for p := 0; p < img.width*img.height; p++ {
		for c := 0; c < 3; c++ {
			value := img.pixels[p*3+c] * divider * scale
			value = math.Pow(math.Max(value, 0), gammaEncode)
			quantized := int(math.Floor(value*255 + 0.5))
			if quantized > 255 {
				quantized = 255
			} else if quantized < 0 {
				quantized = 0
			}
			if err := buf.WriteByte(byte(quantized)); err != nil {
				return fmt.Errorf("writing PPM pixel data: %w", err)
			}
		}
	}

	return buf.Flush()
}

// wardToneMapScale computes the scale factor applied to every channel
// before gamma encoding, per Ward's luminance-adaptation model.
func (img *Image) wardToneMapScale(divider float64) float64 {
	logSum := 0.0
	n := img.width * img.height
	for p := 0; p < n; p++ {
		y := core.NewVec3(img.pixels[p*3+0], img.pixels[p*3+1], img.pixels[p*3+2]).
			Multiply(divider).Dot(luminanceWeights)
		logSum += math.Log10(math.Max(y, 1e-4))
	}
	adaptLuminance := math.Pow(10, logSum/float64(n))

	a := 1.219 + math.Pow(displayLuminanceMax/4, 0.4)
	b := 1.219 + math.Pow(adaptLuminance, 0.4)

	return math.Pow(a/b, 2.5) / displayLuminanceMax
}
