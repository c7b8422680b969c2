package loaders

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
)

// LoadGLTF loads a glTF or GLB mesh file and converts every triangle
// primitive into a geometry.Triangle, mapping each primitive's material
// baseColorFactor to reflectivity and emissiveFactor to emissivity (both
// of which Triangle clamps to MiniLight's valid ranges at construction).
// Meshes with no material default to a neutral grey, non-emitting
// surface.
func LoadGLTF(path string) ([]*geometry.Triangle, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf %q: %w", path, err)
	}

	var triangles []*geometry.Triangle
	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}

			positions, err := readPositions(doc, prim)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
			}

			reflectivity, emissivity := materialQualities(doc, prim.Material)

			indices, err := triangleIndices(doc, prim, len(positions))
			if err != nil {
				return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
			}

			for i := 0; i+2 < len(indices); i += 3 {
				triangles = append(triangles, geometry.NewTriangle(
					positions[indices[i]], positions[indices[i+1]], positions[indices[i+2]],
					reflectivity, emissivity,
				))
			}
		}
	}

	return triangles, nil
}

func readPositions(doc *gltf.Document, prim *gltf.Primitive) ([]core.Vec3, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}

	accessor := doc.Accessors[posIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("POSITION accessor is not VEC3")
	}

	floats, err := readVec3Data(doc, accessor)
	if err != nil {
		return nil, err
	}

	positions := make([]core.Vec3, len(floats))
	for i, f := range floats {
		positions[i] = core.NewVec3(float64(f[0]), float64(f[1]), float64(f[2]))
	}
	return positions, nil
}

func triangleIndices(doc *gltf.Document, prim *gltf.Primitive, vertexCount int) ([]int, error) {
	if prim.Indices == nil {
		indices := make([]int, vertexCount)
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}

	accessor := doc.Accessors[*prim.Indices]
	return readIndexData(doc, accessor)
}

// materialQualities maps a glTF material's baseColorFactor and
// emissiveFactor onto MiniLight's reflectivity/emissivity model. A
// missing material yields a neutral, non-emitting grey surface.
func materialQualities(doc *gltf.Document, materialIdx *uint32) (core.Vec3, core.Vec3) {
	reflectivity := core.NewVec3(0.7, 0.7, 0.7)
	emissivity := core.Vec3{}

	if materialIdx == nil || int(*materialIdx) >= len(doc.Materials) {
		return reflectivity, emissivity
	}
	mat := doc.Materials[*materialIdx]

	if mat.PBRMetallicRoughness != nil && mat.PBRMetallicRoughness.BaseColorFactor != nil {
		c := mat.PBRMetallicRoughness.BaseColorFactor
		reflectivity = core.NewVec3(float64(c[0]), float64(c[1]), float64(c[2]))
	}
	emissivity = core.NewVec3(
		float64(mat.EmissiveFactor[0]),
		float64(mat.EmissiveFactor[1]),
		float64(mat.EmissiveFactor[2]),
	)

	return reflectivity, emissivity
}

func readVec3Data(doc *gltf.Document, accessor *gltf.Accessor) ([][3]float32, error) {
	bufData, start, stride, err := accessorBuffer(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([][3]float32, accessor.Count)
	for i := 0; i < accessor.Count; i++ {
		offset := start + i*stride
		for j := 0; j < 3; j++ {
			result[i][j] = readFloat32(bufData[offset+j*4:])
		}
	}
	return result, nil
}

func readIndexData(doc *gltf.Document, accessor *gltf.Accessor) ([]int, error) {
	componentSize := 2
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		componentSize = 1
	case gltf.ComponentUint:
		componentSize = 4
	}

	bufData, start, stride, err := accessorBuffer(doc, accessor, componentSize)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := 0; i < accessor.Count; i++ {
		offset := start + i*stride
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			result[i] = int(bufData[offset])
		case gltf.ComponentUint:
			result[i] = int(readUint32(bufData[offset:]))
		default: // ComponentUshort
			result[i] = int(uint16(bufData[offset]) | uint16(bufData[offset+1])<<8)
		}
	}
	return result, nil
}

// accessorBuffer resolves accessor's backing bytes, start offset, and
// per-element stride (defaulting to defaultStride when the buffer view
// specifies none).
func accessorBuffer(doc *gltf.Document, accessor *gltf.Accessor, defaultStride int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("external glTF buffers are not supported")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = defaultStride
	}
	start := bufferView.ByteOffset + accessor.ByteOffset

	return buffer.Data, start, stride, nil
}

func readFloat32(b []byte) float32 {
	return math.Float32frombits(readUint32(b))
}

func readUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
