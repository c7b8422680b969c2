package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
)

// plyProperty is a property definition parsed from a PLY header.
type plyProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string
	DataType string
}

// plyHeader holds everything LoadPLY needs to read a binary-little-endian
// PLY file's vertex and face elements.
type plyHeader struct {
	Format      string
	VertexCount int
	FaceCount   int
	VertexProps []plyProperty
	xIndex, yIndex, zIndex int
}

// LoadPLY loads a binary-little-endian PLY mesh and converts it to
// geometry.Triangle values, given a uniform reflectivity and emissivity
// to apply to every face (PLY carries no MiniLight surface qualities, so
// the caller supplies them). Only the x/y/z vertex position properties
// and a "vertex_indices" face list are read; per-vertex normals,
// colors, and texture coordinates are not needed by MiniLight's flat,
// constant-quality triangle model and are skipped.
func LoadPLY(path string, reflectivity, emissivity core.Vec3) ([]*geometry.Triangle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open PLY file: %w", err)
	}
	defer file.Close()

	header, headerSize, err := parsePLYHeader(file)
	if err != nil {
		return nil, fmt.Errorf("parse PLY header: %w", err)
	}
	if header.Format != "binary_little_endian" {
		return nil, fmt.Errorf("unsupported PLY format %q (only binary_little_endian is supported)", header.Format)
	}

	if _, err := file.Seek(int64(headerSize), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to PLY binary data: %w", err)
	}

	vertices, err := readPLYVertices(file, header)
	if err != nil {
		return nil, fmt.Errorf("read PLY vertices: %w", err)
	}

	faces, err := readPLYFaces(bufio.NewReaderSize(file, 1<<20), header)
	if err != nil {
		return nil, fmt.Errorf("read PLY faces: %w", err)
	}

	triangles := make([]*geometry.Triangle, 0, len(faces))
	for _, f := range faces {
		triangles = append(triangles, geometry.NewTriangle(
			vertices[f[0]], vertices[f[1]], vertices[f[2]], reflectivity, emissivity,
		))
	}
	return triangles, nil
}

func parsePLYHeader(file *os.File) (*plyHeader, int, error) {
	header := &plyHeader{xIndex: -1, yIndex: -1, zIndex: -1}

	scanner := bufio.NewScanner(file)
	bytesRead := 0
	currentElement := ""

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		bytesRead += len(scanner.Bytes()) + 1

		if line == "end_header" {
			break
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) >= 2 {
				header.Format = parts[1]
			}
		case "element":
			if len(parts) >= 3 {
				count, err := strconv.Atoi(parts[2])
				if err != nil {
					return nil, 0, fmt.Errorf("invalid element count %q: %w", parts[2], err)
				}
				currentElement = parts[1]
				switch currentElement {
				case "vertex":
					header.VertexCount = count
				case "face":
					header.FaceCount = count
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, 0, err
			}
			if currentElement != "vertex" {
				continue
			}
			switch prop.Name {
			case "x":
				header.xIndex = len(header.VertexProps)
			case "y":
				header.yIndex = len(header.VertexProps)
			case "z":
				header.zIndex = len(header.VertexProps)
			}
			header.VertexProps = append(header.VertexProps, prop)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading PLY header: %w", err)
	}
	if header.xIndex < 0 || header.yIndex < 0 || header.zIndex < 0 {
		return nil, 0, fmt.Errorf("PLY vertex element is missing x/y/z properties")
	}

	return header, bytesRead, nil
}

func parsePLYProperty(parts []string) (plyProperty, error) {
	if len(parts) < 2 {
		return plyProperty{}, fmt.Errorf("invalid PLY property definition")
	}
	if parts[0] == "list" {
		if len(parts) < 4 {
			return plyProperty{}, fmt.Errorf("invalid PLY list property definition")
		}
		return plyProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}, nil
	}
	return plyProperty{Type: parts[0], Name: parts[1]}, nil
}

func plyTypeSize(t string) int {
	switch t {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64", "int64", "uint64":
		return 8
	default:
		return 4
	}
}

func readPLYVertices(file *os.File, header *plyHeader) ([]core.Vec3, error) {
	vertexSize := 0
	offsets := make([]int, len(header.VertexProps))
	for i, p := range header.VertexProps {
		offsets[i] = vertexSize
		vertexSize += plyTypeSize(p.Type)
	}

	data := make([]byte, vertexSize*header.VertexCount)
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, fmt.Errorf("reading vertex data: %w", err)
	}

	readFloat := func(rec []byte, propIdx int) float64 {
		off := offsets[propIdx]
		switch header.VertexProps[propIdx].Type {
		case "double", "float64":
			return readFloat64LE(rec[off:])
		default:
			return float64(readFloat32LE(rec[off:]))
		}
	}

	vertices := make([]core.Vec3, header.VertexCount)
	for i := 0; i < header.VertexCount; i++ {
		rec := data[i*vertexSize : (i+1)*vertexSize]
		vertices[i] = core.NewVec3(
			readFloat(rec, header.xIndex),
			readFloat(rec, header.yIndex),
			readFloat(rec, header.zIndex),
		)
	}
	return vertices, nil
}

// readPLYFaces reads the "vertex_indices" list property of each face
// element and fan-triangulates faces with more than three vertices.
func readPLYFaces(r *bufio.Reader, header *plyHeader) ([][3]int, error) {
	var faces [][3]int

	for i := 0; i < header.FaceCount; i++ {
		var count uint8
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("reading face %d vertex count: %w", i, err)
		}

		indices := make([]int32, count)
		if err := binary.Read(r, binary.LittleEndian, &indices); err != nil {
			return nil, fmt.Errorf("reading face %d indices: %w", i, err)
		}

		for v := 1; v+1 < len(indices); v++ {
			faces = append(faces, [3]int{int(indices[0]), int(indices[v]), int(indices[v+1])})
		}
	}
	return faces, nil
}

func readFloat32LE(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

func readFloat64LE(b []byte) float64 {
	bits := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	return math.Float64frombits(bits)
}
