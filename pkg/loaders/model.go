// Package loaders parses MiniLight's line-oriented model-file grammar
// into a scene.Scene, plus supplemental mesh importers for other formats.
package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
	"github.com/hxa7241/minilight-go/pkg/scene"
)

// ErrorKind classifies a model-loading failure.
type ErrorKind int

const (
	// Internal is any unexpected failure not covered by the other kinds.
	Internal ErrorKind = iota
	// FileNotFound means the model file could not be opened.
	FileNotFound
	// InvalidFormat means the file's content does not match the grammar.
	InvalidFormat
)

// Error is a model-loading failure tagged with its ErrorKind.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func formatErr(format string, args ...interface{}) error {
	return &Error{Kind: InvalidFormat, Msg: fmt.Sprintf(format, args...)}
}

const modelHeaderPrefix = "#MiniLight"

// Model is a parsed model file, ready to build a scene.Scene and a
// render.Camera from.
type Model struct {
	Iterations  int
	Width       int
	Height      int
	CameraEye   core.Vec3
	CameraDir   core.Vec3
	ViewAngle   float64
	SkyEmission core.Vec3
	GroundRaw   core.Vec3
	Triangles   []*geometry.Triangle
}

// Scene builds a scene.Scene from the parsed model.
func (m *Model) Scene() *scene.Scene {
	return scene.New(m.CameraEye, m.Triangles, m.SkyEmission, m.GroundRaw)
}

// Load opens and parses the model file at path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Kind: FileNotFound, Msg: fmt.Sprintf("model file not found: %s", path)}
		}
		return nil, &Error{Kind: Internal, Msg: fmt.Sprintf("opening model file: %v", err)}
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads a model from r per the grammar:
//  1. a first line beginning with "#MiniLight"
//  2. an integer iteration count
//  3. two integers, image width and height
//  4. a camera line: (px py pz) (dx dy dz) angleDegrees
//  5. a background line: (sr sg sb) (gr gg gb)
//  6. zero or more triangle lines: (v0) (v1) (v2) (rr rg rb) (er eg eb)
//
// Blank lines are permitted between sections.
func Parse(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)

	firstLine, err := br.ReadString('\n')
	if err != nil && firstLine == "" {
		return nil, formatErr("model file is empty or unreadable: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(firstLine), modelHeaderPrefix) {
		return nil, formatErr("first line must begin with %q", modelHeaderPrefix)
	}

	toks := newTokenizer(br)
	m := &Model{}

	m.Iterations, err = toks.nextInt("iterations")
	if err != nil {
		return nil, err
	}
	m.Width, err = toks.nextInt("image width")
	if err != nil {
		return nil, err
	}
	m.Height, err = toks.nextInt("image height")
	if err != nil {
		return nil, err
	}

	m.CameraEye, err = toks.nextVec3("camera position")
	if err != nil {
		return nil, err
	}
	m.CameraDir, err = toks.nextVec3("camera direction")
	if err != nil {
		return nil, err
	}
	m.ViewAngle, err = toks.nextFloat("camera view angle")
	if err != nil {
		return nil, err
	}

	m.SkyEmission, err = toks.nextVec3("sky emission")
	if err != nil {
		return nil, err
	}
	m.GroundRaw, err = toks.nextVec3("ground reflection")
	if err != nil {
		return nil, err
	}

	for {
		v0, ok, err := toks.tryVec3()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if len(m.Triangles) >= scene.MaxTriangles {
			return nil, formatErr("model exceeds MAX_TRIANGLES (%d)", scene.MaxTriangles)
		}

		v1, err := toks.nextVec3("triangle vertex 1")
		if err != nil {
			return nil, err
		}
		v2, err := toks.nextVec3("triangle vertex 2")
		if err != nil {
			return nil, err
		}
		reflectivity, err := toks.nextVec3("triangle reflectivity")
		if err != nil {
			return nil, err
		}
		emissivity, err := toks.nextVec3("triangle emissivity")
		if err != nil {
			return nil, err
		}

		m.Triangles = append(m.Triangles, geometry.NewTriangle(v0, v1, v2, reflectivity, emissivity))
	}

	return m, nil
}
