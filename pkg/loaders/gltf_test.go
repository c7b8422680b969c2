package loaders

import "testing"

func TestLoadGLTF_InvalidPath(t *testing.T) {
	_, err := LoadGLTF("/nonexistent/path.glb")
	if err == nil {
		t.Error("expected an error for a nonexistent file")
	}
}
