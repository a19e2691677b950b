// Package assets resolves and loads files under the configured assets
// directory.
package assets

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Dir is an assets root, laid out as shaders/, textures/ and fonts/.
type Dir string

func (d Dir) path(kind, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(string(d), kind, name)
}

// Shader reads a GLSL file.
func (d Dir) Shader(name string) (string, error) {
	path := d.path("shaders", name)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "load shader %q", name)
	}
	return string(b), nil
}

// FontBytes reads a TrueType/OpenType file from fonts/.
func (d Dir) FontBytes(name string) ([]byte, error) {
	path := d.path("fonts", name)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load font %q", name)
	}
	return b, nil
}
