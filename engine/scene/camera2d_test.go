package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func project(c *OrthoCamera2D, x, y float32) mgl32.Vec2 {
	p := c.VP().Mul4x1(mgl32.Vec4{x, y, 0, 1})
	return mgl32.Vec2{p[0], p[1]}
}

// near compares per component with an absolute tolerance; mgl32's
// ApproxEqual goes relative and fails against exact zeros.
func near(a, b mgl32.Vec2) bool {
	const eps = 1e-5
	return math.Abs(float64(a[0]-b[0])) < eps && math.Abs(float64(a[1]-b[1])) < eps
}

func TestOrthoCamera2D(t *testing.T) {
	c := NewOrtho2D(800, 600)
	tests := []struct {
		name   string
		setup  func(*OrthoCamera2D)
		x, y   float32
		expect mgl32.Vec2
	}{
		{"origin", func(*OrthoCamera2D) {}, 0, 0, mgl32.Vec2{0, 0}},
		{"corner", func(*OrthoCamera2D) {}, 400, 300, mgl32.Vec2{1, 1}},
		{"moved", func(c *OrthoCamera2D) { c.Move(400, 300) }, 400, 300, mgl32.Vec2{0, 0}},
		{"zoomed", func(c *OrthoCamera2D) { c.SetZoom(2) }, 200, 150, mgl32.Vec2{1, 1}},
		{"rotated", func(c *OrthoCamera2D) { c.Rotate(math.Pi / 2) }, 0, 100, mgl32.Vec2{0.25, 0}},
		{"rotated back", func(c *OrthoCamera2D) { c.Rotate(-math.Pi / 2) }, 100, 0, mgl32.Vec2{0, 1.0 / 3}},
		{"half turn", func(c *OrthoCamera2D) { c.Rotate(math.Pi) }, 400, 0, mgl32.Vec2{-1, 0}},
	}
	for _, tt := range tests {
		*c = *NewOrtho2D(800, 600)
		tt.setup(c)
		if got := project(c, tt.x, tt.y); !near(got, tt.expect) {
			t.Errorf("%s: (%v,%v) -> %v, want %v", tt.name, tt.x, tt.y, got, tt.expect)
		}
	}
}

func TestScreenCamera(t *testing.T) {
	c := NewScreen2D(800, 600)
	if got := project(c, 0, 0); !near(got, mgl32.Vec2{-1, 1}) {
		t.Fatalf("top-left -> %v", got)
	}
	if got := project(c, 800, 600); !near(got, mgl32.Vec2{1, -1}) {
		t.Fatalf("bottom-right -> %v", got)
	}
	if c.Width() != 800 || c.Height() != 600 {
		t.Fatalf("size %vx%v", c.Width(), c.Height())
	}
	c.SetViewportPixels(400, 200)
	if got := project(c, 400, 200); !near(got, mgl32.Vec2{1, -1}) {
		t.Fatalf("after resize bottom-right -> %v", got)
	}
}

func TestZoomClamp(t *testing.T) {
	c := NewOrtho2D(100, 100)
	c.SetZoom(0)
	if c.Zoom != 0.05 {
		t.Fatalf("Zoom = %v", c.Zoom)
	}
	c.ZoomBy(10)
	if math.Abs(float64(c.Zoom-0.5)) > 1e-6 || math.Abs(float64(c.Width()-200)) > 1e-3 {
		t.Fatalf("Zoom = %v Width = %v", c.Zoom, c.Width())
	}
}
