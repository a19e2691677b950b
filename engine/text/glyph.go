package text

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Glyph is one rasterized character: a single-channel coverage bitmap plus
// its metrics in pixels.
type Glyph struct {
	Size    image.Point // bitmap width/height
	Bearing mgl32.Vec2  // x: left bearing, y: baseline to top
	Advance mgl32.Vec2  // x: horizontal advance, y: line advance
	Pixels  []byte      // one byte per pixel, rows packed with no padding
}

// GlyphSource is an ordered, stable set of glyphs.
type GlyphSource interface {
	GlyphCount() int
	// MaxGlyphSize is the per-axis maximum bitmap size across all glyphs.
	MaxGlyphSize() (w, h int)
	GlyphAt(i int) Glyph
}

// GlyphSet is a GlyphSource over an in-memory slice.
type GlyphSet []Glyph

func (s GlyphSet) GlyphCount() int     { return len(s) }
func (s GlyphSet) GlyphAt(i int) Glyph { return s[i] }

func (s GlyphSet) MaxGlyphSize() (w, h int) {
	for _, g := range s {
		w = max(w, g.Size.X)
		h = max(h, g.Size.Y)
	}
	return w, h
}
