package text

import (
	"image"
	"image/draw"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontOptions controls rasterization.
type FontOptions struct {
	PixelSize int
	First     rune // first rune rasterized; glyph i is rune First+i
	Count     int  // number of consecutive runes
	Hinting   font.Hinting
}

func DefaultFontOptions() FontOptions {
	return FontOptions{PixelSize: 32, First: 0, Count: 256, Hinting: font.HintingFull}
}

// FontResource rasterizes a TrueType/OpenType font into a GlyphSource.
// Every rune in the configured range keeps its slot, runes the face does
// not cover get an empty bitmap.
type FontResource struct {
	glyphs    []Glyph
	first     rune
	pixelSize int
	maxSize   image.Point
	dataSize  int
	kern      map[[2]int]float32 // glyph index pair -> pixels, non-zero only

	Ascent, Descent, LineGap float32
}

func (f *FontResource) GlyphCount() int          { return len(f.glyphs) }
func (f *FontResource) GlyphAt(i int) Glyph      { return f.glyphs[i] }
func (f *FontResource) MaxGlyphSize() (int, int) { return f.maxSize.X, f.maxSize.Y }

// DataSize is the total number of coverage bytes held.
func (f *FontResource) DataSize() int  { return f.dataSize }
func (f *FontResource) PixelSize() int { return f.pixelSize }
func (f *FontResource) Loaded() bool   { return len(f.glyphs) > 0 }

// IndexOf maps r to its glyph index.
func (f *FontResource) IndexOf(r rune) (int, bool) {
	i := int(r - f.first)
	if r < f.first || i >= len(f.glyphs) {
		return 0, false
	}
	return i, true
}

// Kern is the horizontal adjustment in pixels between glyphs a and b,
// applied before b.
func (f *FontResource) Kern(a, b int) float32 { return f.kern[[2]int{a, b}] }

// LoadFile reads and rasterizes the font at path.
func (f *FontResource) LoadFile(path string, opts FontOptions) error {
	f.Unload()
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read font")
	}
	if err := f.LoadBytes(data, opts); err != nil {
		return errors.Wrapf(err, "load font %q", path)
	}
	return nil
}

// LoadBytes rasterizes font data already in memory.
func (f *FontResource) LoadBytes(data []byte, opts FontOptions) error {
	f.Unload()
	if opts.PixelSize <= 0 || opts.Count <= 0 || opts.First < 0 {
		return errors.Wrapf(ErrInvalidInput, "font options size=%d first=%d count=%d", opts.PixelSize, opts.First, opts.Count)
	}

	ft, err := opentype.Parse(data)
	if err != nil {
		return wrapKind(ErrNoFont, err, "parse font")
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size: float64(opts.PixelSize), DPI: 72, Hinting: opts.Hinting,
	})
	if err != nil {
		return errors.Wrap(err, "new face")
	}
	defer face.Close()

	// Metrics in pixels
	m := face.Metrics()
	lineAdvance := fixedToFloat(m.Height)

	glyphs := make([]Glyph, opts.Count)
	var maxSize image.Point
	dataSize := 0
	for i := range glyphs {
		// unmapped runes keep an empty slot
		g, _ := rasterize(face, opts.First+rune(i))
		g.Advance[1] = lineAdvance
		glyphs[i] = g
		maxSize.X = max(maxSize.X, g.Size.X)
		maxSize.Y = max(maxSize.Y, g.Size.Y)
		dataSize += len(g.Pixels)
	}

	f.glyphs = glyphs
	f.kern = kerningTable(ft, face, opts.First, opts.Count)
	f.first = opts.First
	f.pixelSize = opts.PixelSize
	f.maxSize = maxSize
	f.dataSize = dataSize
	f.Ascent = float32(m.Ascent.Round())
	f.Descent = float32(-m.Descent.Round())
	f.LineGap = float32(m.Height.Round()) - f.Ascent + f.Descent

	core.Logger().Info("font loaded",
		"pixel_size", opts.PixelSize,
		"glyphs", len(glyphs),
		"first_rune", opts.First,
		"max_glyph", maxSize,
		"bytes", dataSize,
		"kern_pairs", len(f.kern),
	)
	return nil
}

// rasterize renders r with its origin on the baseline and copies the mask
// into a tightly packed buffer owned by the glyph.
func rasterize(face font.Face, r rune) (Glyph, bool) {
	dr, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, false
	}
	g := Glyph{
		Size:    dr.Size(),
		Bearing: mgl32.Vec2{float32(dr.Min.X), float32(-dr.Min.Y)},
		Advance: mgl32.Vec2{fixedToFloat(adv), 0},
	}
	if dr.Empty() {
		g.Size = image.Point{}
		return g, true
	}
	// the face reuses its mask buffer between calls
	dst := image.NewAlpha(image.Rect(0, 0, g.Size.X, g.Size.Y))
	draw.Draw(dst, dst.Bounds(), mask, maskp, draw.Src)
	g.Pixels = dst.Pix
	return g, true
}

// Kerning is collected for every mapped pair when the range holds at most
// this many runes.
const maxKernRunes = 1024

func kerningTable(ft *sfnt.Font, face font.Face, first rune, count int) map[[2]int]float32 {
	if count > maxKernRunes {
		core.Logger().Debug("font kerning skipped", "glyphs", count, "limit", maxKernRunes)
		return nil
	}
	var buf sfnt.Buffer
	mapped := make([]int, 0, count)
	for i := 0; i < count; i++ {
		if gi, err := ft.GlyphIndex(&buf, first+rune(i)); err == nil && gi != 0 {
			mapped = append(mapped, i)
		}
	}
	kern := make(map[[2]int]float32)
	for _, a := range mapped {
		for _, b := range mapped {
			if k := face.Kern(first+rune(a), first+rune(b)); k != 0 {
				kern[[2]int{a, b}] = fixedToFloat(k)
			}
		}
	}
	return kern
}

func fixedToFloat(v fixed.Int26_6) float32 { return float32(v) / 64 }

// Unload drops every glyph.
func (f *FontResource) Unload() {
	*f = FontResource{}
}

// Move transfers the glyphs to a new resource and leaves f empty.
func (f *FontResource) Move() *FontResource {
	moved := *f
	f.Unload()
	return &moved
}
