package text

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/pkg/errors"
)

// AtlasEntry locates one glyph inside the atlas texture.
//
// UV holds the top-left and bottom-right corners in texel coordinates: the
// atlas is a rectangle texture and is sampled unnormalized. The bottom-right
// corner bounds the glyph bitmap, not the whole cell. Advance, Bearing and
// Size are the glyph metrics divided by the grid dimension, which puts them
// in text-mesh units.
type AtlasEntry struct {
	UV      [2]mgl32.Vec2
	Advance mgl32.Vec2
	Bearing mgl32.Vec2
	Size    mgl32.Vec2
}

// AtlasOptions tune Load. The zero value is the square layout with lenient
// uploads.
type AtlasOptions struct {
	Layout Layout
	// Strict fails the load on the first glyph upload error instead of
	// logging it and moving on.
	Strict bool
}

// noCopy makes go vet's copylocks check reject copies of an Atlas.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Atlas packs every glyph of a GlyphSource into one single-channel texture,
// one uniform cell per glyph, and keeps an entry table index-aligned with
// the source order.
//
// An Atlas exclusively owns its texture and entries; the two are either
// both present or both absent. Use Move or MoveFrom to hand it over. It is
// not safe for concurrent use and must be driven from the thread owning the
// graphics context.
type Atlas struct {
	noCopy noCopy

	dev          core.TextureDevice
	tex          core.Texture
	entries      []AtlasEntry
	grid         grid
	uploadErrors int
}

// Load builds the atlas with default options.
func (a *Atlas) Load(dev core.TextureDevice, src GlyphSource) error {
	return a.LoadWithOptions(dev, src, AtlasOptions{})
}

// LoadWithOptions replaces any previous atlas with one built from src. On
// error the atlas is left empty.
func (a *Atlas) LoadWithOptions(dev core.TextureDevice, src GlyphSource, opts AtlasOptions) error {
	a.Unload()
	log := core.Logger()

	n := src.GlyphCount()
	cellW, cellH := src.MaxGlyphSize()
	g, err := planGrid(n, cellW, cellH, opts.Layout)
	if err != nil {
		log.Error("font atlas rejected", "err", err)
		return err
	}
	texW, texH := g.textureSize()

	log.Info("loading font atlas",
		"max_texture_size", dev.MaxTextureSize(),
		"layout", opts.Layout,
		"grid", fmt.Sprintf("%dx%d", g.cols, g.rows),
		"glyphs", n,
		"cell", fmt.Sprintf("%dx%d", cellW, cellH),
		"texture", fmt.Sprintf("%dx%d", texW, texH),
	)
	if g.cells < n {
		log.Warn("font atlas drops glyphs past the square grid", "placed", g.cells, "dropped", n-g.cells)
	}

	if limit := dev.MaxTextureSize(); limit > 0 && (texW > limit || texH > limit) {
		err := errors.Wrapf(ErrAllocation, "%dx%d texture exceeds device limit %d", texW, texH, limit)
		log.Error("font atlas allocation failed", "err", err)
		return err
	}

	tex, err := dev.CreateTexture(core.TextureDesc{
		Width:     texW,
		Height:    texH,
		Format:    core.TextureR8,
		Target:    core.TargetRectangle,
		MinFilter: "nearest",
		MagFilter: "nearest",
		WrapU:     "border",
		WrapV:     "border",
	})
	if err != nil {
		err = wrapKind(ErrAllocation, err, "%dx%d texture", texW, texH)
		log.Error("font atlas allocation failed", "err", err)
		return err
	}

	entries := make([]AtlasEntry, g.cells)
	uploadErrors := 0
	err = core.WithUnpackAlignment(dev, 1, func() error {
		var err error
		uploadErrors, err = uploadGlyphs(dev, tex, src, g, entries, opts.Strict)
		return err
	})
	if err != nil {
		dev.DeleteTexture(tex)
		log.Error("font atlas upload failed", "err", err)
		return err
	}
	if err := dev.CheckError(); err != nil {
		log.Warn("graphics error after font atlas upload", "err", err)
	}

	a.dev = dev
	a.tex = tex
	a.entries = entries
	a.grid = g
	a.uploadErrors = uploadErrors
	log.Info("font atlas loaded", "entries", len(entries), "upload_errors", uploadErrors)
	return nil
}

// uploadGlyphs walks the grid column by column (outer x, inner y) and
// consumes glyphs in source order through one flat counter.
func uploadGlyphs(dev core.TextureDevice, tex core.Texture, src GlyphSource, g grid, entries []AtlasEntry, strict bool) (int, error) {
	failed := 0
	scale := mgl32.Vec2{float32(g.cols), float32(g.rows)}
	iter := 0
	for x := 0; x < g.cols; x++ {
		for y := 0; y < g.rows; y++ {
			if iter == len(entries) {
				return failed, nil
			}
			glyph := src.GlyphAt(iter)
			ox, oy := x*g.cellW, y*g.cellH

			if glyph.Size.X > 0 && glyph.Size.Y > 0 {
				err := dev.UpdateTexture(tex, ox, oy, glyph.Size.X, glyph.Size.Y, glyph.Pixels)
				if err != nil {
					failed++
					if strict {
						return failed, wrapKind(ErrUpload, err, "glyph %d", iter)
					}
					core.Logger().Warn("font atlas glyph upload failed", "glyph", iter, "err", err)
				}
			}

			size := mgl32.Vec2{float32(glyph.Size.X), float32(glyph.Size.Y)}
			topLeft := mgl32.Vec2{float32(g.cellW * x), float32(g.cellH * y)}
			entries[iter] = AtlasEntry{
				UV:      [2]mgl32.Vec2{topLeft, topLeft.Add(size)},
				Advance: divVec(glyph.Advance, scale),
				Bearing: divVec(glyph.Bearing, scale),
				Size:    divVec(size, scale),
			}
			iter++
		}
	}
	return failed, nil
}

func divVec(v, d mgl32.Vec2) mgl32.Vec2 { return mgl32.Vec2{v[0] / d[0], v[1] / d[1]} }

// Unload releases the texture and the entries. Safe on an empty atlas.
func (a *Atlas) Unload() {
	if a.tex != nil && a.dev != nil {
		a.dev.DeleteTexture(a.tex)
	}
	a.reset()
}

func (a *Atlas) reset() {
	a.dev = nil
	a.tex = nil
	a.entries = nil
	a.grid = grid{}
	a.uploadErrors = 0
}

// Move hands the texture and entries to a new Atlas and leaves a empty.
func (a *Atlas) Move() *Atlas {
	moved := &Atlas{}
	moved.MoveFrom(a)
	return moved
}

// MoveFrom releases what a holds and takes ownership of src's texture and
// entries, leaving src empty.
func (a *Atlas) MoveFrom(src *Atlas) {
	if a == src {
		return
	}
	a.Unload()
	a.dev = src.dev
	a.tex = src.tex
	a.entries = src.entries
	a.grid = src.grid
	a.uploadErrors = src.uploadErrors
	src.reset()
}

// Loaded reports whether the atlas holds a texture.
func (a *Atlas) Loaded() bool { return a.tex != nil }

// Texture is the atlas texture, nil when unloaded. The Atlas keeps
// ownership.
func (a *Atlas) Texture() core.Texture { return a.tex }

func (a *Atlas) EntryCount() int { return len(a.entries) }

// EntryAt returns the entry for glyph i of the source the atlas was built
// from, 0 <= i < EntryCount.
func (a *Atlas) EntryAt(i int) AtlasEntry { return a.entries[i] }

// Entries returns the entry table. Callers must not modify it.
func (a *Atlas) Entries() []AtlasEntry { return a.entries }

// Dimension returns the grid columns and rows.
func (a *Atlas) Dimension() (cols, rows int) { return a.grid.cols, a.grid.rows }

// TextureSize is the atlas size in pixels, zero when unloaded.
func (a *Atlas) TextureSize() (w, h int) {
	if a.tex == nil {
		return 0, 0
	}
	return a.grid.textureSize()
}

// UploadErrors counts glyph uploads that failed during the last Load.
func (a *Atlas) UploadErrors() int { return a.uploadErrors }
