package text

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/lightsky/engine/core"
)

// Vertex: pos2 + uv2 => 4 floats
const vStride = 4

var TextVertexLayout = core.VertexLayout{
	Stride: vStride * 4,
	Attributes: []core.VertexAttrib{
		{Location: 0, Size: 2, Type: core.AttribFloat32, Offset: 0},     // pos
		{Location: 1, Size: 2, Type: core.AttribFloat32, Offset: 2 * 4}, // uv (texels)
	},
}

const tabWidth = 4

// TextMesh is a CPU-side quad list for one string, in text-mesh units
// (glyph pixels divided by the atlas grid dimension). Positive Y goes down.
type TextMesh struct {
	Vertices []float32
	Indices  []uint32
	Quads    int
	Bounds   mgl32.Vec2 // width, height
}

// BuildTextMesh lays out s with the atlas metrics. index maps a rune to its
// atlas entry; runes it rejects and entries the atlas dropped are skipped.
func BuildTextMesh(atlas *Atlas, index func(rune) (int, bool), s string) TextMesh {
	return BuildKernedTextMesh(atlas, index, nil, s)
}

// BuildKernedTextMesh is BuildTextMesh with pair kerning: kern(prev, cur)
// returns the pen adjustment in glyph pixels (FontResource.Kern), scaled
// down like the other metrics. A nil kern disables it.
func BuildKernedTextMesh(atlas *Atlas, index func(rune) (int, bool), kern func(a, b int) float32, s string) TextMesh {
	var m TextMesh
	if atlas == nil || atlas.EntryCount() == 0 {
		return m
	}
	lineH := lineHeight(atlas)
	space, hasSpace := entryFor(atlas, index, ' ')
	cols, _ := atlas.Dimension()
	kernScale := 1 / float32(cols)

	var pen mgl32.Vec2
	baseline := ascent(atlas)
	width := float32(0)
	prev := -1
	for _, r := range s {
		switch r {
		case '\n':
			width = max(width, pen[0])
			pen[0] = 0
			pen[1] += lineH
			prev = -1
			continue
		case '\t':
			if hasSpace {
				pen[0] += space.Advance[0] * tabWidth
			}
			prev = -1
			continue
		}
		i, ok := index(r)
		if !ok || i < 0 || i >= atlas.EntryCount() {
			continue
		}
		e := atlas.EntryAt(i)
		if kern != nil && prev >= 0 {
			pen[0] += kern(prev, i) * kernScale
		}
		prev = i
		if e.Size[0] > 0 && e.Size[1] > 0 {
			left := pen[0] + e.Bearing[0]
			top := pen[1] + baseline - e.Bearing[1]
			m.appendQuad(left, top, e)
		}
		pen[0] += e.Advance[0]
	}
	width = max(width, pen[0])
	m.Bounds = mgl32.Vec2{width, pen[1] + lineH}
	return m
}

func entryFor(atlas *Atlas, index func(rune) (int, bool), r rune) (AtlasEntry, bool) {
	i, ok := index(r)
	if !ok || i < 0 || i >= atlas.EntryCount() {
		return AtlasEntry{}, false
	}
	return atlas.EntryAt(i), true
}

// lineHeight prefers the recorded line advance, falling back to the tallest
// glyph.
func lineHeight(atlas *Atlas) float32 {
	var adv, tall float32
	for _, e := range atlas.Entries() {
		adv = max(adv, e.Advance[1])
		tall = max(tall, e.Size[1])
	}
	if adv > 0 {
		return adv
	}
	return tall
}

func ascent(atlas *Atlas) float32 {
	var a float32
	for _, e := range atlas.Entries() {
		a = max(a, e.Bearing[1])
	}
	return a
}

func (m *TextMesh) appendQuad(left, top float32, e AtlasEntry) {
	right, bottom := left+e.Size[0], top+e.Size[1]
	u0, v0 := e.UV[0][0], e.UV[0][1]
	u1, v1 := e.UV[1][0], e.UV[1][1]

	start := uint32(len(m.Vertices) / vStride)
	// TL, TR, BL, BR
	m.Vertices = append(m.Vertices,
		left, top, u0, v0,
		right, top, u1, v0,
		left, bottom, u0, v1,
		right, bottom, u1, v1,
	)
	m.Indices = append(m.Indices,
		start+0, start+2, start+1,
		start+1, start+2, start+3,
	)
	m.Quads++
}
