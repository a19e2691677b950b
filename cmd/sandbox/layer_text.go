package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/lightsky/engine/assets"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/hubastard/lightsky/engine/scene"
	"github.com/hubastard/lightsky/engine/text"
)

const sample = "The quick brown fox jumps over the lazy dog\n" +
	"THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG\n" +
	"0123456789\t!?#&()[]{}<>+-*/=%$@"

var textColor = [4]float32{0.92, 0.94, 0.96, 1}

// TextLayer renders a paragraph through the font atlas.
//
//	L: toggle square/cover layout
//	R: rebuild the atlas
//	P: write the atlas to atlas.png
//	scroll: text size
type TextLayer struct {
	assets assets.Dir
	font   *text.FontResource
	opts   text.AtlasOptions

	atlas text.Atlas
	tr    *text.Renderer
	cam   *scene.OrthoCamera2D
	mesh  core.Mesh
	size  float32
	dirty bool
}

func (l *TextLayer) OnAttach(e *core.Engine) {
	var err error
	if l.tr, err = l.newRenderer(e); err != nil {
		core.Logger().Error("text renderer", "err", err)
		return
	}
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewScreen2D(w, h)
	l.size = 1
	l.reload(e)
}

// newRenderer prefers shaders/text.vert and shaders/text.frag from the
// assets directory over the built-in pair.
func (l *TextLayer) newRenderer(e *core.Engine) (*text.Renderer, error) {
	vs, errV := l.assets.Shader("text.vert")
	fs, errF := l.assets.Shader("text.frag")
	if errV != nil || errF != nil {
		core.Logger().Debug("using built-in text shaders", "assets", string(l.assets))
		return text.NewRenderer(e.Renderer)
	}
	return text.NewRendererFromSource(e.Renderer, vs, fs)
}

func (l *TextLayer) OnDetach(e *core.Engine) {
	if l.mesh != nil {
		e.Renderer.DeleteMesh(l.mesh)
		l.mesh = nil
	}
	l.atlas.Unload()
}

func (l *TextLayer) reload(e *core.Engine) {
	if err := l.atlas.LoadWithOptions(e.Renderer, l.font, l.opts); err != nil {
		core.Logger().Error("atlas reload", "err", err)
	}
	l.dirty = true
	e.Window.SetTitle(fmt.Sprintf("%s - %s atlas", e.Config.Title, l.opts.Layout))
}

func (l *TextLayer) OnUpdate(e *core.Engine, dt float64) {
	if s := e.Input.ConsumeScroll(); s != 0 {
		l.size = mgl32.Clamp(l.size*float32(1+0.1*s), 0.25, 8)
	}
	if !l.dirty || l.tr == nil {
		return
	}
	l.dirty = false
	cols, rows := l.atlas.Dimension()
	tw, th := l.atlas.TextureSize()
	status := fmt.Sprintf("atlas %dx%d cells, %dx%d px, %d entries, %d upload errors\n\n",
		cols, rows, tw, th, l.atlas.EntryCount(), l.atlas.UploadErrors())
	m := text.BuildKernedTextMesh(&l.atlas, l.font.IndexOf, l.font.Kern, status+sample)

	mesh, err := l.tr.Upload(m, l.mesh)
	if err != nil {
		core.Logger().Error("text mesh upload", "err", err)
		return
	}
	l.mesh = mesh
}

func (l *TextLayer) OnRender(e *core.Engine, alpha float64) {
	if l.tr == nil {
		return
	}
	model := text.ModelMatrix(&l.atlas, mgl32.Vec2{24, 24}, l.size)
	l.tr.Draw(l.mesh, &l.atlas, l.cam.VP(), model, textColor)
}

func (l *TextLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	switch ev := ev.(type) {
	case core.EventResize:
		if l.cam != nil {
			l.cam.SetViewportPixels(ev.W, ev.H)
		}
	case core.EventKey:
		if !ev.Down {
			return false
		}
		switch ev.Key {
		case core.KeyL:
			if l.opts.Layout == text.LayoutSquare {
				l.opts.Layout = text.LayoutCover
			} else {
				l.opts.Layout = text.LayoutSquare
			}
			l.reload(e)
			return true
		case core.KeyR:
			l.reload(e)
			return true
		case core.KeyP:
			if err := dumpAtlas(l.font, l.opts, "atlas.png"); err != nil {
				core.Logger().Error("atlas dump", "err", err)
			}
			return true
		}
	}
	return false
}
