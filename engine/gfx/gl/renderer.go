package glbackend

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/pkg/errors"
)

// RendererGL implements core.Renderer on an OpenGL 3.3 core context. The
// context must be current on the calling thread.
type RendererGL struct {
	win core.Window

	maxTexSize  int32
	maxRectSize int32

	textures map[*glTexture]struct{}
	meshes   map[*glMesh]struct{}
	programs []*glPipeline
}

func NewRendererGL(win core.Window, _ core.Config) (*RendererGL, error) {
	r := &RendererGL{win: win}
	if err := r.Init(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RendererGL) Init() error {
	r.textures = make(map[*glTexture]struct{})
	r.meshes = make(map[*glMesh]struct{})

	gl.GetIntegerv(gl.MAX_TEXTURE_SIZE, &r.maxTexSize)
	gl.GetIntegerv(gl.MAX_RECTANGLE_TEXTURE_SIZE, &r.maxRectSize)
	if err := r.CheckError(); err != nil {
		return errors.Wrap(err, "query texture limits")
	}
	core.Logger().Info("gl renderer ready",
		"vendor", r.GPUVendor(),
		"renderer", r.GPURenderer(),
		"version", r.GPUVersion(),
		"max_texture_size", r.maxTexSize,
		"max_rectangle_size", r.maxRectSize,
	)
	return nil
}

func (r *RendererGL) Shutdown() {
	for m := range r.meshes {
		r.DeleteMesh(m)
	}
	for t := range r.textures {
		r.DeleteTexture(t)
	}
	for _, p := range r.programs {
		gl.DeleteProgram(p.program)
	}
	r.programs = nil
}

func (r *RendererGL) Resize(w, h int) {
	gl.Viewport(0, 0, int32(w), int32(h))
}

func (r *RendererGL) Clear(rf, gf, bf, af float32) {
	gl.ClearColor(rf, gf, bf, af)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (r *RendererGL) GPUVendor() string   { return gl.GoStr(gl.GetString(gl.VENDOR)) }
func (r *RendererGL) GPURenderer() string { return gl.GoStr(gl.GetString(gl.RENDERER)) }
func (r *RendererGL) GPUVersion() string  { return gl.GoStr(gl.GetString(gl.VERSION)) }

// CheckError drains the GL error queue and reports the first code seen.
func (r *RendererGL) CheckError() error {
	var first uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == gl.NO_ERROR {
			first = code
		}
		core.Logger().Debug("gl error", "code", errorName(code))
	}
	if first != gl.NO_ERROR {
		return errors.Errorf("gl error %s", errorName(first))
	}
	return nil
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "OUT_OF_MEMORY"
	}
	return "UNKNOWN"
}

func (r *RendererGL) Draw(cmd core.DrawCmd) {
	p, ok := cmd.Pipe.(*glPipeline)
	if !ok {
		core.Logger().Error("draw: foreign pipeline")
		return
	}
	m, ok := cmd.Mesh.(*glMesh)
	if !ok || m.vao == 0 {
		core.Logger().Error("draw: foreign or deleted mesh")
		return
	}

	gl.UseProgram(p.program)
	if p.blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}
	if p.depthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}

	for name, v := range cmd.Uniforms {
		loc := p.uniform(name)
		if loc < 0 {
			continue
		}
		switch val := v.(type) {
		case float32:
			gl.Uniform1f(loc, val)
		case int32:
			gl.Uniform1i(loc, val)
		case [4]float32:
			gl.Uniform4fv(loc, 1, &val[0])
		case [16]float32:
			gl.UniformMatrix4fv(loc, 1, false, &val[0])
		case mgl32.Mat4:
			gl.UniformMatrix4fv(loc, 1, false, &val[0])
		default:
			core.Logger().Warn("draw: unsupported uniform type", "name", name)
		}
	}

	unit := int32(0)
	var bound []*glTexture
	for name, t := range cmd.Samplers {
		tex, ok := t.(*glTexture)
		if !ok || tex.id == 0 {
			continue
		}
		loc := p.uniform(name)
		if loc < 0 {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(tex.glTarget(), tex.id)
		gl.Uniform1i(loc, unit)
		bound = append(bound, tex)
		unit++
	}

	gl.BindVertexArray(m.vao)
	gl.DrawElements(gl.TRIANGLES, int32(m.indexCount), gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)

	for i := len(bound) - 1; i >= 0; i-- {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(i))
		gl.BindTexture(bound[i].glTarget(), 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.UseProgram(0)
}
