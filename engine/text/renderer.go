package text

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/pkg/errors"
)

const textVertexSource = `
#version 330 core
layout(location=0) in vec2 aPos;
layout(location=1) in vec2 aUV;
uniform mat4 uMVP;
out vec2 vUV;
void main() {
    vUV = aUV;
    gl_Position = uMVP * vec4(aPos, 0.0, 1.0);
}
`

// The atlas is a rectangle texture: vUV is in texels.
const textFragmentSource = `
#version 330 core
in vec2 vUV;
uniform sampler2DRect uAtlas;
uniform vec4 uColor;
out vec4 FragColor;
void main() {
    float coverage = texture(uAtlas, vUV).r;
    FragColor = vec4(uColor.rgb, uColor.a * coverage);
}
`

// Renderer draws TextMeshes sampled from an Atlas.
type Renderer struct {
	r        core.Renderer
	pipe     core.Pipeline
	uniforms map[string]any
	samplers map[string]core.Texture
}

func NewRenderer(r core.Renderer) (*Renderer, error) {
	return NewRendererFromSource(r, textVertexSource, textFragmentSource)
}

// NewRendererFromSource builds the text pipeline from custom GLSL. The
// shaders must keep the aPos/aUV inputs and the uMVP, uAtlas and uColor
// uniforms.
func NewRendererFromSource(r core.Renderer, vertex, fragment string) (*Renderer, error) {
	pipe, err := r.CreatePipeline(core.PipelineDesc{
		VertexSource:   vertex,
		FragmentSource: fragment,
		Blend:          true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "text pipeline")
	}
	return &Renderer{
		r:        r,
		pipe:     pipe,
		uniforms: make(map[string]any, 2),
		samplers: make(map[string]core.Texture, 1),
	}, nil
}

// Upload copies a TextMesh into GPU buffers. An existing mesh is reused
// when given.
func (tr *Renderer) Upload(m TextMesh, reuse core.Mesh) (core.Mesh, error) {
	if reuse != nil {
		if err := tr.r.UpdateMesh(reuse, m.Vertices, m.Indices); err != nil {
			return nil, errors.Wrap(err, "update text mesh")
		}
		return reuse, nil
	}
	mesh, err := tr.r.CreateMesh(core.MeshDesc{
		Vertices: m.Vertices,
		Indices:  m.Indices,
		Layout:   TextVertexLayout,
		Dynamic:  true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create text mesh")
	}
	return mesh, nil
}

// ModelMatrix places a mesh at pos (pixels) and scales text-mesh units
// back to atlas pixels, times size.
func ModelMatrix(atlas *Atlas, pos mgl32.Vec2, size float32) mgl32.Mat4 {
	cols, rows := atlas.Dimension()
	return mgl32.Translate3D(pos[0], pos[1], 0).
		Mul4(mgl32.Scale3D(float32(cols)*size, float32(rows)*size, 1))
}

// Draw renders mesh with the atlas texture bound.
func (tr *Renderer) Draw(mesh core.Mesh, atlas *Atlas, vp, model mgl32.Mat4, color [4]float32) {
	if mesh == nil || mesh.IndexCount() == 0 || !atlas.Loaded() {
		return
	}
	tr.uniforms["uMVP"] = vp.Mul4(model)
	tr.uniforms["uColor"] = color
	tr.samplers["uAtlas"] = atlas.Texture()
	tr.r.Draw(core.DrawCmd{
		Pipe:     tr.pipe,
		Mesh:     mesh,
		Uniforms: tr.uniforms,
		Samplers: tr.samplers,
	})
}
