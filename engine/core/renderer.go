package core

// TextureFormat is the texel layout of a texture.
type TextureFormat int

const (
	TextureRGBA8 TextureFormat = iota
	// TextureR8 is a single 8-bit red channel, used for coverage masks.
	TextureR8
)

// BytesPerPixel returns the tight per-pixel size of f.
func (f TextureFormat) BytesPerPixel() int {
	if f == TextureR8 {
		return 1
	}
	return 4
}

func (f TextureFormat) String() string {
	switch f {
	case TextureR8:
		return "R8"
	case TextureRGBA8:
		return "RGBA8"
	}
	return "unknown"
}

// TextureTarget selects how a texture is addressed.
type TextureTarget int

const (
	// Target2D is sampled with normalized [0,1] coordinates.
	Target2D TextureTarget = iota
	// TargetRectangle is sampled with absolute pixel coordinates and has
	// no power-of-two or mipmap requirements.
	TargetRectangle
)

// Texture is an opaque GPU texture handle owned by whoever created it.
type Texture interface {
	Width() int
	Height() int
	Format() TextureFormat
	Target() TextureTarget
}

// TextureDesc describes a texture allocation. Pixels may be nil to allocate
// uninitialized storage. Filters are "nearest" or "linear"; wraps are
// "clamp", "border" or "repeat".
type TextureDesc struct {
	Width, Height int
	Format        TextureFormat
	Target        TextureTarget
	Pixels        []byte
	MinFilter     string
	MagFilter     string
	WrapU, WrapV  string
}

// TextureDevice is the subset of a renderer that manages texture storage.
// All calls must happen on the thread owning the graphics context.
type TextureDevice interface {
	CreateTexture(desc TextureDesc) (Texture, error)
	// UpdateTexture replaces the w*h region at (x, y) with tightly packed
	// pixels in the texture's format.
	UpdateTexture(tex Texture, x, y, w, h int, pixels []byte) error
	DeleteTexture(tex Texture)
	// SetUnpackAlignment sets the row alignment used when reading client
	// pixel data. Process-wide state; prefer WithUnpackAlignment.
	SetUnpackAlignment(n int)
	// MaxTextureSize is the largest width/height the device accepts, or 0
	// when unknown.
	MaxTextureSize() int
	// CheckError drains pending device errors.
	CheckError() error
}

type AttribType int

const (
	AttribFloat32 AttribType = iota
)

type VertexAttrib struct {
	Location int
	Size     int // component count
	Type     AttribType
	Offset   int // bytes
}

type VertexLayout struct {
	Stride     int // bytes
	Attributes []VertexAttrib
}

type MeshDesc struct {
	Vertices []float32
	Indices  []uint32
	Layout   VertexLayout
	Dynamic  bool
}

type Mesh interface {
	IndexCount() int
}

type PipelineDesc struct {
	VertexSource   string
	FragmentSource string
	DepthTest      bool
	Blend          bool
}

type Pipeline interface{}

// DrawCmd is one indexed draw. Uniform values may be float32, int32,
// [4]float32, [16]float32 or mgl32.Mat4.
type DrawCmd struct {
	Pipe     Pipeline
	Mesh     Mesh
	Uniforms map[string]any
	Samplers map[string]Texture
}

// Renderer abstraction (grows with engine).
type Renderer interface {
	TextureDevice

	Init() error
	Resize(w, h int)
	Clear(r, g, b, a float32)

	CreatePipeline(desc PipelineDesc) (Pipeline, error)
	CreateMesh(desc MeshDesc) (Mesh, error)
	UpdateMesh(m Mesh, vertices []float32, indices []uint32) error
	DeleteMesh(m Mesh)
	Draw(cmd DrawCmd)

	GPUVendor() string
	GPURenderer() string
	GPUVersion() string

	Shutdown()
}
