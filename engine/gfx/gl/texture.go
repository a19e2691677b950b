package glbackend

import (
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/pkg/errors"
)

type glTexture struct {
	id     uint32
	width  int
	height int
	format core.TextureFormat
	target core.TextureTarget
}

func (t *glTexture) Width() int                 { return t.width }
func (t *glTexture) Height() int                { return t.height }
func (t *glTexture) Format() core.TextureFormat { return t.format }
func (t *glTexture) Target() core.TextureTarget { return t.target }
func (t *glTexture) ID() uint32                 { return t.id }

func (t *glTexture) glTarget() uint32 { return glTarget(t.target) }
func (t *glTexture) bind()            { gl.BindTexture(t.glTarget(), t.id) }
func (t *glTexture) unbind()          { gl.BindTexture(t.glTarget(), 0) }

func glTarget(t core.TextureTarget) uint32 {
	if t == core.TargetRectangle {
		return gl.TEXTURE_RECTANGLE
	}
	return gl.TEXTURE_2D
}

// formats returns internal format, pixel format and type for f.
func formats(f core.TextureFormat) (int32, uint32, uint32) {
	if f == core.TextureR8 {
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE
	}
	return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
}

func filter(s string) int32 {
	if s == "linear" {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func wrap(s string) int32 {
	switch s {
	case "repeat":
		return gl.REPEAT
	case "border":
		return gl.CLAMP_TO_BORDER
	}
	return gl.CLAMP_TO_EDGE
}

// MaxTextureSize reports the limit for 2D textures; rectangle textures are
// checked against their own limit in CreateTexture.
func (r *RendererGL) MaxTextureSize() int { return int(r.maxTexSize) }

func (r *RendererGL) SetUnpackAlignment(n int) {
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, int32(n))
}

func (r *RendererGL) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, errors.Errorf("texture size %dx%d must be positive", desc.Width, desc.Height)
	}
	limit := r.maxTexSize
	if desc.Target == core.TargetRectangle {
		limit = r.maxRectSize
	}
	if limit > 0 && (desc.Width > int(limit) || desc.Height > int(limit)) {
		return nil, errors.Errorf("texture size %dx%d exceeds device limit %d", desc.Width, desc.Height, limit)
	}
	bpp := desc.Format.BytesPerPixel()
	if desc.Pixels != nil && len(desc.Pixels) < desc.Width*desc.Height*bpp {
		return nil, errors.Errorf("texture pixels: got %d bytes, want %d", len(desc.Pixels), desc.Width*desc.Height*bpp)
	}

	// drop stale codes so the allocation check below only sees ours
	_ = r.CheckError()

	tex := &glTexture{
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		target: desc.Target,
	}
	gl.GenTextures(1, &tex.id)
	tex.bind()
	defer tex.unbind()

	internal, format, typ := formats(desc.Format)
	var ptr unsafe.Pointer
	if len(desc.Pixels) > 0 {
		ptr = gl.Ptr(desc.Pixels)
	}
	gl.TexImage2D(tex.glTarget(), 0, internal, int32(desc.Width), int32(desc.Height), 0, format, typ, ptr)

	target := tex.glTarget()
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, filter(desc.MinFilter))
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, filter(desc.MagFilter))
	wrapU, wrapV := wrap(desc.WrapU), wrap(desc.WrapV)
	if desc.Target == core.TargetRectangle {
		// rectangle textures reject REPEAT
		if wrapU == gl.REPEAT {
			wrapU = gl.CLAMP_TO_EDGE
		}
		if wrapV == gl.REPEAT {
			wrapV = gl.CLAMP_TO_EDGE
		}
	}
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, wrapU)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, wrapV)
	if wrapU == gl.CLAMP_TO_BORDER || wrapV == gl.CLAMP_TO_BORDER {
		border := [4]float32{0, 0, 0, 0}
		gl.TexParameterfv(target, gl.TEXTURE_BORDER_COLOR, &border[0])
	}

	if err := r.CheckError(); err != nil {
		gl.DeleteTextures(1, &tex.id)
		return nil, errors.Wrapf(err, "allocate %s %dx%d texture", desc.Format, desc.Width, desc.Height)
	}
	r.textures[tex] = struct{}{}
	return tex, nil
}

func (r *RendererGL) UpdateTexture(t core.Texture, x, y, w, h int, pixels []byte) error {
	tex, ok := t.(*glTexture)
	if !ok || tex.id == 0 {
		return errors.New("update texture: foreign or deleted texture")
	}
	if w == 0 || h == 0 {
		return nil
	}
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > tex.width || y+h > tex.height {
		return errors.Errorf("update texture: region %dx%d at (%d,%d) outside %dx%d", w, h, x, y, tex.width, tex.height)
	}
	if want := w * h * tex.format.BytesPerPixel(); len(pixels) < want {
		return errors.Errorf("update texture: got %d bytes, want %d", len(pixels), want)
	}
	tex.bind()
	defer tex.unbind()
	_, format, typ := formats(tex.format)
	gl.TexSubImage2D(tex.glTarget(), 0, int32(x), int32(y), int32(w), int32(h), format, typ, gl.Ptr(pixels))
	return r.CheckError()
}

func (r *RendererGL) DeleteTexture(t core.Texture) {
	tex, ok := t.(*glTexture)
	if !ok || tex.id == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.id)
	tex.id = 0
	delete(r.textures, tex)
}
