// Package soft is a CPU-side core.TextureDevice. It keeps texture storage
// in ordinary images so atlases can be built headless: for PNG dumps of an
// atlas and for tests that need to inspect uploaded texels.
package soft

import (
	"image"

	"github.com/hubastard/lightsky/engine/core"
	"github.com/pkg/errors"
)

// Texture is a CPU texture. Pix is tightly packed: Stride == Width*bpp.
type Texture struct {
	width, height int
	format        core.TextureFormat
	target        core.TextureTarget
	Pix           []byte
	deleted       bool
}

func (t *Texture) Width() int                 { return t.width }
func (t *Texture) Height() int                { return t.height }
func (t *Texture) Format() core.TextureFormat { return t.format }
func (t *Texture) Target() core.TextureTarget { return t.target }
func (t *Texture) Deleted() bool              { return t.deleted }

// Alpha returns a view of an R8 texture as an image. The image shares Pix.
func (t *Texture) Alpha() (*image.Alpha, error) {
	if t.format != core.TextureR8 {
		return nil, errors.Errorf("alpha view of %s texture", t.format)
	}
	return &image.Alpha{Pix: t.Pix, Stride: t.width, Rect: image.Rect(0, 0, t.width, t.height)}, nil
}

// Device implements core.TextureDevice in memory.
type Device struct {
	// MaxSize caps texture width/height; 0 means unlimited.
	MaxSize int

	alignment int
	live      int
}

func NewDevice() *Device { return &Device{alignment: core.DefaultUnpackAlignment} }

// LiveTextures is the number of created and not yet deleted textures.
func (d *Device) LiveTextures() int { return d.live }

// UnpackAlignment returns the current unpack alignment state.
func (d *Device) UnpackAlignment() int { return d.alignment }

func (d *Device) SetUnpackAlignment(n int) { d.alignment = n }
func (d *Device) MaxTextureSize() int      { return d.MaxSize }
func (d *Device) CheckError() error        { return nil }

func (d *Device) CreateTexture(desc core.TextureDesc) (core.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, errors.Errorf("texture size %dx%d must be positive", desc.Width, desc.Height)
	}
	if d.MaxSize > 0 && (desc.Width > d.MaxSize || desc.Height > d.MaxSize) {
		return nil, errors.Errorf("texture size %dx%d exceeds device limit %d", desc.Width, desc.Height, d.MaxSize)
	}
	n := desc.Width * desc.Height * desc.Format.BytesPerPixel()
	t := &Texture{
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		target: desc.Target,
		Pix:    make([]byte, n),
	}
	if desc.Pixels != nil {
		if len(desc.Pixels) < n {
			return nil, errors.Errorf("texture pixels: got %d bytes, want %d", len(desc.Pixels), n)
		}
		copy(t.Pix, desc.Pixels)
	}
	d.live++
	return t, nil
}

// UpdateTexture copies rows honoring the unpack alignment, like glTexSubImage2D:
// each source row starts on a multiple of the alignment.
func (d *Device) UpdateTexture(tt core.Texture, x, y, w, h int, pixels []byte) error {
	t, ok := tt.(*Texture)
	if !ok || t.deleted {
		return errors.New("update texture: foreign or deleted texture")
	}
	if w == 0 || h == 0 {
		return nil
	}
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > t.width || y+h > t.height {
		return errors.Errorf("update texture: region %dx%d at (%d,%d) outside %dx%d", w, h, x, y, t.width, t.height)
	}
	bpp := t.format.BytesPerPixel()
	row := w * bpp
	srcStride := row
	if a := d.alignment; a > 1 && srcStride%a != 0 {
		srcStride += a - srcStride%a
	}
	if need := srcStride*(h-1) + row; len(pixels) < need {
		return errors.Errorf("update texture: got %d bytes, want %d at alignment %d", len(pixels), need, d.alignment)
	}
	dstStride := t.width * bpp
	for r := 0; r < h; r++ {
		dst := (y+r)*dstStride + x*bpp
		copy(t.Pix[dst:dst+row], pixels[r*srcStride:r*srcStride+row])
	}
	return nil
}

func (d *Device) DeleteTexture(tt core.Texture) {
	t, ok := tt.(*Texture)
	if !ok || t.deleted {
		return
	}
	t.deleted = true
	t.Pix = nil
	d.live--
}
