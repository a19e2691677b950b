package assets

import (
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// PNG returns width, height, and tightly packed RGBA8 pixels (row-major,
// top-left origin).
func (d Dir) PNG(name string) (w, h int, rgba []byte, err error) {
	path := d.path("textures", name)
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, nil, errors.Wrapf(err, "open %q", path)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return 0, 0, nil, errors.Wrapf(err, "decode png %q", path)
	}

	rgbaImg := imageToRGBA(img)
	w, h = rgbaImg.Bounds().Dx(), rgbaImg.Bounds().Dy()

	// Repack in tight rows (stride == 4*w)
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		copy(out[y*w*4:(y+1)*w*4], rgbaImg.Pix[y*rgbaImg.Stride:y*rgbaImg.Stride+w*4])
	}
	return w, h, out, nil
}

func imageToRGBA(img image.Image) *image.RGBA {
	if m, ok := img.(*image.RGBA); ok && m.Stride == m.Rect.Dx()*4 && m.Rect.Min == (image.Point{}) {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Src)
	return dst
}

// SavePNG encodes img at path, creating parent directories.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create png directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %q", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode png %q", path)
	}
	return errors.Wrapf(f.Close(), "close %q", path)
}
