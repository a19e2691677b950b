package main

import (
	"github.com/hubastard/lightsky/engine/assets"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/hubastard/lightsky/engine/gfx/soft"
	"github.com/hubastard/lightsky/engine/text"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
)

// loadFont rasterizes the configured font, or Go Regular when no path is set.
func loadFont(dir assets.Dir, fc core.FontConfig) (*text.FontResource, error) {
	opts := text.DefaultFontOptions()
	opts.PixelSize = fc.PixelSize
	opts.First = rune(fc.FirstRune)
	opts.Count = fc.GlyphCount

	data := goregular.TTF
	if fc.Path != "" {
		var err error
		if data, err = dir.FontBytes(fc.Path); err != nil {
			return nil, err
		}
	}
	f := &text.FontResource{}
	if err := f.LoadBytes(data, opts); err != nil {
		return nil, err
	}
	return f, nil
}

func atlasOptions(fc core.FontConfig) (text.AtlasOptions, error) {
	layout, err := text.ParseLayout(fc.Layout)
	if err != nil {
		return text.AtlasOptions{}, err
	}
	return text.AtlasOptions{Layout: layout, Strict: fc.Strict}, nil
}

// dumpAtlas builds the atlas on a CPU device and saves its texels as PNG.
func dumpAtlas(src text.GlyphSource, opts text.AtlasOptions, path string) error {
	dev := soft.NewDevice()
	var a text.Atlas
	if err := a.LoadWithOptions(dev, src, opts); err != nil {
		return errors.Wrap(err, "build atlas")
	}
	defer a.Unload()

	img, err := a.Texture().(*soft.Texture).Alpha()
	if err != nil {
		return err
	}
	return assets.SavePNG(path, img)
}
