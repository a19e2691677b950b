package core

import (
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config for the engine run.
type Config struct {
	Title      string     `yaml:"title"`
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	VSync      bool       `yaml:"vsync"`
	ClearColor [4]float32 `yaml:"clear_color"` // RGBA
	LogLevel   string     `yaml:"log_level"`
	AssetsDir  string     `yaml:"assets_dir"`
	Font       FontConfig `yaml:"font"`
}

// FontConfig selects the font rasterized into the text atlas.
type FontConfig struct {
	// Path is relative to the assets font directory. Empty means the
	// built-in Go Regular face.
	Path       string `yaml:"path"`
	PixelSize  int    `yaml:"pixel_size"`
	FirstRune  int    `yaml:"first_rune"`
	GlyphCount int    `yaml:"glyph_count"`
	// Layout is "square" or "cover".
	Layout string `yaml:"layout"`
	Strict bool   `yaml:"strict"`
}

func DefaultConfig() Config {
	return Config{
		Title:      "LightSky",
		Width:      1280,
		Height:     720,
		VSync:      true,
		ClearColor: [4]float32{0.08, 0.10, 0.12, 1},
		LogLevel:   "info",
		AssetsDir:  "assets",
		Font: FontConfig{
			PixelSize:  32,
			FirstRune:  0,
			GlyphCount: 256,
			Layout:     "square",
		},
	}
}

// LoadConfig reads a YAML config on top of DefaultConfig. A missing file is
// not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %q", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %q", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.Font.PixelSize <= 0 {
		return errors.Errorf("font pixel size %d must be positive", c.Font.PixelSize)
	}
	if c.Font.GlyphCount <= 0 {
		return errors.Errorf("font glyph count %d must be positive", c.Font.GlyphCount)
	}
	if c.Font.FirstRune < 0 {
		return errors.Errorf("font first rune %d is negative", c.Font.FirstRune)
	}
	switch c.Font.Layout {
	case "", "square", "cover":
	default:
		return errors.Errorf("unknown atlas layout %q", c.Font.Layout)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "log level %q", c.LogLevel)
	}
	return lvl, nil
}
