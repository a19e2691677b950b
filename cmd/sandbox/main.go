package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/faiface/mainthread"
	"github.com/hubastard/lightsky/engine/assets"
	"github.com/hubastard/lightsky/engine/core"
	glbackend "github.com/hubastard/lightsky/engine/gfx/gl"
	"github.com/hubastard/lightsky/engine/platform"
	"github.com/hubastard/lightsky/engine/text"
)

type App struct {
	assets assets.Dir
	font   *text.FontResource
	opts   text.AtlasOptions
	layer  *TextLayer
}

func (a *App) OnStart(e *core.Engine) {
	a.layer = &TextLayer{assets: a.assets, font: a.font, opts: a.opts}
	e.PushLayer(a.layer)
}

func (a *App) OnUpdate(e *core.Engine, dt float64)   {}
func (a *App) OnRender(e *core.Engine, alpha float64) {}

func (a *App) OnEvent(e *core.Engine, ev core.Event) {
	if k, ok := ev.(core.EventKey); ok && k.Down && k.Key == core.KeyEscape {
		e.Window.RequestClose()
	}
}

func (a *App) OnShutdown(e *core.Engine) {
	a.font.Unload()
}

func main() {
	configPath := flag.String("config", "sandbox.yaml", "YAML config file")
	dumpPath := flag.String("dump-atlas", "", "write the font atlas to this PNG and exit")
	flag.Parse()
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		fatal(err)
	}
	lvl, _ := cfg.SlogLevel()
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	dir := assets.Dir(cfg.AssetsDir)
	font, err := loadFont(dir, cfg.Font)
	if err != nil {
		fatal(err)
	}
	opts, err := atlasOptions(cfg.Font)
	if err != nil {
		fatal(err)
	}

	if *dumpPath != "" {
		if err := dumpAtlas(font, opts, *dumpPath); err != nil {
			fatal(err)
		}
		core.Logger().Info("atlas written", "path", *dumpPath)
		return
	}

	app := &App{assets: dir, font: font, opts: opts}
	newWindow := func(cfg core.Config) (core.Window, error) {
		return platform.NewGLFWWindow(cfg, nil)
	}
	newRenderer := func(win core.Window, cfg core.Config) (core.Renderer, error) {
		return glbackend.NewRendererGL(win, cfg)
	}

	mainthread.Run(func() {
		if err := core.Run(app, cfg, newWindow, newRenderer); err != nil {
			fatal(err)
		}
	})
}

func fatal(err error) {
	core.Logger().Error("sandbox failed", "err", err)
	os.Exit(1)
}
