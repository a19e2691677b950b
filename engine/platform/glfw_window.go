// Package platform binds core.Window to GLFW.
package platform

import (
	"runtime"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/lightsky/engine/core"
	"github.com/pkg/errors"
)

// GLFWWindow implements core.Window. GLFW callbacks only queue events;
// PollEvents hands them to the event callback once GLFW returns.
type GLFWWindow struct {
	win     *glfw.Window
	queue   core.EventQueue
	onEvent func(core.Event)
}

// NewGLFWWindow creates the window with a current OpenGL 3.3 core context.
// It must run on the main thread.
func NewGLFWWindow(cfg core.Config, onEvent func(core.Event)) (*GLFWWindow, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "glfw init")
	}
	win, err := createContextWindow(cfg)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}

	g := &GLFWWindow{win: win, onEvent: onEvent}
	g.installCallbacks()
	fw, fh := win.GetFramebufferSize()
	core.Logger().Debug("window created",
		"title", cfg.Title,
		"framebuffer", [2]int{fw, fh},
		"vsync", cfg.VSync,
		"gl", gl.GoStr(gl.GetString(gl.VERSION)),
	)
	return g, nil
}

func createContextWindow(cfg core.Config) (*glfw.Window, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	// required on macOS
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 0)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "create %dx%d window", cfg.Width, cfg.Height)
	}
	win.MakeContextCurrent()
	interval := 0
	if cfg.VSync {
		interval = 1
	}
	glfw.SwapInterval(interval)

	if err := gl.Init(); err != nil {
		win.Destroy()
		return nil, errors.Wrap(err, "load gl functions")
	}
	return win, nil
}

func (g *GLFWWindow) installCallbacks() {
	g.win.SetCloseCallback(func(*glfw.Window) {
		g.queue.Push(core.EventCloseRequested{})
	})
	g.win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		g.queue.Push(core.EventResize{W: w, H: h})
	})
	g.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		g.queue.Push(core.EventMouseMove{X: x, Y: y})
	})
	g.win.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		g.queue.Push(core.EventScroll{Xoff: xoff, Yoff: yoff})
	})
	g.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		k, ok := keyMap[key]
		if !ok || action == glfw.Repeat {
			return
		}
		g.queue.Push(core.EventKey{Key: k, Down: action == glfw.Press, Mods: modsOf(mods)})
	})
}

// PollEvents processes pending GLFW events, then delivers what the
// callbacks queued.
func (g *GLFWWindow) PollEvents() {
	glfw.PollEvents()
	g.queue.Flush(func(ev core.Event) {
		if g.onEvent != nil {
			g.onEvent(ev)
		}
	})
}

func (g *GLFWWindow) SwapBuffers()                         { g.win.SwapBuffers() }
func (g *GLFWWindow) ShouldClose() bool                    { return g.win == nil || g.win.ShouldClose() }
func (g *GLFWWindow) RequestClose()                        { g.win.SetShouldClose(true) }
func (g *GLFWWindow) FramebufferSize() (int, int)          { return g.win.GetFramebufferSize() }
func (g *GLFWWindow) SetTitle(t string)                    { g.win.SetTitle(t) }
func (g *GLFWWindow) SetEventCallback(cb func(core.Event)) { g.onEvent = cb }

// Destroy closes the window and shuts GLFW down. Calling it twice is safe.
func (g *GLFWWindow) Destroy() {
	if g.win == nil {
		return
	}
	g.win.Destroy()
	g.win = nil
	glfw.Terminate()
}

var keyMap = map[glfw.Key]core.Key{
	glfw.KeyEscape: core.KeyEscape,
	glfw.KeySpace:  core.KeySpace,
	glfw.KeyW:      core.KeyW,
	glfw.KeyA:      core.KeyA,
	glfw.KeyS:      core.KeyS,
	glfw.KeyD:      core.KeyD,
	glfw.KeyL:      core.KeyL,
	glfw.KeyP:      core.KeyP,
	glfw.KeyR:      core.KeyR,
}

var modMap = [...]struct {
	glfw glfw.ModifierKey
	core core.Mod
}{
	{glfw.ModShift, core.ModShift},
	{glfw.ModControl, core.ModCtrl},
	{glfw.ModAlt, core.ModAlt},
	{glfw.ModSuper, core.ModSuper},
}

func modsOf(m glfw.ModifierKey) core.Mod {
	var out core.Mod
	for _, mm := range modMap {
		if m&mm.glfw != 0 {
			out |= mm.core
		}
	}
	return out
}
