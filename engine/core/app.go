package core

import "time"

// App defines the game/application hooks.
type App interface {
	OnStart(e *Engine)                 // called once after window/renderer init
	OnUpdate(e *Engine, dt float64)    // called at a fixed tick (60Hz by default)
	OnRender(e *Engine, alpha float64) // render with interpolation alpha [0..1]
	OnEvent(e *Engine, ev Event)       // input/window events not consumed by a layer
	OnShutdown(e *Engine)              // before exit
}

// Engine exposes core services to the App.
type Engine struct {
	Window   Window
	Renderer Renderer
	Input    *Input
	Layers   *LayerStack
	Config   Config
	start    time.Time
}

// NewEngine wires the services for a window/renderer pair.
func NewEngine(win Window, rend Renderer, cfg Config) *Engine {
	return &Engine{
		Window:   win,
		Renderer: rend,
		Input:    NewInput(),
		Layers:   &LayerStack{},
		Config:   cfg,
		start:    time.Now(),
	}
}

func (e *Engine) Uptime() time.Duration { return time.Since(e.start) }

// PushLayer attaches l and puts it on top of the stack.
func (e *Engine) PushLayer(l Layer) {
	e.Layers.Push(l)
	l.OnAttach(e)
}

// PopLayer detaches and removes the top layer.
func (e *Engine) PopLayer() (Layer, bool) {
	l, ok := e.Layers.Pop()
	if ok {
		l.OnDetach(e)
	}
	return l, ok
}

// dispatch feeds ev to the input state and the layers (top first). It
// reports whether a layer consumed the event.
func (e *Engine) dispatch(ev Event) bool {
	e.Input.Handle(ev)
	handled := false
	e.Layers.ForEachReverse(func(l Layer) bool {
		handled = l.OnEvent(e, ev)
		return handled
	})
	return handled
}

// Window abstraction.
type Window interface {
	PollEvents()
	SwapBuffers()
	ShouldClose() bool
	RequestClose()
	FramebufferSize() (int, int)
	SetTitle(title string)
	SetEventCallback(cb func(Event))
	Destroy()
}

// Event model (can expand over time).
type Event interface{ isEvent() }

type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

type EventKey struct {
	Key  Key
	Down bool
	Mods Mod
}

func (EventKey) isEvent() {}

type EventMouseMove struct{ X, Y float64 }

func (EventMouseMove) isEvent() {}

type EventScroll struct{ Xoff, Yoff float64 }

func (EventScroll) isEvent() {}

// Key/mod enums (subset; add as needed).
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	KeyW
	KeyA
	KeyS
	KeyD
	KeyL
	KeyP
	KeyR
)

type Mod int

const (
	ModNone  Mod = 0
	ModShift Mod = 1 << 0
	ModCtrl  Mod = 1 << 1
	ModAlt   Mod = 1 << 2
	ModSuper Mod = 1 << 3
)
