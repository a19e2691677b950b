package core

import (
	"time"

	"github.com/faiface/mainthread"
)

// Fixed-timestep parameters for Run.
const (
	Tick    = time.Second / 60
	MaxStep = 10 // prevent spiral of death
)

// Run wires the platform window + renderer and executes the main loop.
// It must be called from inside mainthread.Run: every window and graphics
// call is pinned to the main OS thread through mainthread.Call.
func Run(app App, cfg Config, newWindow func(Config) (Window, error), newRenderer func(Window, Config) (Renderer, error)) error {
	var (
		win  Window
		rend Renderer
	)
	err := mainthread.CallErr(func() error {
		var err error
		win, err = newWindow(cfg)
		if err != nil {
			return err
		}
		rend, err = newRenderer(win, cfg)
		if err != nil {
			win.Destroy()
			return err
		}
		w, h := win.FramebufferSize()
		rend.Resize(w, h)
		return nil
	})
	if err != nil {
		return err
	}

	eng := NewEngine(win, rend, cfg)
	win.SetEventCallback(func(ev Event) {
		if !eng.dispatch(ev) {
			app.OnEvent(eng, ev)
		}
		if _, ok := ev.(EventResize); ok {
			fw, fh := win.FramebufferSize()
			if fw < 1 || fh < 1 {
				return
			}
			rend.Resize(fw, fh)
		}
	})

	mainthread.Call(func() { app.OnStart(eng) })

	var (
		step  = newStepper(time.Now())
		clear = cfg.ClearColor
		done  bool
	)
	for !done {
		mainthread.Call(func() {
			if win.ShouldClose() {
				done = true
				return
			}
			// Poll OS events (platform will emit via callbacks)
			win.PollEvents()

			steps, alpha := step.advance(time.Now())
			dt := float64(Tick) / float64(time.Second)
			for i := 0; i < steps; i++ {
				app.OnUpdate(eng, dt)
				eng.Layers.ForEach(func(l Layer) { l.OnUpdate(eng, dt) })
			}

			rend.Clear(clear[0], clear[1], clear[2], clear[3])
			app.OnRender(eng, alpha)
			eng.Layers.ForEach(func(l Layer) { l.OnRender(eng, alpha) })

			win.SwapBuffers()
		})
	}

	mainthread.Call(func() {
		for eng.Layers.Len() > 0 {
			eng.PopLayer()
		}
		app.OnShutdown(eng)
		rend.Shutdown()
		win.Destroy()
	})
	Logger().Info("engine exit", "uptime", eng.Uptime())
	return nil
}

// stepper accumulates frame time into fixed ticks.
type stepper struct {
	prev  time.Time
	accum time.Duration
}

func newStepper(now time.Time) *stepper { return &stepper{prev: now} }

// advance returns the number of fixed updates to run and the interpolation
// factor for rendering.
func (s *stepper) advance(now time.Time) (steps int, alpha float64) {
	s.accum += now.Sub(s.prev)
	s.prev = now
	for s.accum >= Tick && steps < MaxStep {
		s.accum -= Tick
		steps++
	}
	if steps == MaxStep && s.accum >= Tick {
		// drop the backlog instead of trying to catch up next frame
		s.accum = 0
	}
	return steps, float64(s.accum) / float64(Tick)
}
