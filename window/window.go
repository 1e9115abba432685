// Package window renders a grid into an SDL2 window.
//
// SDL must be driven from the main OS thread, so every method here has to be
// called from the goroutine that runs main.
package window

import (
	"runtime"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/sheikhrachel/lifegrid/model"
)

const title = "GOL"

func init() {
	runtime.LockOSThread()
}

// Grid is the read side of the board the window draws
type Grid interface {
	GetWidth() int
	GetHeight() int
	Get(x, y int) (bool, error)
}

// Renderer owns an SDL window and its event queue
type Renderer struct {
	window   *sdl.Window
	renderer *sdl.Renderer
}

// New opens a resizable window of the given pixel size
func New(width, height int, fullscreen bool) (*Renderer, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "[window.New] failed to initialise SDL")
	}

	w, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(width), int32(height), sdl.WINDOW_OPENGL|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "[window.New] failed to create window")
	}
	if fullscreen {
		if err = w.SetFullscreen(sdl.WINDOW_FULLSCREEN_DESKTOP); err != nil {
			w.Destroy()
			sdl.Quit()
			return nil, errors.Wrap(err, "[window.New] failed to enter fullscreen")
		}
	}

	r, err := sdl.CreateRenderer(w, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		w.Destroy()
		sdl.Quit()
		return nil, errors.Wrap(err, "[window.New] failed to create renderer")
	}
	return &Renderer{window: w, renderer: r}, nil
}

// Render scales the canvas so the grid fills the window and draws each live
// cell as a single point
func (r *Renderer) Render(g Grid) error {
	if err := r.renderer.SetDrawColor(64, 0, 0, 255); err != nil {
		return errors.Wrap(err, "[Render] failed to set background colour")
	}
	outW, outH, err := r.renderer.GetOutputSize()
	if err != nil {
		return errors.Wrap(err, "[Render] failed to read output size")
	}
	scaleX := float32(outW) / float32(g.GetWidth())
	scaleY := float32(outH) / float32(g.GetHeight())
	if err = r.renderer.SetScale(scaleX, scaleY); err != nil {
		return errors.Wrap(err, "[Render] failed to scale canvas")
	}
	if err = r.renderer.Clear(); err != nil {
		return errors.Wrap(err, "[Render] failed to clear canvas")
	}

	if err = r.renderer.SetDrawColor(255, 255, 255, 255); err != nil {
		return errors.Wrap(err, "[Render] failed to set cell colour")
	}
	for y := range g.GetHeight() {
		for x := range g.GetWidth() {
			alive, err := g.Get(x, y)
			if err != nil {
				return errors.Wrap(err, "[Render]")
			}
			if !alive {
				continue
			}
			if err = r.renderer.DrawPoint(int32(x), int32(y)); err != nil {
				return errors.Wrap(err, "[Render] failed to draw cell")
			}
		}
	}
	r.renderer.Present()
	return nil
}

// ToggleFullscreen switches between windowed and desktop fullscreen
func (r *Renderer) ToggleFullscreen() error {
	var flags uint32 = sdl.WINDOW_FULLSCREEN_DESKTOP
	if r.window.GetFlags()&sdl.WINDOW_FULLSCREEN_DESKTOP != 0 {
		flags = 0
	}
	return errors.Wrap(r.window.SetFullscreen(flags), "[ToggleFullscreen]")
}

// PollAction drains the event queue and returns the first quit or reset
// request. F toggles fullscreen in place.
func (r *Renderer) PollAction() model.Action {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if action := r.interpretEvent(event); action != model.ActionNothing {
			return action
		}
	}
	return model.ActionNothing
}

func (r *Renderer) interpretEvent(event sdl.Event) model.Action {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		return model.ActionQuit
	case *sdl.KeyboardEvent:
		if ev.Type != sdl.KEYDOWN {
			return model.ActionNothing
		}
		return r.interpretKeycode(ev.Keysym.Sym)
	}
	return model.ActionNothing
}

func (r *Renderer) interpretKeycode(key sdl.Keycode) model.Action {
	switch key {
	case sdl.K_ESCAPE, sdl.K_q:
		return model.ActionQuit
	case sdl.K_r:
		return model.ActionReset
	case sdl.K_f:
		// a failed toggle leaves the window as it was
		_ = r.ToggleFullscreen()
	}
	return model.ActionNothing
}

// Close releases the renderer, the window and SDL itself
func (r *Renderer) Close() error {
	var rerr, werr error
	if r.renderer != nil {
		rerr = r.renderer.Destroy()
	}
	if r.window != nil {
		werr = r.window.Destroy()
	}
	sdl.Quit()
	if rerr != nil {
		return errors.Wrap(rerr, "[Close] failed to destroy renderer")
	}
	return errors.Wrap(werr, "[Close] failed to destroy window")
}
