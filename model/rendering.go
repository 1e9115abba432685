package model

import (
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
)

const (
	gridPosBlock = '█'
	// each cell is drawn two columns wide so it looks square in most fonts
	cellColumns = 2
)

var (
	liveStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
	deadStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.NewRGBColor(64, 0, 0))
)

// TerminalRenderer draws the grid into a terminal screen and polls its keyboard
type TerminalRenderer struct {
	screen tcell.Screen
	status string
}

// NewTerminalRenderer initialises the controlling terminal
func NewTerminalRenderer() (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "[NewTerminalRenderer] failed to create screen")
	}
	return NewTerminalRendererWithScreen(screen)
}

// NewTerminalRendererWithScreen wraps an existing, uninitialised screen
func NewTerminalRendererWithScreen(screen tcell.Screen) (*TerminalRenderer, error) {
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "[NewTerminalRendererWithScreen] failed to initialise screen")
	}
	screen.HideCursor()
	screen.Clear()
	return &TerminalRenderer{screen: screen}, nil
}

// SetStatus sets the line drawn beneath the grid on the next Render
func (r *TerminalRenderer) SetStatus(status string) {
	r.status = status
}

// Render draws every cell of the current generation. Cells beyond the
// terminal's size are clipped.
func (r *TerminalRenderer) Render(g *Grid) error {
	r.screen.Clear()
	cells := g.buffers[g.current]
	for y := range g.height {
		for x := range g.width {
			ch, style := ' ', deadStyle
			if cells[y*g.width+x] {
				ch, style = gridPosBlock, liveStyle
			}
			for c := range cellColumns {
				r.screen.SetContent(x*cellColumns+c, y, ch, nil, style)
			}
		}
	}
	for i, ch := range []rune(r.status) {
		r.screen.SetContent(i, g.height, ch, nil, tcell.StyleDefault)
	}
	r.screen.Show()
	return nil
}

// PollAction drains pending input and returns the first meaningful action.
// It never blocks.
func (r *TerminalRenderer) PollAction() Action {
	for r.screen.HasPendingEvent() {
		switch ev := r.screen.PollEvent().(type) {
		case *tcell.EventKey:
			if action := interpretKey(ev); action != ActionNothing {
				return action
			}
		case *tcell.EventResize:
			r.screen.Sync()
		case nil:
			return ActionQuit
		}
	}
	return ActionNothing
}

func interpretKey(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return ActionQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return ActionQuit
		case 'r', 'R':
			return ActionReset
		}
	}
	return ActionNothing
}

// Close restores the terminal
func (r *TerminalRenderer) Close() error {
	r.screen.Fini()
	return nil
}
