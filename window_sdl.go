//go:build !nosdl

package main

import (
	"github.com/sheikhrachel/lifegrid/model"
	"github.com/sheikhrachel/lifegrid/utils"
	"github.com/sheikhrachel/lifegrid/window"
)

// windowRenderer adapts the SDL window to the renderer interface
type windowRenderer struct {
	*window.Renderer
}

func (w windowRenderer) Render(g *model.Grid) error {
	return w.Renderer.Render(g)
}

func newWindowRenderer(config utils.Config) (renderer, error) {
	r, err := window.New(config.WindowWidth, config.WindowHeight, config.Fullscreen)
	if err != nil {
		return nil, err
	}
	return windowRenderer{r}, nil
}
