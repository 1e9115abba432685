package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/lifegrid/model"
	"github.com/sheikhrachel/lifegrid/utils"
)

// renderer draws the board and reports user input once per frame
type renderer interface {
	Render(g *model.Grid) error
	PollAction() model.Action
	Close() error
}

type statusSetter interface {
	SetStatus(status string)
}

// game owns the grid exclusively; nothing else touches it while the loop runs
type game struct {
	config  utils.Config
	grid    *model.Grid
	rng     *rand.Rand
	history model.History
	stats   *utils.Stats
	logger  *slog.Logger

	generation     int
	lastRestartGen int
	stagnantCount  int
}

// initializeGame sets up the initial game state
func initializeGame(config utils.Config, stats *utils.Stats, logger *slog.Logger) (*game, error) {
	grid, err := model.NewGrid(config.Width, config.Height)
	if err != nil {
		return nil, errors.Wrap(err, "[initializeGame]")
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &game{
		config: config,
		grid:   grid,
		rng:    rand.New(rand.NewSource(seed)),
		stats:  stats,
		logger: logger,
	}

	if config.Pattern != "" {
		pattern, err := model.LoadPattern(config.Pattern)
		if err != nil {
			return nil, errors.Wrap(err, "[initializeGame]")
		}
		x := (grid.GetWidth() - pattern.Width()) / 2
		y := (grid.GetHeight() - pattern.Height()) / 2
		if err = grid.Place(pattern, x, y); err != nil {
			return nil, errors.Wrap(err, "[initializeGame]")
		}
	} else {
		grid.Randomise(g.rng)
	}

	logger.Info("game initialised",
		"width", grid.GetWidth(),
		"height", grid.GetHeight(),
		"seed", seed,
		"pattern", config.Pattern,
		"living", grid.CountLivingCells(),
	)
	return g, nil
}

// reset re-randomises the board and forgets stagnation history
func (g *game) reset(reason string) {
	g.grid.Randomise(g.rng)
	g.history.Reset()
	g.stagnantCount = 0
	g.lastRestartGen = g.generation
	g.stats.RecordRestart(reason)
	g.logger.Info("board reset",
		"reason", reason,
		"generation", g.generation,
		"living", g.grid.CountLivingCells(),
	)
}

// step computes one generation and records it in the stats
func (g *game) step() int {
	start := time.Now()
	g.grid.Step()
	g.generation++

	livingCells := g.grid.CountLivingCells()
	g.stats.Update(g.generation, livingCells, time.Since(start))
	return livingCells
}

// advance steps and applies the restart policy
func (g *game) advance() {
	livingCells := g.step()

	// compare against history before recording, otherwise every frame matches itself
	if g.history.IsStagnant(g.grid) {
		g.stagnantCount++
	} else {
		g.stagnantCount = 0
	}
	g.history.Update(g.grid)

	if !g.config.AutoRestart {
		return
	}
	if shouldRestart, reason := checkRestartConditions(livingCells, g.stagnantCount, g.config.StagnationThreshold); shouldRestart {
		g.reset(reason)
	}
}

// done reports whether the generation limit has been reached
func (g *game) done() bool {
	return g.config.MaxGenerations > 0 && g.generation >= g.config.MaxGenerations
}

// checkRestartConditions determines if the game should restart
func checkRestartConditions(livingCells, stagnantCount, stagnationThreshold int) (bool, string) {
	if livingCells == 0 {
		return true, "extinction"
	}
	if stagnantCount >= stagnationThreshold {
		return true, "stagnation detected"
	}
	return false, ""
}

// gameStatus formats the line shown beneath the board
func gameStatus(g *game) string {
	var (
		livingCells = g.grid.CountLivingCells()
		density     = float64(livingCells) / float64(g.grid.GetWidth()*g.grid.GetHeight()) * 100
		status      = "Active"
	)
	if g.stagnantCount > 0 {
		status = fmt.Sprintf("Stagnant (%d)", g.stagnantCount)
	}
	return fmt.Sprintf("Gen: %d | Living: %d | Density: %.1f%% | %s | %.1f gen/sec | since restart: %d | q quit, r reset",
		g.generation, livingCells, density, status, g.stats.GenerationsPerSecond, g.generation-g.lastRestartGen)
}

// runText reports whether cell (1, 1) is alive for each generation. The board
// is never re-randomised, so an extinct board reports dead until the end.
func runText(ctx context.Context, g *game, out io.Writer) error {
	generations := g.config.MaxGenerations
	if generations == 0 {
		generations = 10
	}
	for range generations {
		if ctx.Err() != nil {
			return nil
		}
		alive, err := g.grid.Get(1, 1)
		if err != nil {
			return errors.Wrap(err, "[runText]")
		}
		if alive {
			fmt.Fprintln(out, "Alive")
		} else {
			fmt.Fprintln(out, "dead")
		}
		g.step()
	}
	return nil
}

// runRender draws, polls input and steps until quit, cancellation or the
// generation limit
func runRender(ctx context.Context, g *game, r renderer) error {
	ticker := time.NewTicker(max(g.config.FrameRate, time.Millisecond))
	defer ticker.Stop()

	for !g.done() {
		if ctx.Err() != nil {
			return nil
		}
		switch action := r.PollAction(); action {
		case model.ActionQuit:
			g.logger.Info("quit requested", "generation", g.generation)
			return nil
		case model.ActionReset:
			g.reset("manual")
		}

		if s, ok := r.(statusSetter); ok {
			s.SetStatus(gameStatus(g))
		}
		if err := r.Render(g.grid); err != nil {
			return errors.Wrap(err, "[runRender]")
		}
		g.advance()

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	g.logger.Info("reached maximum generations limit", "max_generations", g.config.MaxGenerations)
	return nil
}
