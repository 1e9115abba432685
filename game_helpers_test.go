package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikhrachel/lifegrid/model"
	"github.com/sheikhrachel/lifegrid/utils"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig() utils.Config {
	config := utils.DefaultConfig()
	config.Seed = 1
	config.FrameRate = time.Millisecond
	return config
}

func newTestGame(t *testing.T, config utils.Config) *game {
	t.Helper()
	g, err := initializeGame(config, utils.NewStats(), discardLogger)
	require.NoError(t, err)
	return g
}

// scriptedRenderer replays a fixed sequence of actions and counts frames
type scriptedRenderer struct {
	actions []model.Action
	frames  int
	status  string
	closed  bool
}

func (r *scriptedRenderer) Render(*model.Grid) error {
	r.frames++
	return nil
}

func (r *scriptedRenderer) PollAction() model.Action {
	if len(r.actions) == 0 {
		return model.ActionNothing
	}
	a := r.actions[0]
	r.actions = r.actions[1:]
	return a
}

func (r *scriptedRenderer) SetStatus(status string) { r.status = status }

func (r *scriptedRenderer) Close() error {
	r.closed = true
	return nil
}

func TestCheckRestartConditions(t *testing.T) {
	tests := []struct {
		name          string
		living        int
		stagnant      int
		wantRestart   bool
		wantReasonHas string
	}{
		{name: "extinct", living: 0, stagnant: 0, wantRestart: true, wantReasonHas: "extinction"},
		{name: "stagnant", living: 4, stagnant: 5, wantRestart: true, wantReasonHas: "stagnation"},
		{name: "active", living: 4, stagnant: 4, wantRestart: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restart, reason := checkRestartConditions(tt.living, tt.stagnant, 5)
			assert.Equal(t, tt.wantRestart, restart)
			assert.Contains(t, reason, tt.wantReasonHas)
		})
	}
}

func TestInitializeGame_Pattern(t *testing.T) {
	config := testConfig()
	config.Width, config.Height = 5, 5
	config.Pattern = "blinker"
	g := newTestGame(t, config)

	assert.Equal(t, 3, g.grid.CountLivingCells())
	for x := 1; x <= 3; x++ {
		alive, err := g.grid.Get(x, 2)
		require.NoError(t, err)
		assert.True(t, alive, "blinker is centred at (%d, 2)", x)
	}
}

func TestInitializeGame_Errors(t *testing.T) {
	config := testConfig()
	config.Width = 0
	_, err := initializeGame(config, utils.NewStats(), discardLogger)
	assert.Error(t, err)

	config = testConfig()
	config.Width, config.Height = 2, 2
	config.Pattern = "glider"
	_, err = initializeGame(config, utils.NewStats(), discardLogger)
	assert.Error(t, err, "glider does not fit a 2x2 grid")
}

func TestInitializeGame_SeedIsReproducible(t *testing.T) {
	a := newTestGame(t, testConfig())
	b := newTestGame(t, testConfig())
	assert.Equal(t, a.grid.GetGridHash(), b.grid.GetGridHash())
}

func TestGame_Advance_RestartsOnStagnation(t *testing.T) {
	config := testConfig()
	config.Width, config.Height = 5, 5
	config.Pattern = "blinker"
	config.StagnationThreshold = 2
	g := newTestGame(t, config)

	// generations 4 and 5 repeat generations 2 and 3
	for range 4 {
		g.advance()
	}
	assert.Equal(t, 1, g.stagnantCount)
	assert.Zero(t, g.stats.Restarts)

	g.advance()
	assert.Equal(t, 1, g.stats.Restarts)
	assert.Zero(t, g.stagnantCount)
	assert.Equal(t, 5, g.lastRestartGen)
}

func TestGame_Advance_NoAutoRestart(t *testing.T) {
	config := testConfig()
	config.Width, config.Height = 5, 5
	config.Pattern = "block"
	config.AutoRestart = false
	config.StagnationThreshold = 1
	g := newTestGame(t, config)

	for range 10 {
		g.advance()
	}
	assert.Zero(t, g.stats.Restarts)
	assert.Equal(t, 4, g.grid.CountLivingCells())
	assert.Equal(t, 10, g.stats.TotalGenerations)
}

func TestRunText(t *testing.T) {
	config := testConfig()
	config.Width, config.Height = 3, 3
	config.Pattern = "blinker"
	config.MaxGenerations = 4
	g := newTestGame(t, config)

	var out bytes.Buffer
	require.NoError(t, runText(context.Background(), g, &out))
	assert.Equal(t, []string{"Alive", "Alive", "Alive", "Alive"}, strings.Fields(out.String()),
		"the blinker's centre never dies")
	assert.Equal(t, 4, g.generation)
}

func TestRunText_NoRestartOnExtinction(t *testing.T) {
	config := testConfig()
	config.Width, config.Height = 3, 3
	config.MaxGenerations = 3
	require.True(t, config.AutoRestart)
	g := newTestGame(t, config)
	g.grid.Clear()

	var out bytes.Buffer
	require.NoError(t, runText(context.Background(), g, &out))
	assert.Equal(t, []string{"dead", "dead", "dead"}, strings.Fields(out.String()))
	assert.Zero(t, g.stats.Restarts)
	assert.Zero(t, g.grid.CountLivingCells())
	assert.Equal(t, 3, g.stats.TotalGenerations)
}

func TestRunText_GridTooSmall(t *testing.T) {
	config := testConfig()
	config.Width, config.Height = 1, 1
	g := newTestGame(t, config)

	err := runText(context.Background(), g, io.Discard)
	assert.Error(t, err)
}

func TestRunRender_Quit(t *testing.T) {
	g := newTestGame(t, testConfig())
	r := &scriptedRenderer{actions: []model.Action{model.ActionNothing, model.ActionNothing, model.ActionQuit}}

	require.NoError(t, runRender(context.Background(), g, r))
	assert.Equal(t, 2, r.frames)
	assert.Equal(t, 2, g.generation)
	assert.Contains(t, r.status, "Gen: 1")
}

func TestRunRender_Reset(t *testing.T) {
	config := testConfig()
	config.AutoRestart = false
	g := newTestGame(t, config)
	r := &scriptedRenderer{actions: []model.Action{model.ActionReset, model.ActionQuit}}

	require.NoError(t, runRender(context.Background(), g, r))
	assert.Equal(t, 1, g.stats.Restarts)
}

func TestRunRender_MaxGenerations(t *testing.T) {
	config := testConfig()
	config.MaxGenerations = 3
	g := newTestGame(t, config)
	r := &scriptedRenderer{}

	require.NoError(t, runRender(context.Background(), g, r))
	assert.Equal(t, 3, r.frames)
}

func TestRunRender_Cancelled(t *testing.T) {
	g := newTestGame(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &scriptedRenderer{}
	require.NoError(t, runRender(ctx, g, r))
	assert.Zero(t, g.generation)
	assert.Zero(t, r.frames)
}

// newFlagCommand registers a private copy of the command line flags
func newFlagCommand(t *testing.T) *cobra.Command {
	t.Helper()
	t.Cleanup(func() { flagConfig = utils.DefaultConfig() })
	cmd := &cobra.Command{}
	registerFlags(cmd.Flags())
	return cmd
}

func TestMergeFlags(t *testing.T) {
	cmd := newFlagCommand(t)
	require.NoError(t, cmd.Flags().Parse([]string{"--width", "33", "--renderer", "TEXT"}))

	file := utils.DefaultConfig()
	file.Height = 44
	merged := mergeFlags(cmd, file)
	assert.Equal(t, 33, merged.Width)
	assert.Equal(t, 44, merged.Height, "unset flags keep the file value")
	assert.Equal(t, utils.RendererText, merged.Renderer)
}

func TestMergeFlags_LeavesRootCommandUntouched(t *testing.T) {
	cmd := newFlagCommand(t)
	require.NoError(t, cmd.Flags().Parse([]string{"--width", "12"}))

	assert.True(t, cmd.Flags().Changed("width"))
	assert.False(t, rootCmd.Flags().Changed("width"))
	merged := mergeFlags(rootCmd, utils.DefaultConfig())
	assert.Equal(t, utils.DefaultConfig().Width, merged.Width)
}
