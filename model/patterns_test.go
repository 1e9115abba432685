package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternByName(t *testing.T) {
	for _, name := range []string{"glider", "blinker", "block", "GLIDER"} {
		p, ok := PatternByName(name)
		assert.True(t, ok, name)
		assert.NotEmpty(t, p, name)
	}
	_, ok := PatternByName("gosper")
	assert.False(t, ok)
}

func TestParsePlaintext(t *testing.T) {
	input := `!Name: Glider
!
.O.
..O
OOO
`
	p, err := ParsePlaintext(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, glider, p)
}

func TestParsePlaintext_PadsShortRows(t *testing.T) {
	p, err := ParsePlaintext(strings.NewReader("O\n\n..O\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, p.Width())
	assert.Equal(t, 3, p.Height())
	for _, row := range p {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, Pattern{{true, false, false}, {false, false, false}, {false, false, true}}, p)
}

func TestParsePlaintext_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unknown character", input: ".O.\n.X.\n"},
		{name: "only comments", input: "!nothing here\n"},
		{name: "empty", input: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlaintext(strings.NewReader(tt.input))
			assert.True(t, errors.Is(err, ErrBadPattern), "got %v", err)
		})
	}
}

func TestLoadPattern_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "block.cells")
	require.NoError(t, os.WriteFile(path, []byte("!Name: Block\nOO\nOO\n"), 0o644))

	p, err := LoadPattern(path)
	require.NoError(t, err)
	assert.Equal(t, block, p)

	_, err = LoadPattern(filepath.Join(t.TempDir(), "missing.cells"))
	assert.Error(t, err)
}

func TestGrid_Place(t *testing.T) {
	g := newTestGrid(t, 6, 6, [2]int{5, 5})

	require.NoError(t, g.Place(blinker, 1, 2))
	assert.Equal(t, map[[2]int]bool{{1, 2}: true, {2, 2}: true, {3, 2}: true, {5, 5}: true}, liveCells(t, g),
		"pattern is visible and existing cells survive staging")
}

func TestGrid_Place_DoesNotFit(t *testing.T) {
	g := newTestGrid(t, 4, 4, [2]int{0, 0})

	for _, at := range [][2]int{{2, 2}, {-1, 0}, {0, 4}} {
		err := g.Place(glider, at[0], at[1])
		assert.True(t, errors.Is(err, ErrOutOfRange), "glider at %v", at)
	}
	assert.Equal(t, map[[2]int]bool{{0, 0}: true}, liveCells(t, g), "grid unchanged after a rejected placement")
}
