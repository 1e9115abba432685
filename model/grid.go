package model

import (
	"crypto/md5"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/lifegrid/rules"
)

var (
	// ErrOutOfRange is returned when a coordinate falls outside the grid
	ErrOutOfRange = errors.New("coordinate out of range")
	// ErrInvalidDimensions is returned when a grid is created with a non-positive
	// side or with more cells than a slice can address
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
)

// Grid is a fixed-size, non-wrapping Game of Life board.
//
// Cells live in two flat buffers addressed by y*width + x. Reads target the
// current buffer and writes target the other one; Flip swaps their roles.
type Grid struct {
	width   int
	height  int
	current int
	buffers [2][]bool
}

// NewGrid creates a new grid with the given dimensions, all cells dead
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "[NewGrid] got %dx%d", width, height)
	}
	if width > math.MaxInt/height {
		return nil, errors.Wrapf(ErrInvalidDimensions, "[NewGrid] %dx%d cells overflow int", width, height)
	}
	size := width * height
	return &Grid{
		width:   width,
		height:  height,
		buffers: [2][]bool{make([]bool, size), make([]bool, size)},
	}, nil
}

// GetWidth returns the width of the grid
func (g *Grid) GetWidth() int {
	return g.width
}

// GetHeight returns the height of the grid
func (g *Grid) GetHeight() int {
	return g.height
}

func (g *Grid) next() int {
	return (g.current + 1) % 2
}

func (g *Grid) offset(x, y int) (int, error) {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0, errors.Wrapf(ErrOutOfRange, "(%d, %d) on a %dx%d grid", x, y, g.width, g.height)
	}
	return y*g.width + x, nil
}

// Get returns the state of a cell in the current generation
func (g *Grid) Get(x, y int) (bool, error) {
	ofs, err := g.offset(x, y)
	if err != nil {
		return false, errors.Wrap(err, "[Get]")
	}
	return g.buffers[g.current][ofs], nil
}

// Set writes a cell into the next generation. The value becomes visible
// to Get only after Flip.
func (g *Grid) Set(x, y int, alive bool) error {
	ofs, err := g.offset(x, y)
	if err != nil {
		return errors.Wrap(err, "[Set]")
	}
	g.buffers[g.next()][ofs] = alive
	return nil
}

// Flip swaps the current and next buffers without touching their contents
func (g *Grid) Flip() {
	g.current = g.next()
}

// CountNeighbors counts living cells among the in-bounds neighbours of (x, y).
// The result is in [0, rules.MaxNeighbors].
func (g *Grid) CountNeighbors(x, y int) (int, error) {
	if _, err := g.offset(x, y); err != nil {
		return 0, errors.Wrap(err, "[CountNeighbors]")
	}
	return g.countNeighbors(x, y), nil
}

// countNeighbors assumes (x, y) is in range
func (g *Grid) countNeighbors(x, y int) int {
	var (
		cells = g.buffers[g.current]
		count = 0
		minX  = max(0, x-1)
		maxX  = min(g.width-1, x+1)
		minY  = max(0, y-1)
		maxY  = min(g.height-1, y+1)
	)

	for ny := minY; ny <= maxY; ny++ {
		row := ny * g.width
		for nx := minX; nx <= maxX; nx++ {
			if nx == x && ny == y {
				continue
			}
			if cells[row+nx] {
				count++
			}
		}
	}
	return count
}

// Step advances the board by one generation. Every cell of the next buffer
// is computed from the current buffer before the two are flipped.
func (g *Grid) Step() {
	var (
		cur = g.buffers[g.current]
		nxt = g.buffers[g.next()]
	)
	for y := range g.height {
		for x := range g.width {
			ofs := y*g.width + x
			nxt[ofs] = rules.ApplyConwayRules(g.countNeighbors(x, y), cur[ofs])
		}
	}
	g.Flip()
}

// Randomise overwrites every cell of the current generation with a fair coin
// flip drawn from r. A nil r is replaced by a time-seeded source.
func (g *Grid) Randomise(r *rand.Rand) {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cells := g.buffers[g.current]
	for i := range cells {
		cells[i] = r.Intn(2) == 1
	}
}

// Clear kills every cell in both buffers
func (g *Grid) Clear() {
	for _, buf := range g.buffers {
		clear(buf)
	}
}

// CountLivingCells returns the number of living cells in the current generation
func (g *Grid) CountLivingCells() (count int) {
	for _, alive := range g.buffers[g.current] {
		if alive {
			count++
		}
	}
	return
}

// GetGridHash returns an MD5 hash of the current generation
func (g *Grid) GetGridHash() string {
	var (
		h   = md5.New()
		buf = make([]byte, len(g.buffers[g.current]))
	)
	for i, alive := range g.buffers[g.current] {
		if alive {
			buf[i] = 1
		}
	}
	h.Write(buf)
	return fmt.Sprintf("%x", h.Sum(nil))
}
