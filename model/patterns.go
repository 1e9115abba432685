package model

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrBadPattern is returned for malformed plaintext pattern input
var ErrBadPattern = errors.New("malformed pattern")

// Pattern is a rectangular block of cells indexed [y][x]
type Pattern [][]bool

var (
	glider = Pattern{
		{false, true, false},
		{false, false, true},
		{true, true, true},
	}
	blinker = Pattern{
		{true, true, true},
	}
	block = Pattern{
		{true, true},
		{true, true},
	}

	builtinPatterns = map[string]Pattern{
		"glider":  glider,
		"blinker": blinker,
		"block":   block,
	}
)

// PatternByName returns one of the built-in patterns
func PatternByName(name string) (Pattern, bool) {
	p, ok := builtinPatterns[strings.ToLower(name)]
	return p, ok
}

// Width returns the widest row of the pattern
func (p Pattern) Width() (w int) {
	for _, row := range p {
		w = max(w, len(row))
	}
	return
}

// Height returns the number of rows in the pattern
func (p Pattern) Height() int {
	return len(p)
}

// ParsePlaintext reads a pattern in the plaintext ".cells" format:
// lines starting with '!' are comments, 'O' is alive and '.' is dead.
// Short rows are padded with dead cells.
func ParsePlaintext(r io.Reader) (Pattern, error) {
	var (
		p       Pattern
		scanner = bufio.NewScanner(r)
		line    = 0
	)
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.HasPrefix(text, "!") {
			continue
		}
		row := make([]bool, len(text))
		for x, c := range text {
			switch c {
			case 'O', 'o', '*':
				row[x] = true
			case '.':
			default:
				return nil, errors.Wrapf(ErrBadPattern, "[ParsePlaintext] line %d: unexpected %q", line, c)
			}
		}
		p = append(p, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "[ParsePlaintext] failed to read pattern")
	}
	width := p.Width()
	if width == 0 {
		return nil, errors.Wrap(ErrBadPattern, "[ParsePlaintext] pattern has no cells")
	}
	for y, row := range p {
		if len(row) < width {
			p[y] = append(row, make([]bool, width-len(row))...)
		}
	}
	return p, nil
}

// LoadPattern resolves a built-in pattern name or reads a plaintext file
func LoadPattern(nameOrPath string) (Pattern, error) {
	if p, ok := PatternByName(nameOrPath); ok {
		return p, nil
	}
	f, err := os.Open(nameOrPath)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadPattern] failed to open pattern: %+v", nameOrPath)
	}
	defer f.Close()

	p, err := ParsePlaintext(f)
	if err != nil {
		return nil, errors.Wrapf(err, "[LoadPattern] %s", nameOrPath)
	}
	return p, nil
}

// Place stages p into the next generation with its top-left corner at
// (startX, startY) and promotes it with Flip. Cells outside the pattern keep
// their current value. Nothing is written if the pattern does not fit.
func (g *Grid) Place(p Pattern, startX, startY int) error {
	if startX < 0 || startY < 0 || startX+p.Width() > g.width || startY+p.Height() > g.height {
		return errors.Wrapf(ErrOutOfRange, "[Place] %dx%d pattern at (%d, %d) on a %dx%d grid",
			p.Width(), p.Height(), startX, startY, g.width, g.height)
	}

	copy(g.buffers[g.next()], g.buffers[g.current])
	for y, row := range p {
		for x, alive := range row {
			if err := g.Set(startX+x, startY+y, alive); err != nil {
				return errors.Wrap(err, "[Place]")
			}
		}
	}
	g.Flip()
	return nil
}
