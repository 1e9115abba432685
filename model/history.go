package model

// historySize is how many recent hashes are kept. A generation repeating any
// of them is a still life or an oscillator with period <= historySize.
const historySize = 3

// History keeps recent grid hashes for cycle detection
type History struct {
	hashes []string
}

// Update adds the grid's current state to history and maintains size
func (h *History) Update(g *Grid) {
	h.hashes = append(h.hashes, g.GetGridHash())
	if len(h.hashes) > historySize {
		h.hashes = h.hashes[1:]
	}
}

// IsStagnant reports whether the grid's current state matches any recorded
// state. It needs a full history before it reports anything.
func (h *History) IsStagnant(g *Grid) bool {
	if len(h.hashes) < historySize {
		return false
	}
	currentHash := g.GetGridHash()
	for _, hash := range h.hashes {
		if hash == currentHash {
			return true
		}
	}
	return false
}

// Reset forgets every recorded state
func (h *History) Reset() {
	h.hashes = nil
}
