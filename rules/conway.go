package rules

// MaxNeighbors is the largest neighbour count a cell can have on a square lattice
const MaxNeighbors = 8

/*
ApplyConwayRules returns the state of a cell in the next generation.

A live cell survives with two or three live neighbours; a dead cell is born
with exactly three. Every other cell is dead in the next generation:

	(alive && neighbors == 2) || neighbors == 3
*/
func ApplyConwayRules(neighbors int, alive bool) bool {
	return (alive && neighbors == 2) || neighbors == 3
}
