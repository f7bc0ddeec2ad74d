package arena

import (
	"fmt"
	"math/rand"

	"github.com/beka-birhanu/vinom-autoplayer/game/world"
	wilson "github.com/beka-birhanu/wilson-maze"
)

// Rooms sit on even arena coordinates, so a 10x10 arena holds a 5x5 maze.
const (
	mazeRows = world.Rows / 2
	mazeCols = world.Cols / 2
)

// room is a maze node.
type room struct {
	row int
	col int
}

// passage is an opened wall between two adjacent rooms.
type passage struct {
	from room
	to   room
}

// roomOffsets is kept ordered so a seed always yields the same maze.
var roomOffsets = []room{{-1, 0}, {1, 0}, {0, 1}, {0, -1}}

// neighbors returns the rooms adjacent to r.
func neighbors(r room) []room {
	result := make([]room, 0, len(roomOffsets))
	for _, d := range roomOffsets {
		n := room{row: r.row + d.row, col: r.col + d.col}
		if n.row >= 0 && n.row < mazeRows && n.col >= 0 && n.col < mazeCols {
			result = append(result, n)
		}
	}
	return result
}

// randomUnvisitedRoom selects a random room that is not part of the maze yet.
func randomUnvisitedRoom(rng *rand.Rand, visited map[room]struct{}) room {
	for {
		r := room{row: rng.Intn(mazeRows), col: rng.Intn(mazeCols)}
		if _, included := visited[r]; !included {
			return r
		}
	}
}

// randomWalk walks from an unvisited room until it hits the maze and returns
// the loop-erased path as passages.
func randomWalk(rng *rand.Rand, visited map[room]struct{}) []passage {
	start := randomUnvisitedRoom(rng, visited)
	exits := make(map[room]room)
	current := start

	for {
		options := neighbors(current)
		next := options[rng.Intn(len(options))]
		exits[current] = next
		if _, included := visited[next]; included {
			break
		}
		current = next
	}

	var path []passage
	for r := start; ; {
		next := exits[r]
		path = append(path, passage{from: r, to: next})
		if _, included := visited[next]; included {
			return path
		}
		r = next
	}
}

// generateMaze builds a spanning tree over all rooms with Wilson's algorithm.
func generateMaze(rng *rand.Rand) []passage {
	visited := make(map[room]struct{}, mazeRows*mazeCols)
	visited[room{row: rng.Intn(mazeRows), col: rng.Intn(mazeCols)}] = struct{}{}

	var passages []passage
	for len(visited) < mazeRows*mazeCols {
		for _, p := range randomWalk(rng, visited) {
			passages = append(passages, p)
			visited[p.from] = struct{}{}
		}
	}
	return passages
}

// libraryMaze builds the spanning tree with the wilson-maze generator. The
// library draws from its own randomness, so the result does not follow a seed.
func libraryMaze() ([]passage, error) {
	m, err := wilson.New(mazeCols, mazeRows)
	if err != nil {
		return nil, fmt.Errorf("generating maze: %w", err)
	}

	grid := m.RetriveGrid()
	if len(grid) != mazeRows {
		return nil, fmt.Errorf("%w: maze has %d rows", ErrInvalidOptions, len(grid))
	}
	for r, row := range grid {
		if len(row) != mazeCols {
			return nil, fmt.Errorf("%w: maze row %d has %d cells", ErrInvalidOptions, r, len(row))
		}
	}

	return passagesFromWalls(
		func(r, c int) bool { return grid[r][c].HasEastWall() },
		func(r, c int) bool { return grid[r][c].HasSouthWall() },
	), nil
}

// passagesFromWalls opens a passage wherever a room lacks its east or south
// wall. West and north walls mirror the neighbor's and are not consulted.
func passagesFromWalls(eastWall, southWall func(row, col int) bool) []passage {
	var passages []passage
	for row := 0; row < mazeRows; row++ {
		for col := 0; col < mazeCols; col++ {
			from := room{row: row, col: col}
			if col+1 < mazeCols && !eastWall(row, col) {
				passages = append(passages, passage{from: from, to: room{row: row, col: col + 1}})
			}
			if row+1 < mazeRows && !southWall(row, col) {
				passages = append(passages, passage{from: from, to: room{row: row + 1, col: col}})
			}
		}
	}
	return passages
}

// carve turns the maze into arena cells: rooms and opened passages are
// walkable, every other cell is a wall.
func (a *Arena) carve(passages []passage) {
	for r := range a.cells {
		for c := range a.cells[r] {
			a.cells[r][c].wall = true
		}
	}

	for row := 0; row < mazeRows; row++ {
		for col := 0; col < mazeCols; col++ {
			a.cells[row*2][col*2].wall = false
		}
	}

	for _, p := range passages {
		a.cells[p.from.row+p.to.row][p.from.col+p.to.col].wall = false
	}
}
