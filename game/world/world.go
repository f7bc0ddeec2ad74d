/*
Package world holds the agent's belief about the 10x10 coin grid.

The model is a sticky partial memory: every cell starts Unknown and only
changes when an observation explicitly reports it. Cells that fall outside
the latest visibility window keep whatever state they were last given.
*/
package world

import (
	"errors"
	"fmt"
	"strings"
)

// Grid dimensions. The world is always square.
const (
	Rows = 10
	Cols = 10
)

var (
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

// Coordinate is a 0-indexed (row, column) pair.
type Coordinate struct {
	Row int // Row index, grows downwards
	Col int // Column index, grows to the right
}

// At is shorthand for Coordinate{Row: row, Col: col}.
func At(row, col int) Coordinate {
	return Coordinate{Row: row, Col: col}
}

// InBound reports whether the coordinate lies inside the grid.
func (c Coordinate) InBound() bool {
	return c.Row >= 0 && c.Row < Rows && c.Col >= 0 && c.Col < Cols
}

// Add returns the coordinate shifted by delta.
func (c Coordinate) Add(delta Coordinate) Coordinate {
	return Coordinate{Row: c.Row + delta.Row, Col: c.Col + delta.Col}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// CellState is what the agent believes about a single cell.
type CellState int

const (
	Unknown  CellState = iota // Never observed
	Empty                     // Observed, walkable, no coin
	Wall                      // Observed, blocked
	Coin                      // Observed, holds a coin of any tier
	Occupant                  // Observed, holds the agent's own marker
)

// Traversable reports whether a path may pass through a cell in this state.
// Occupant always wins over wall information.
func (s CellState) Traversable() bool {
	if s == Occupant {
		return true
	}
	return s != Wall
}

// Symbol returns the one letter code used when rendering the grid.
func (s CellState) Symbol() string {
	switch s {
	case Empty:
		return "X"
	case Wall:
		return "W"
	case Coin:
		return "C"
	case Occupant:
		return "P"
	default:
		return "O"
	}
}

func (s CellState) String() string {
	switch s {
	case Unknown:
		return "unknown"
	case Empty:
		return "empty"
	case Wall:
		return "wall"
	case Coin:
		return "coin"
	case Occupant:
		return "occupant"
	default:
		return fmt.Sprintf("CellState(%d)", int(s))
	}
}

// World is the belief grid owned by a single agent.
// It is not safe for concurrent use.
type World struct {
	grid [Rows][Cols]CellState
}

// New returns a world where every cell is Unknown.
func New() *World {
	return &World{}
}

// Apply sets the state of a single cell.
func (w *World) Apply(c Coordinate, s CellState) error {
	if !c.InBound() {
		return fmt.Errorf("apply %s: %w", c, ErrOutOfBounds)
	}
	w.grid[c.Row][c.Col] = s
	return nil
}

// Get returns the current state of a cell.
func (w *World) Get(c Coordinate) (CellState, error) {
	if !c.InBound() {
		return Unknown, fmt.Errorf("get %s: %w", c, ErrOutOfBounds)
	}
	return w.grid[c.Row][c.Col], nil
}

// Count returns how many cells currently hold the given state.
func (w *World) Count(s CellState) int {
	n := 0
	for row := range w.grid {
		for col := range w.grid[row] {
			if w.grid[row][col] == s {
				n++
			}
		}
	}
	return n
}

// Snapshot returns a copy of the grid.
func (w *World) Snapshot() [Rows][Cols]CellState {
	return w.grid
}

// Symbols returns the grid as rows of one letter cell codes.
func (w *World) Symbols() [][]string {
	rows := make([][]string, Rows)
	for row := range w.grid {
		rows[row] = make([]string, Cols)
		for col := range w.grid[row] {
			rows[row][col] = w.grid[row][col].Symbol()
		}
	}
	return rows
}

// String renders the grid one row per line.
func (w *World) String() string {
	var b strings.Builder
	for _, row := range w.Symbols() {
		b.WriteString(strings.Join(row, " "))
		b.WriteString("\n")
	}
	return b.String()
}
