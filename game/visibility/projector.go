// Package visibility turns a raw observation into cell states on the world.
package visibility

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-autoplayer/game/world"
)

// Radius is how far the agent sees around its own cell.
const Radius = 2

// CoinTiers is the number of independent coin lists in an observation.
const CoinTiers = 3

var (
	ErrMalformedObservation = errors.New("malformed observation")
)

// Observation is a single egocentric view of the grid.
type Observation struct {
	Position world.Coordinate              // Current agent position
	Walls    []world.Coordinate            // Walls inside the window
	Coins    [CoinTiers][]world.Coordinate // Coins inside the window, one list per tier
}

// Window is the inclusive rectangle revealed around a position.
type Window struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// NewWindow returns the window centered on pos, clipped to the grid.
func NewWindow(pos world.Coordinate) Window {
	return Window{
		Top:    max(pos.Row-Radius, 0),
		Left:   max(pos.Col-Radius, 0),
		Bottom: min(pos.Row+Radius, world.Rows-1),
		Right:  min(pos.Col+Radius, world.Cols-1),
	}
}

// Contains reports whether c lies inside the window.
func (w Window) Contains(c world.Coordinate) bool {
	return c.Row >= w.Top && c.Row <= w.Bottom && c.Col >= w.Left && c.Col <= w.Right
}

// Cells returns every coordinate of the window in row-major order.
func (w Window) Cells() []world.Coordinate {
	cells := make([]world.Coordinate, 0, (w.Bottom-w.Top+1)*(w.Right-w.Left+1))
	for row := w.Top; row <= w.Bottom; row++ {
		for col := w.Left; col <= w.Right; col++ {
			cells = append(cells, world.At(row, col))
		}
	}
	return cells
}

func (w Window) String() string {
	return fmt.Sprintf("%s-%s", world.At(w.Top, w.Left), world.At(w.Bottom, w.Right))
}

// Validate checks that every coordinate of the observation is inside the grid.
func (o Observation) Validate() error {
	if !o.Position.InBound() {
		return fmt.Errorf("%w: position %s", ErrMalformedObservation, o.Position)
	}
	for _, c := range o.Walls {
		if !c.InBound() {
			return fmt.Errorf("%w: wall %s", ErrMalformedObservation, c)
		}
	}
	for tier, coins := range o.Coins {
		for _, c := range coins {
			if !c.InBound() {
				return fmt.Errorf("%w: coin%d %s", ErrMalformedObservation, tier+1, c)
			}
		}
	}
	return nil
}

// Project writes the window revealed by obs into w.
// Nothing is written unless the whole observation is valid.
func Project(w *world.World, obs Observation) error {
	if err := obs.Validate(); err != nil {
		return err
	}

	walls := make(map[world.Coordinate]struct{}, len(obs.Walls))
	for _, c := range obs.Walls {
		walls[c] = struct{}{}
	}
	coins := make(map[world.Coordinate]struct{})
	for _, tier := range obs.Coins {
		for _, c := range tier {
			coins[c] = struct{}{}
		}
	}

	for _, c := range NewWindow(obs.Position).Cells() {
		if err := w.Apply(c, classify(c, obs.Position, walls, coins)); err != nil {
			return err
		}
	}
	return nil
}

func classify(c, pos world.Coordinate, walls, coins map[world.Coordinate]struct{}) world.CellState {
	if c == pos {
		return world.Occupant
	}
	if _, ok := walls[c]; ok {
		return world.Wall
	}
	if _, ok := coins[c]; ok {
		return world.Coin
	}
	return world.Empty
}
