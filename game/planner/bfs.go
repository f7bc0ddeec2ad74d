// Package planner picks the next target cell with a breadth-first search over the world.
package planner

import (
	"errors"

	"github.com/beka-birhanu/vinom-autoplayer/game/world"
)

var (
	ErrNoTargetReachable = errors.New("no target reachable")
)

// TargetKind tags the goal of a plan.
type TargetKind int

const (
	NoTarget          TargetKind = iota
	NearestCoin                  // A reachable coin was found
	NearestUnexplored            // No coin reachable, heading to the closest unknown cell
)

func (k TargetKind) String() string {
	switch k {
	case NearestCoin:
		return "nearest_coin"
	case NearestUnexplored:
		return "nearest_unexplored"
	default:
		return "none"
	}
}

// Offsets is the neighbor expansion order: Right, Left, Down, Up.
// Equal length paths are resolved by whichever is reached first in this order.
var Offsets = [4]world.Coordinate{
	{Row: 0, Col: 1},
	{Row: 0, Col: -1},
	{Row: 1, Col: 0},
	{Row: -1, Col: 0},
}

// Path is a walk from the cell after the start up to and including the target.
type Path []world.Coordinate

// Target returns the last cell of the path.
func (p Path) Target() (world.Coordinate, bool) {
	if len(p) == 0 {
		return world.Coordinate{}, false
	}
	return p[len(p)-1], true
}

// Plan is the outcome of a successful search.
type Plan struct {
	Kind TargetKind
	Path Path
}

// Grid is the read access the planner needs.
type Grid interface {
	Get(world.Coordinate) (world.CellState, error)
}

// PlanFrom searches for the nearest coin and falls back to the nearest unknown cell.
func PlanFrom(g Grid, start world.Coordinate) (Plan, error) {
	path, err := Search(g, start, isState(world.Coin))
	if err == nil {
		return Plan{Kind: NearestCoin, Path: path}, nil
	}
	if !errors.Is(err, ErrNoTargetReachable) {
		return Plan{}, err
	}

	path, err = Search(g, start, isState(world.Unknown))
	if err != nil {
		return Plan{}, err
	}
	return Plan{Kind: NearestUnexplored, Path: path}, nil
}

// Search runs a single breadth-first pass from start and returns the path to
// the first dequeued cell, other than start, whose state satisfies goal.
func Search(g Grid, start world.Coordinate, goal func(world.CellState) bool) (Path, error) {
	if _, err := g.Get(start); err != nil {
		return nil, err
	}

	cameFrom := map[world.Coordinate]world.Coordinate{start: start}
	queue := []world.Coordinate{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current != start {
			state, err := g.Get(current)
			if err != nil {
				return nil, err
			}
			if goal(state) {
				return reconstruct(cameFrom, start, current), nil
			}
		}

		for _, delta := range Offsets {
			next := current.Add(delta)
			if !next.InBound() {
				continue
			}
			if _, seen := cameFrom[next]; seen {
				continue
			}
			state, err := g.Get(next)
			if err != nil {
				return nil, err
			}
			if !state.Traversable() {
				continue
			}
			cameFrom[next] = current
			queue = append(queue, next)
		}
	}

	return nil, ErrNoTargetReachable
}

// reconstruct walks the parent links back from target, excluding start.
func reconstruct(cameFrom map[world.Coordinate]world.Coordinate, start, target world.Coordinate) Path {
	var reversed Path
	for c := target; c != start; c = cameFrom[c] {
		reversed = append(reversed, c)
	}

	path := make(Path, len(reversed))
	for i, c := range reversed {
		path[len(reversed)-1-i] = c
	}
	return path
}

func isState(want world.CellState) func(world.CellState) bool {
	return func(s world.CellState) bool {
		return s == want
	}
}
