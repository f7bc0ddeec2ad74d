// Package move converts the first step of a path into a direction token.
package move

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-autoplayer/game/world"
)

var (
	ErrEmptyPath        = errors.New("empty path")
	ErrUnknownDirection = errors.New("unknown direction")
)

// Direction is one of the four outbound move tokens.
type Direction string

const (
	Up    Direction = "UP"
	Down  Direction = "DOWN"
	Left  Direction = "LEFT"
	Right Direction = "RIGHT"
)

// Deltas maps each direction to its grid offset.
var Deltas = map[Direction]world.Coordinate{
	Up:    {Row: -1, Col: 0},
	Down:  {Row: 1, Col: 0},
	Left:  {Row: 0, Col: -1},
	Right: {Row: 0, Col: 1},
}

// Parse validates a raw token.
func Parse(token string) (Direction, error) {
	d := Direction(token)
	if _, ok := Deltas[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, token)
	}
	return d, nil
}

// Delta returns the grid offset of d.
func (d Direction) Delta() world.Coordinate {
	return Deltas[d]
}

func (d Direction) String() string {
	return string(d)
}

// Translate returns the direction that takes current onto path[0].
// A step in the same row is horizontal, anything else is vertical.
func Translate(current world.Coordinate, path []world.Coordinate) (Direction, error) {
	if len(path) == 0 {
		return "", ErrEmptyPath
	}

	next := path[0]
	if next.Row == current.Row {
		if next.Col > current.Col {
			return Right, nil
		}
		return Left, nil
	}

	if next.Row > current.Row {
		return Down, nil
	}
	return Up, nil
}
