/*
Package arena provides a local 10x10 coin world that produces the same
observations a remote game host would send.

Walls are carved from a maze generated with Wilson's algorithm, either walked
in-package from a seed or taken from the wilson-maze library; coins of
three tiers are scattered over the open cells, with higher tiers more likely
near the center.
*/
package arena

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/beka-birhanu/vinom-autoplayer/game/move"
	"github.com/beka-birhanu/vinom-autoplayer/game/visibility"
	"github.com/beka-birhanu/vinom-autoplayer/game/world"
)

var (
	ErrInvalidMove    = errors.New("invalid move request")
	ErrInvalidStart   = errors.New("start position is not an open cell")
	ErrInvalidOptions = errors.New("invalid arena options")
	ErrInvalidLayout  = errors.New("invalid arena layout")
)

// TierValues is the score of a coin per tier, tier 1 first.
var TierValues = [visibility.CoinTiers]int{1, 2, 3}

// cell is the ground truth of one arena square.
type cell struct {
	wall bool // wall blocks movement
	tier int  // coin tier, 0 when the cell holds no coin
}

// MazeSource selects the generator the arena walls are carved from.
type MazeSource string

const (
	// MazeSeeded walks the maze in-package from Options.Seed, so a seed always
	// yields the same walls.
	MazeSeeded MazeSource = "seeded"

	// MazeLibrary takes the walls from github.com/beka-birhanu/wilson-maze.
	MazeLibrary MazeSource = "wilson"
)

// Options configures a generated arena.
type Options struct {
	Seed        int64            // Seed for coin placement, and for the walls of a seeded maze
	CoinDensity float64          // Probability that an open cell holds a coin (0.0 to 1.0)
	Start       world.Coordinate // Starting position, must land on an open cell
	Maze        MazeSource       // Wall generator, MazeSeeded when empty
}

// Arena is a fully known grid with an agent position and a score.
// It is not safe for concurrent use.
type Arena struct {
	cells     [world.Rows][world.Cols]cell
	pos       world.Coordinate
	score     int
	coinsLeft int
	moves     int
}

// New generates an arena from opts.
func New(opts Options) (*Arena, error) {
	if opts.CoinDensity < 0 || opts.CoinDensity > 1 {
		return nil, fmt.Errorf("%w: coin density %v", ErrInvalidOptions, opts.CoinDensity)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	var passages []passage
	switch opts.Maze {
	case MazeSeeded, "":
		passages = generateMaze(rng)
	case MazeLibrary:
		var err error
		if passages, err = libraryMaze(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: maze source %q", ErrInvalidOptions, opts.Maze)
	}

	a := &Arena{}
	a.carve(passages)

	if !opts.Start.InBound() || a.cells[opts.Start.Row][opts.Start.Col].wall {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStart, opts.Start)
	}
	a.pos = opts.Start
	a.populateCoins(rng, opts.CoinDensity)
	return a, nil
}

// NewFromLayout builds an arena from rows of symbols: W wall, . open,
// 1 to 3 a coin of that tier. Missing cells are open.
func NewFromLayout(rows []string, start world.Coordinate) (*Arena, error) {
	if len(rows) > world.Rows {
		return nil, fmt.Errorf("%w: %d rows", ErrInvalidLayout, len(rows))
	}

	a := &Arena{}
	for r, line := range rows {
		line = strings.ReplaceAll(line, " ", "")
		if len(line) > world.Cols {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrInvalidLayout, r, len(line))
		}
		for c, ch := range line {
			switch ch {
			case 'W':
				a.cells[r][c].wall = true
			case '.':
			case '1', '2', '3':
				a.cells[r][c].tier = int(ch - '0')
				a.coinsLeft++
			default:
				return nil, fmt.Errorf("%w: symbol %q", ErrInvalidLayout, ch)
			}
		}
	}

	if !start.InBound() || a.cells[start.Row][start.Col].wall {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStart, start)
	}
	a.pos = start
	a.collect()
	a.score = 0
	return a, nil
}

// Position returns the agent position.
func (a *Arena) Position() world.Coordinate {
	return a.pos
}

// Score returns the value of every coin collected so far.
func (a *Arena) Score() int {
	return a.score
}

// CoinsLeft returns how many coins remain on the grid.
func (a *Arena) CoinsLeft() int {
	return a.coinsLeft
}

// Moves returns the number of accepted moves.
func (a *Arena) Moves() int {
	return a.moves
}

// Done reports whether every coin has been collected.
func (a *Arena) Done() bool {
	return a.coinsLeft == 0
}

// IsWall reports whether c is a wall. Out of bound cells count as walls.
func (a *Arena) IsWall(c world.Coordinate) bool {
	return !c.InBound() || a.cells[c.Row][c.Col].wall
}

// Observe returns what the agent sees from its current position.
func (a *Arena) Observe() visibility.Observation {
	obs := visibility.Observation{Position: a.pos}
	for i := range obs.Coins {
		obs.Coins[i] = []world.Coordinate{}
	}
	obs.Walls = []world.Coordinate{}

	for _, c := range visibility.NewWindow(a.pos).Cells() {
		sq := a.cells[c.Row][c.Col]
		if sq.wall {
			obs.Walls = append(obs.Walls, c)
			continue
		}
		if sq.tier > 0 {
			obs.Coins[sq.tier-1] = append(obs.Coins[sq.tier-1], c)
		}
	}
	return obs
}

// Move applies a move and returns the value of the coin picked up, if any.
// The position is unchanged when the move is rejected.
func (a *Arena) Move(d move.Direction) (int, error) {
	if _, ok := move.Deltas[d]; !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMove, d)
	}

	to := a.pos.Add(d.Delta())
	if a.IsWall(to) {
		return 0, fmt.Errorf("%w: %s to %s", ErrInvalidMove, d, to)
	}

	a.pos = to
	a.moves++
	return a.collect(), nil
}

// collect picks up the coin under the agent.
func (a *Arena) collect() int {
	sq := &a.cells[a.pos.Row][a.pos.Col]
	if sq.tier == 0 {
		return 0
	}
	value := TierValues[sq.tier-1]
	sq.tier = 0
	a.coinsLeft--
	a.score += value
	return value
}

// String provides a textual representation of the arena.
func (a *Arena) String() string {
	var b strings.Builder
	for r := range a.cells {
		row := make([]string, world.Cols)
		for c, sq := range a.cells[r] {
			switch {
			case world.At(r, c) == a.pos:
				row[c] = "P"
			case sq.wall:
				row[c] = "W"
			case sq.tier > 0:
				row[c] = fmt.Sprint(sq.tier)
			default:
				row[c] = "."
			}
		}
		b.WriteString(strings.Join(row, " "))
		b.WriteString("\n")
	}
	return b.String()
}
