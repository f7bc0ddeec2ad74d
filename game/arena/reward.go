package arena

import (
	"math"
	"math/rand"

	"github.com/beka-birhanu/vinom-autoplayer/game/world"
)

// Base probabilities of the upper tiers. Tier 3 grows towards the center.
const (
	tierTwoProb       = 0.3
	tierThreeBaseProb = 0.1
	tierThreeBonus    = 0.3
)

// populateCoins places coins on open cells other than the start.
func (a *Arena) populateCoins(rng *rand.Rand, density float64) {
	for r := range a.cells {
		for c := range a.cells[r] {
			if a.cells[r][c].wall || world.At(r, c) == a.pos {
				continue
			}
			if rng.Float64() >= density {
				continue
			}
			a.cells[r][c].tier = pickTier(rng.Float64(), world.At(r, c))
			a.coinsLeft++
		}
	}
}

// pickTier maps a uniform roll to a tier, favouring tier 3 near the center.
func pickTier(roll float64, c world.Coordinate) int {
	tierThree := tierThreeBaseProb + tierThreeBonus*closeness(c)
	switch {
	case roll < tierThree:
		return 3
	case roll < tierThree+tierTwoProb:
		return 2
	default:
		return 1
	}
}

// closeness is 1 at the center of the grid and 0 at the corners,
// based on the Manhattan distance.
func closeness(c world.Coordinate) float64 {
	midRow, midCol := float64(world.Rows-1)/2, float64(world.Cols-1)/2
	dist := math.Abs(float64(c.Row)-midRow) + math.Abs(float64(c.Col)-midCol)
	return 1.0 - dist/(midRow+midCol)
}
