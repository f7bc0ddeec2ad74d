package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/game/arena"
	"github.com/beka-birhanu/vinom-autoplayer/game/world"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
)

const defaultMaxTurns = 500

var ErrTurnLimit = errors.New("turn limit reached")

// SimulationReport summarizes a local run.
type SimulationReport struct {
	Turns     int
	Score     int
	CoinsLeft int
	Exhausted bool
	Position  world.Coordinate
}

func (r SimulationReport) String() string {
	return fmt.Sprintf("turns=%d score=%d coins_left=%d exhausted=%t position=%s",
		r.Turns, r.Score, r.CoinsLeft, r.Exhausted, r.Position)
}

// Simulator plays an agent against an in-process arena, without a broker.
type Simulator struct {
	logger   i.Logger
	maxTurns int
}

// NewSimulator creates a Simulator. A non-positive maxTurns uses the default.
func NewSimulator(logger i.Logger, maxTurns int) *Simulator {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &Simulator{
		logger:   logger,
		maxTurns: maxTurns,
	}
}

// Run plays until every coin is collected, the agent is exhausted or the
// turn limit is reached. Reaching the limit returns the report and ErrTurnLimit.
func (s *Simulator) Run(ctx context.Context, p *game.AutoPlayer, a *arena.Arena) (SimulationReport, error) {
	report := func(exhausted bool) SimulationReport {
		return SimulationReport{
			Turns:     p.Turns(),
			Score:     a.Score(),
			CoinsLeft: a.CoinsLeft(),
			Exhausted: exhausted,
			Position:  a.Position(),
		}
	}

	for p.Turns() < s.maxTurns {
		if err := ctx.Err(); err != nil {
			return report(false), err
		}
		if a.Done() {
			s.logger.Info(fmt.Sprintf("all coins collected after %d turns", p.Turns()))
			return report(false), nil
		}

		turn, err := p.Handle(a.Observe())
		if err != nil {
			return report(false), err
		}

		cmd, ok := turn.Command()
		if !ok {
			s.logger.Warning(fmt.Sprintf("exhausted at %s with %d coins left", turn.Position, a.CoinsLeft()))
			return report(true), nil
		}

		reward, err := a.Move(cmd)
		if err != nil {
			return report(false), fmt.Errorf("turn %d: %w", turn.Number, err)
		}
		if reward > 0 {
			s.logger.Info(fmt.Sprintf("turn %d: collected %d at %s", turn.Number, reward, a.Position()))
		}
	}

	if a.Done() {
		return report(false), nil
	}
	return report(false), ErrTurnLimit
}
