package game

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-autoplayer/game/move"
	"github.com/beka-birhanu/vinom-autoplayer/game/planner"
	"github.com/beka-birhanu/vinom-autoplayer/game/visibility"
	"github.com/beka-birhanu/vinom-autoplayer/game/world"
	"github.com/google/uuid"
)

// State is the phase of the turn state machine.
type State int

const (
	AwaitingObservation State = iota
	Projecting
	Planning
	Emitting
	Exhausted
)

func (s State) String() string {
	switch s {
	case AwaitingObservation:
		return "awaiting_observation"
	case Projecting:
		return "projecting"
	case Planning:
		return "planning"
	case Emitting:
		return "emitting"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Turn is the outcome of handling one observation.
type Turn struct {
	Number    int                // 1-based count of accepted observations
	Position  world.Coordinate   // Agent position reported by the observation
	Target    planner.TargetKind // Goal the plan pursued, NoTarget when exhausted
	Path      planner.Path       // Planned walk, empty when exhausted
	Direction move.Direction     // Emitted token, empty when exhausted
	Exhausted bool               // No coin and no unknown cell reachable
}

// Command returns the direction to emit, if any.
func (t Turn) Command() (move.Direction, bool) {
	if t.Exhausted || t.Direction == "" {
		return "", false
	}
	return t.Direction, true
}

// AutoPlayer fuses observations into its world and picks one move per observation.
// Each instance owns its world; it is not safe for concurrent use.
type AutoPlayer struct {
	id      uuid.UUID
	session Session
	world   *world.World
	state   State
	turns   int
	last    *Turn
}

// NewAutoPlayer creates an agent for the given session with an all unknown world.
func NewAutoPlayer(s Session) (*AutoPlayer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &AutoPlayer{
		id:      uuid.New(),
		session: s,
		world:   world.New(),
		state:   AwaitingObservation,
	}, nil
}

// ID returns the instance identifier of the agent.
func (a *AutoPlayer) ID() uuid.UUID {
	return a.id
}

// Session returns the agent context the player was created with.
func (a *AutoPlayer) Session() Session {
	return a.session
}

// State returns the current phase of the state machine.
func (a *AutoPlayer) State() State {
	return a.state
}

// World returns the belief grid. Callers must not mutate it.
func (a *AutoPlayer) World() *world.World {
	return a.world
}

// Turns returns the number of observations accepted so far.
func (a *AutoPlayer) Turns() int {
	return a.turns
}

// LastTurn returns the most recent turn, if any.
func (a *AutoPlayer) LastTurn() (Turn, bool) {
	if a.last == nil {
		return Turn{}, false
	}
	return *a.last, true
}

// Handle runs one full turn: project, plan, translate.
//
// A malformed observation is rejected with visibility.ErrMalformedObservation
// and leaves the agent awaiting the next observation. Exhaustion is not an
// error; it is reported through Turn.Exhausted. Any other error is an
// invariant violation.
func (a *AutoPlayer) Handle(obs visibility.Observation) (Turn, error) {
	a.state = Projecting
	if err := visibility.Project(a.world, obs); err != nil {
		a.state = AwaitingObservation
		return Turn{}, err
	}
	a.turns++
	turn := Turn{Number: a.turns, Position: obs.Position}

	a.state = Planning
	plan, err := planner.PlanFrom(a.world, obs.Position)
	if errors.Is(err, planner.ErrNoTargetReachable) {
		a.state = Exhausted
		turn.Exhausted = true
		a.last = &turn
		return turn, nil
	}
	if err != nil {
		a.state = AwaitingObservation
		return Turn{}, fmt.Errorf("planning turn %d: %w", turn.Number, err)
	}
	turn.Target = plan.Kind
	turn.Path = plan.Path

	a.state = Emitting
	direction, err := move.Translate(obs.Position, plan.Path)
	if err != nil {
		a.state = AwaitingObservation
		return Turn{}, fmt.Errorf("translating turn %d: %w", turn.Number, err)
	}
	turn.Direction = direction

	a.state = AwaitingObservation
	a.last = &turn
	return turn, nil
}
