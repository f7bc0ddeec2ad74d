package i

import (
	"context"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/google/uuid"
)

// AgentStatus is a point in time view of a running agent.
type AgentStatus struct {
	AgentID  uuid.UUID
	Session  game.Session
	State    game.State
	Turns    int
	LastTurn *game.Turn
}

// AgentMonitor exposes a running agent to the monitor API.
type AgentMonitor interface {
	// Status returns the agent's current status.
	Status() AgentStatus

	// WorldRows returns the belief grid as rows of cell symbols.
	WorldRows() [][]string

	// RecentTurns returns up to limit journaled turns, newest first.
	RecentTurns(ctx context.Context, limit int64) ([]*game.TurnRecord, error)

	// StartGame asks the lobby to start.
	StartGame(ctx context.Context) error

	// StopGame asks the lobby to stop.
	StopGame(ctx context.Context) error
}
