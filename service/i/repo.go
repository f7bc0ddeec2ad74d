package i

import (
	"context"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/identity"
	"github.com/google/uuid"
)

// TurnRepo persists the turns an agent played.
type TurnRepo interface {
	// Save stores a turn record.
	Save(ctx context.Context, record *game.TurnRecord) error

	// Recent returns up to limit records of an agent, newest first.
	Recent(ctx context.Context, agentID uuid.UUID, limit int64) ([]*game.TurnRecord, error)
}

// OperatorRepo defines the interface for operator persistence operations.
type OperatorRepo interface {
	// Save inserts or updates an operator in the repository.
	Save(operator *identity.Operator) error

	// ByID retrieves an operator by their unique ID.
	ByID(id uuid.UUID) (*identity.Operator, error)

	// ByUsername retrieves an operator by their username.
	ByUsername(username string) (*identity.Operator, error)
}
