package game

import (
	"time"

	"github.com/beka-birhanu/vinom-autoplayer/game/world"
	"github.com/google/uuid"
)

// TurnRecord is the persisted form of a turn.
type TurnRecord struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	AgentID   uuid.UUID `bson:"agentId" json:"agent_id"`
	Lobby     string    `bson:"lobby" json:"lobby"`
	Player    string    `bson:"player" json:"player"`
	Number    int       `bson:"number" json:"number"`
	Position  [2]int    `bson:"position" json:"position"`
	Target    string    `bson:"target" json:"target"`
	Path      [][2]int  `bson:"path" json:"path"`
	Command   string    `bson:"command,omitempty" json:"command,omitempty"`
	Exhausted bool      `bson:"exhausted" json:"exhausted"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}

// NewTurnRecord builds the record of turn t played by agent a.
func NewTurnRecord(a *AutoPlayer, t Turn, at time.Time) *TurnRecord {
	path := make([][2]int, 0, len(t.Path))
	for _, c := range t.Path {
		path = append(path, pair(c))
	}

	return &TurnRecord{
		ID:        uuid.New(),
		AgentID:   a.ID(),
		Lobby:     a.Session().LobbyName,
		Player:    a.Session().PlayerName,
		Number:    t.Number,
		Position:  pair(t.Position),
		Target:    t.Target.String(),
		Path:      path,
		Command:   t.Direction.String(),
		Exhausted: t.Exhausted,
		CreatedAt: at.UTC(),
	}
}

func pair(c world.Coordinate) [2]int {
	return [2]int{c.Row, c.Col}
}
