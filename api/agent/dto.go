// Package agentapi exposes the running agent over HTTP.
package agentapi

import (
	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/game/world"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
)

// TurnsQuery bounds the journal listing.
type TurnsQuery struct {
	Limit int64 `form:"limit" binding:"omitempty,min=1,max=500"`
}

// SessionResponse identifies the agent's seat in a lobby.
type SessionResponse struct {
	Lobby  string `json:"lobby"`
	Team   string `json:"team"`
	Player string `json:"player"`
}

// TurnResponse is the wire form of the last played turn.
type TurnResponse struct {
	Number    int      `json:"number"`
	Position  [2]int   `json:"position"`
	Target    string   `json:"target"`
	Path      [][2]int `json:"path"`
	Command   string   `json:"command,omitempty"`
	Exhausted bool     `json:"exhausted"`
}

// StatusResponse describes the running agent.
type StatusResponse struct {
	AgentID  string          `json:"agent_id"`
	Session  SessionResponse `json:"session"`
	State    string          `json:"state"`
	Turns    int             `json:"turns"`
	LastTurn *TurnResponse   `json:"last_turn"`
}

// WorldResponse holds the belief grid, one symbol per cell.
type WorldResponse struct {
	Rows [][]string `json:"rows"`
}

// TurnsResponse lists journaled turns, newest first.
type TurnsResponse struct {
	Turns []*game.TurnRecord `json:"turns"`
}

func newStatusResponse(s i.AgentStatus) *StatusResponse {
	response := &StatusResponse{
		AgentID: s.AgentID.String(),
		Session: SessionResponse{
			Lobby:  s.Session.LobbyName,
			Team:   s.Session.TeamName,
			Player: s.Session.PlayerName,
		},
		State: s.State.String(),
		Turns: s.Turns,
	}
	if s.LastTurn != nil {
		response.LastTurn = newTurnResponse(*s.LastTurn)
	}
	return response
}

func newTurnResponse(t game.Turn) *TurnResponse {
	path := make([][2]int, 0, len(t.Path))
	for _, c := range t.Path {
		path = append(path, pair(c))
	}
	return &TurnResponse{
		Number:    t.Number,
		Position:  pair(t.Position),
		Target:    t.Target.String(),
		Path:      path,
		Command:   t.Direction.String(),
		Exhausted: t.Exhausted,
	}
}

func pair(c world.Coordinate) [2]int {
	return [2]int{c.Row, c.Col}
}
