// Package game wires the world model, projector, planner and translator into one agent.
package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSession = errors.New("invalid session")
)

// Session is the explicit agent context handed to the player at construction.
type Session struct {
	LobbyName  string // Lobby the player registers into
	TeamName   string // Team the player belongs to
	PlayerName string // Player identifier inside the lobby
}

// Validate checks that every identifier is set.
func (s Session) Validate() error {
	switch {
	case s.LobbyName == "":
		return fmt.Errorf("%w: missing lobby name", ErrInvalidSession)
	case s.TeamName == "":
		return fmt.Errorf("%w: missing team name", ErrInvalidSession)
	case s.PlayerName == "":
		return fmt.Errorf("%w: missing player name", ErrInvalidSession)
	}
	return nil
}

// RegistrationTopic is where new players announce themselves.
const RegistrationTopic = "new_game"

// GameStateTopic carries observations for this player.
func (s Session) GameStateTopic() string {
	return fmt.Sprintf("games/%s/%s/game_state", s.LobbyName, s.PlayerName)
}

// MoveTopic receives this player's move tokens.
func (s Session) MoveTopic() string {
	return fmt.Sprintf("games/%s/%s/move", s.LobbyName, s.PlayerName)
}

// StartTopic receives START and STOP control tokens for the lobby.
func (s Session) StartTopic() string {
	return fmt.Sprintf("games/%s/start", s.LobbyName)
}

// ScoresTopic carries score broadcasts for the lobby.
func (s Session) ScoresTopic() string {
	return fmt.Sprintf("games/%s/scores", s.LobbyName)
}

// LobbyTopic carries lobby notices.
func (s Session) LobbyTopic() string {
	return fmt.Sprintf("games/%s/lobby", s.LobbyName)
}

// Lobby control tokens.
const (
	StartToken = "START"
	StopToken  = "STOP"
)
