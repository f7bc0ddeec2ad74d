// Package codec translates wire payloads to and from domain values.
package codec

import (
	"fmt"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/game/visibility"
	"github.com/beka-birhanu/vinom-autoplayer/game/world"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// GameStatePayload is the observation message as it travels on the wire.
type GameStatePayload struct {
	CurrentPosition []int   `json:"currentPosition" validate:"required,len=2"`
	Walls           [][]int `json:"walls" validate:"required,dive,len=2"`
	Coin1           [][]int `json:"coin1" validate:"required,dive,len=2"`
	Coin2           [][]int `json:"coin2" validate:"required,dive,len=2"`
	Coin3           [][]int `json:"coin3" validate:"required,dive,len=2"`
}

// RegistrationPayload announces a player to a lobby.
type RegistrationPayload struct {
	LobbyName  string `json:"lobby_name" validate:"required"`
	TeamName   string `json:"team_name" validate:"required"`
	PlayerName string `json:"player_name" validate:"required"`
}

// JSON encodes game messages as JSON.
type JSON struct {
	validate *validator.Validate
}

// NewJSON returns a JSON codec.
func NewJSON() *JSON {
	return &JSON{validate: validator.New()}
}

// DecodeObservation parses a game state message.
// Every failure is reported as visibility.ErrMalformedObservation.
func (j *JSON) DecodeObservation(b []byte) (visibility.Observation, error) {
	var payload GameStatePayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return visibility.Observation{}, fmt.Errorf("%w: %s", visibility.ErrMalformedObservation, err)
	}
	if err := j.validate.Struct(payload); err != nil {
		return visibility.Observation{}, fmt.Errorf("%w: %s", visibility.ErrMalformedObservation, err)
	}

	obs := visibility.Observation{
		Position: coordinate(payload.CurrentPosition),
		Walls:    coordinates(payload.Walls),
	}
	for i, tier := range [][][]int{payload.Coin1, payload.Coin2, payload.Coin3} {
		obs.Coins[i] = coordinates(tier)
	}

	if err := obs.Validate(); err != nil {
		return visibility.Observation{}, err
	}
	return obs, nil
}

// EncodeObservation produces a game state message.
func (j *JSON) EncodeObservation(obs visibility.Observation) ([]byte, error) {
	return json.Marshal(GameStatePayload{
		CurrentPosition: pair(obs.Position),
		Walls:           pairs(obs.Walls),
		Coin1:           pairs(obs.Coins[0]),
		Coin2:           pairs(obs.Coins[1]),
		Coin3:           pairs(obs.Coins[2]),
	})
}

// EncodeRegistration produces the registration message for a session.
func (j *JSON) EncodeRegistration(s game.Session) ([]byte, error) {
	return json.Marshal(RegistrationPayload{
		LobbyName:  s.LobbyName,
		TeamName:   s.TeamName,
		PlayerName: s.PlayerName,
	})
}

// DecodeRegistration parses a registration message.
func (j *JSON) DecodeRegistration(b []byte) (game.Session, error) {
	var payload RegistrationPayload
	if err := json.Unmarshal(b, &payload); err != nil {
		return game.Session{}, fmt.Errorf("%w: %s", game.ErrInvalidSession, err)
	}
	if err := j.validate.Struct(payload); err != nil {
		return game.Session{}, fmt.Errorf("%w: %s", game.ErrInvalidSession, err)
	}
	return game.Session{
		LobbyName:  payload.LobbyName,
		TeamName:   payload.TeamName,
		PlayerName: payload.PlayerName,
	}, nil
}

// EncodeScores produces a score broadcast keyed by team name.
func (j *JSON) EncodeScores(scores map[string]int) ([]byte, error) {
	return json.Marshal(scores)
}

func coordinate(p []int) world.Coordinate {
	return world.At(p[0], p[1])
}

func coordinates(ps [][]int) []world.Coordinate {
	result := make([]world.Coordinate, 0, len(ps))
	for _, p := range ps {
		result = append(result, coordinate(p))
	}
	return result
}

func pair(c world.Coordinate) []int {
	return []int{c.Row, c.Col}
}

func pairs(cs []world.Coordinate) [][]int {
	result := make([][]int, 0, len(cs))
	for _, c := range cs {
		result = append(result, pair(c))
	}
	return result
}
