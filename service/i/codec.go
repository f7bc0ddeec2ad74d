package i

import (
	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/game/visibility"
)

// GameCodec converts game messages to and from their wire form.
type GameCodec interface {
	DecodeObservation([]byte) (visibility.Observation, error)
	EncodeObservation(visibility.Observation) ([]byte, error)
	EncodeRegistration(game.Session) ([]byte, error)
	DecodeRegistration([]byte) (game.Session, error)
	EncodeScores(map[string]int) ([]byte, error)
}
