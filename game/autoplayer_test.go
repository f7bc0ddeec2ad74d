package game

import (
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-autoplayer/game/move"
	"github.com/beka-birhanu/vinom-autoplayer/game/planner"
	"github.com/beka-birhanu/vinom-autoplayer/game/visibility"
	"github.com/beka-birhanu/vinom-autoplayer/game/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSession = Session{LobbyName: "FirstLobby", TeamName: "Team1", PlayerName: "Player1"}

func newTestPlayer(t *testing.T) *AutoPlayer {
	t.Helper()
	p, err := NewAutoPlayer(testSession)
	require.NoError(t, err)
	return p
}

func TestNewAutoPlayer(t *testing.T) {
	t.Run("Starts awaiting with an unknown world", func(t *testing.T) {
		p := newTestPlayer(t)
		assert.Equal(t, AwaitingObservation, p.State())
		assert.Equal(t, world.Rows*world.Cols, p.World().Count(world.Unknown))
		assert.Zero(t, p.Turns())
		_, ok := p.LastTurn()
		assert.False(t, ok)
	})

	t.Run("Instances do not share a world", func(t *testing.T) {
		a := newTestPlayer(t)
		b := newTestPlayer(t)
		_, err := a.Handle(visibility.Observation{Position: world.At(0, 0)})
		require.NoError(t, err)

		assert.NotEqual(t, a.ID(), b.ID())
		assert.Equal(t, world.Rows*world.Cols, b.World().Count(world.Unknown))
	})

	t.Run("Rejects an incomplete session", func(t *testing.T) {
		_, err := NewAutoPlayer(Session{LobbyName: "FirstLobby", TeamName: "Team1"})
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestAutoPlayerHandle(t *testing.T) {
	t.Run("End to end fallback scenario", func(t *testing.T) {
		p := newTestPlayer(t)
		turn, err := p.Handle(visibility.Observation{
			Position: world.At(5, 5),
			Walls:    []world.Coordinate{world.At(5, 6)},
		})
		require.NoError(t, err)

		w := p.World()
		s, _ := w.Get(world.At(5, 6))
		assert.Equal(t, world.Wall, s)
		s, _ = w.Get(world.At(5, 5))
		assert.Equal(t, world.Occupant, s)
		assert.Equal(t, 23, w.Count(world.Empty))

		assert.Equal(t, planner.NearestUnexplored, turn.Target)
		assert.Equal(t, planner.Path{world.At(5, 4), world.At(5, 3), world.At(5, 2)}, turn.Path)
		cmd, ok := turn.Command()
		assert.True(t, ok)
		assert.Equal(t, move.Left, cmd)
		assert.Equal(t, AwaitingObservation, p.State())
	})

	t.Run("Heads for a visible coin", func(t *testing.T) {
		p := newTestPlayer(t)
		turn, err := p.Handle(visibility.Observation{
			Position: world.At(0, 0),
			Coins:    [visibility.CoinTiers][]world.Coordinate{{}, {}, {world.At(2, 0)}},
		})
		require.NoError(t, err)
		assert.Equal(t, planner.NearestCoin, turn.Target)
		assert.Equal(t, move.Down, turn.Direction)
		assert.Equal(t, 1, turn.Number)
	})

	t.Run("Malformed observation skips the turn", func(t *testing.T) {
		p := newTestPlayer(t)
		_, err := p.Handle(visibility.Observation{Position: world.At(10, 3)})
		assert.ErrorIs(t, err, visibility.ErrMalformedObservation)
		assert.Equal(t, AwaitingObservation, p.State())
		assert.Zero(t, p.Turns())
		assert.Equal(t, world.Rows*world.Cols, p.World().Count(world.Unknown))
	})

	t.Run("Boxed in agent is exhausted then recovers", func(t *testing.T) {
		p := newTestPlayer(t)
		turn, err := p.Handle(visibility.Observation{
			Position: world.At(0, 0),
			Walls:    []world.Coordinate{world.At(0, 1), world.At(1, 0)},
		})
		require.NoError(t, err)
		assert.True(t, turn.Exhausted)
		assert.Equal(t, planner.NoTarget, turn.Target)
		_, ok := turn.Command()
		assert.False(t, ok)
		assert.Equal(t, Exhausted, p.State())

		turn, err = p.Handle(visibility.Observation{Position: world.At(0, 0)})
		require.NoError(t, err)
		assert.False(t, turn.Exhausted)
		assert.Equal(t, 2, turn.Number)
		assert.Equal(t, AwaitingObservation, p.State())
	})

	t.Run("Memory persists across turns", func(t *testing.T) {
		p := newTestPlayer(t)
		_, err := p.Handle(visibility.Observation{
			Position: world.At(0, 0),
			Walls:    []world.Coordinate{world.At(2, 2)},
		})
		require.NoError(t, err)
		_, err = p.Handle(visibility.Observation{Position: world.At(9, 9)})
		require.NoError(t, err)

		s, _ := p.World().Get(world.At(2, 2))
		assert.Equal(t, world.Wall, s)
		last, ok := p.LastTurn()
		assert.True(t, ok)
		assert.Equal(t, world.At(9, 9), last.Position)
	})
}

func TestNewTurnRecord(t *testing.T) {
	p := newTestPlayer(t)
	turn, err := p.Handle(visibility.Observation{Position: world.At(5, 5), Walls: []world.Coordinate{world.At(5, 6)}})
	require.NoError(t, err)

	at := time.Date(2025, 2, 8, 10, 0, 0, 0, time.UTC)
	rec := NewTurnRecord(p, turn, at)
	assert.Equal(t, p.ID(), rec.AgentID)
	assert.Equal(t, "FirstLobby", rec.Lobby)
	assert.Equal(t, "Player1", rec.Player)
	assert.Equal(t, [2]int{5, 5}, rec.Position)
	assert.Equal(t, "LEFT", rec.Command)
	assert.Equal(t, "nearest_unexplored", rec.Target)
	assert.Equal(t, [][2]int{{5, 4}, {5, 3}, {5, 2}}, rec.Path)
	assert.Equal(t, at, rec.CreatedAt)
}

func TestSessionTopics(t *testing.T) {
	assert.Equal(t, "games/FirstLobby/Player1/game_state", testSession.GameStateTopic())
	assert.Equal(t, "games/FirstLobby/Player1/move", testSession.MoveTopic())
	assert.Equal(t, "games/FirstLobby/start", testSession.StartTopic())
	assert.Equal(t, "games/FirstLobby/scores", testSession.ScoresTopic())
	assert.Equal(t, "games/FirstLobby/lobby", testSession.LobbyTopic())
}
