package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/game/world"
	"github.com/beka-birhanu/vinom-autoplayer/infrastruture/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

var testSession = game.Session{LobbyName: "FirstLobby", TeamName: "Team1", PlayerName: "Player1"}

// The agent at (5,5) with a wall on its right and no coins in view.
const blockedRight = `{"currentPosition":[5,5],"walls":[[5,6]],"coin1":[],"coin2":[],"coin3":[]}`

// The agent boxed into the top left corner.
const boxedIn = `{"currentPosition":[0,0],"walls":[[0,1],[1,0]],"coin1":[],"coin2":[],"coin3":[]}`

type playerFixture struct {
	service *PlayerService
	broker  *loopback
	logger  *recordingLogger
	cancel  context.CancelFunc
	done    chan error
}

func startPlayer(t *testing.T, configure func(*PlayerConfig)) *playerFixture {
	t.Helper()
	player, err := game.NewAutoPlayer(testSession)
	require.NoError(t, err)

	f := &playerFixture{broker: newLoopback(), logger: &recordingLogger{}, done: make(chan error, 1)}
	c := &PlayerConfig{
		Player: player,
		Broker: f.broker,
		Codec:  codec.NewJSON(),
		Logger: f.logger,
	}
	if configure != nil {
		configure(c)
	}
	f.service, err = NewPlayerService(c)
	require.NoError(t, err)

	var ctx context.Context
	ctx, f.cancel = context.WithCancel(context.Background())
	go func() { f.done <- f.service.Run(ctx) }()
	t.Cleanup(f.cancel)

	require.Eventually(t, func() bool {
		return len(f.broker.on(game.RegistrationTopic)) == 1
	}, waitFor, tick)
	return f
}

func (f *playerFixture) observe(t *testing.T, payload string) {
	t.Helper()
	require.NoError(t, f.broker.Publish(context.Background(), testSession.GameStateTopic(), []byte(payload)))
}

func (f *playerFixture) stop(t *testing.T) error {
	t.Helper()
	f.cancel()
	select {
	case err := <-f.done:
		return err
	case <-time.After(waitFor):
		t.Fatal("player did not stop")
		return nil
	}
}

func TestPlayerService(t *testing.T) {
	t.Run("Registers and answers an observation with a move", func(t *testing.T) {
		f := startPlayer(t, nil)
		assert.JSONEq(t, `{"lobby_name":"FirstLobby","team_name":"Team1","player_name":"Player1"}`,
			f.broker.on(game.RegistrationTopic)[0])
		assert.True(t, f.broker.subscribed(testSession.GameStateTopic()))
		assert.True(t, f.broker.subscribed(testSession.ScoresTopic()))
		assert.True(t, f.broker.subscribed(testSession.LobbyTopic()))

		f.observe(t, blockedRight)
		require.Eventually(t, func() bool {
			return len(f.broker.on(testSession.MoveTopic())) == 1
		}, waitFor, tick)
		assert.Equal(t, []string{"LEFT"}, f.broker.on(testSession.MoveTopic()))
		assert.NoError(t, f.stop(t))
	})

	t.Run("Skips malformed observations", func(t *testing.T) {
		f := startPlayer(t, nil)
		f.observe(t, `{"currentPosition":[5]}`)
		f.observe(t, blockedRight)

		require.Eventually(t, func() bool {
			return len(f.broker.on(testSession.MoveTopic())) == 1
		}, waitFor, tick)
		assert.True(t, f.logger.contains("WARNING", "skipping turn"))
		assert.Equal(t, 1, f.service.Status().Turns)
		assert.NoError(t, f.stop(t))
	})

	t.Run("Idle policy publishes nothing when exhausted", func(t *testing.T) {
		f := startPlayer(t, nil)
		f.observe(t, boxedIn)

		require.Eventually(t, func() bool {
			return f.service.Status().State == game.Exhausted
		}, waitFor, tick)
		assert.Empty(t, f.broker.on(testSession.MoveTopic()))
		assert.Empty(t, f.broker.on(testSession.StartTopic()))
		assert.NoError(t, f.stop(t))
	})

	t.Run("Stop policy publishes STOP once", func(t *testing.T) {
		f := startPlayer(t, func(c *PlayerConfig) { c.ExhaustionPolicy = ExhaustionStop })
		f.observe(t, boxedIn)
		f.observe(t, boxedIn)

		require.Eventually(t, func() bool {
			return f.service.Status().Turns == 2
		}, waitFor, tick)
		assert.Equal(t, []string{game.StopToken}, f.broker.on(testSession.StartTopic()))
		assert.NoError(t, f.stop(t))
	})

	t.Run("Journals every turn", func(t *testing.T) {
		turns := &memoryTurns{}
		f := startPlayer(t, func(c *PlayerConfig) { c.Turns = turns })
		f.observe(t, blockedRight)
		f.observe(t, boxedIn)

		require.Eventually(t, func() bool { return turns.count() == 2 }, waitFor, tick)
		records, err := f.service.RecentTurns(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.True(t, records[0].Exhausted)
		assert.Equal(t, "LEFT", records[1].Command)
		assert.Equal(t, "nearest_unexplored", records[1].Target)
		assert.NoError(t, f.stop(t))
	})

	t.Run("Journal failures do not stop play", func(t *testing.T) {
		turns := &memoryTurns{err: errors.New("db down")}
		f := startPlayer(t, func(c *PlayerConfig) { c.Turns = turns })
		f.observe(t, blockedRight)

		require.Eventually(t, func() bool {
			return len(f.broker.on(testSession.MoveTopic())) == 1
		}, waitFor, tick)
		assert.True(t, f.logger.contains("WARNING", "journaling turn 1"))
		assert.NoError(t, f.stop(t))
	})

	t.Run("Status and world reflect the last turn", func(t *testing.T) {
		f := startPlayer(t, nil)
		f.observe(t, blockedRight)
		require.Eventually(t, func() bool { return f.service.Status().Turns == 1 }, waitFor, tick)

		status := f.service.Status()
		assert.Equal(t, testSession, status.Session)
		require.NotNil(t, status.LastTurn)
		target, ok := status.LastTurn.Path.Target()
		require.True(t, ok)
		assert.Equal(t, world.At(5, 2), target)

		rows := f.service.WorldRows()
		assert.Equal(t, "P", rows[5][5])
		assert.Equal(t, "W", rows[5][6])
		assert.Equal(t, "X", rows[5][4])
		assert.Equal(t, "O", rows[0][0])

		_, err := f.service.RecentTurns(context.Background(), 10)
		assert.ErrorIs(t, err, ErrJournalDisabled)
		assert.NoError(t, f.stop(t))
	})

	t.Run("Start and stop publish control tokens", func(t *testing.T) {
		f := startPlayer(t, nil)
		require.NoError(t, f.service.StartGame(context.Background()))
		require.NoError(t, f.service.StopGame(context.Background()))
		assert.Equal(t, []string{game.StartToken, game.StopToken}, f.broker.on(testSession.StartTopic()))
		assert.NoError(t, f.stop(t))
	})

	t.Run("Holds the lease while playing", func(t *testing.T) {
		lease := &stubLease{}
		f := startPlayer(t, func(c *PlayerConfig) { c.Lease = lease })
		assert.NoError(t, f.stop(t))
		assert.True(t, lease.wasReleased())
	})
}

func TestPlayerServiceLeaseConflict(t *testing.T) {
	player, err := game.NewAutoPlayer(testSession)
	require.NoError(t, err)
	broker := newLoopback()
	errHeld := errors.New("lease held elsewhere")

	s, err := NewPlayerService(&PlayerConfig{
		Player: player,
		Broker: broker,
		Codec:  codec.NewJSON(),
		Logger: &recordingLogger{},
		Lease:  &stubLease{acquireErr: errHeld},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Run(context.Background()), errHeld)
	assert.Empty(t, broker.on(game.RegistrationTopic))
}

func TestNewPlayerService(t *testing.T) {
	_, err := NewPlayerService(&PlayerConfig{})
	assert.ErrorIs(t, err, ErrMissingDependency)
}

func TestParseExhaustionPolicy(t *testing.T) {
	p, err := ParseExhaustionPolicy("stop")
	require.NoError(t, err)
	assert.Equal(t, ExhaustionStop, p)

	p, err = ParseExhaustionPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ExhaustionIdle, p)

	_, err = ParseExhaustionPolicy("panic")
	assert.ErrorIs(t, err, ErrUnknownExhaustPolicy)
}
