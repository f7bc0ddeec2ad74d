package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/game/arena"
	"github.com/beka-birhanu/vinom-autoplayer/game/move"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
)

// ArenaFactory builds the arena a newly registered player plays in.
type ArenaFactory func(game.Session) (*arena.Arena, error)

type hostedPlayer struct {
	session game.Session
	arena   *arena.Arena
}

// ArenaHost serves a lobby over the broker: it admits registered players,
// publishes their observations and applies their moves.
type ArenaHost struct {
	broker      i.Broker
	codec       i.GameCodec
	logger      i.Logger
	leaderboard i.Leaderboard
	lobby       string
	newArena    ArenaFactory
	players     map[string]*hostedPlayer
	pending     map[string]struct{}
	started     bool
	finished    chan struct{}
	finish      sync.Once
	sync.Mutex
}

// ArenaHostConfig holds the dependencies of an ArenaHost. Leaderboard is optional.
type ArenaHostConfig struct {
	Broker      i.Broker
	Codec       i.GameCodec
	Logger      i.Logger
	Leaderboard i.Leaderboard
	LobbyName   string
	NewArena    ArenaFactory
}

// NewArenaHost validates c and builds the host.
func NewArenaHost(c *ArenaHostConfig) (*ArenaHost, error) {
	if c.Broker == nil || c.Codec == nil || c.Logger == nil || c.NewArena == nil {
		return nil, ErrMissingDependency
	}
	if c.LobbyName == "" {
		return nil, fmt.Errorf("%w: lobby name is required", game.ErrInvalidSession)
	}

	return &ArenaHost{
		broker:      c.Broker,
		codec:       c.Codec,
		logger:      c.Logger,
		leaderboard: c.Leaderboard,
		lobby:       c.LobbyName,
		newArena:    c.NewArena,
		players:     make(map[string]*hostedPlayer),
		pending:     make(map[string]struct{}),
		finished:    make(chan struct{}),
	}, nil
}

// Run serves the lobby until ctx is done, STOP is received or every
// admitted player collected all of its coins.
func (h *ArenaHost) Run(ctx context.Context) error {
	if err := h.broker.Subscribe(ctx, game.RegistrationTopic, func(_ string, payload []byte) {
		// Admission subscribes to a new topic, which must not happen on the delivery goroutine.
		go h.admit(ctx, payload)
	}); err != nil {
		return err
	}

	lobby := game.Session{LobbyName: h.lobby}
	if err := h.broker.Subscribe(ctx, lobby.StartTopic(), func(_ string, payload []byte) {
		h.control(ctx, string(payload))
	}); err != nil {
		return err
	}
	h.logger.Info(fmt.Sprintf("hosting lobby %s", h.lobby))

	select {
	case <-ctx.Done():
	case <-h.finished:
	}
	h.logger.Info(fmt.Sprintf("lobby %s closed", h.lobby))
	return nil
}

// Done is closed once the lobby is finished.
func (h *ArenaHost) Done() <-chan struct{} {
	return h.finished
}

// Scores returns the current score of every team.
func (h *ArenaHost) Scores() map[string]int {
	h.Lock()
	defer h.Unlock()
	return h.scores()
}

func (h *ArenaHost) admit(ctx context.Context, payload []byte) {
	session, err := h.codec.DecodeRegistration(payload)
	if err != nil {
		h.logger.Warning(fmt.Sprintf("ignoring registration: %s", err))
		return
	}
	if session.LobbyName != h.lobby {
		return
	}

	name := session.PlayerName
	if !h.reserve(name) {
		h.logger.Warning(fmt.Sprintf("player %s is already registered", name))
		return
	}

	a, err := h.newArena(session)
	if err != nil {
		h.release(name)
		h.logger.Error(fmt.Sprintf("building arena for %s: %s", name, err))
		return
	}

	if err := h.broker.Subscribe(ctx, session.MoveTopic(), func(_ string, payload []byte) {
		h.play(ctx, name, string(payload))
	}); err != nil {
		h.release(name)
		h.logger.Error(fmt.Sprintf("subscribing to moves of %s: %s", name, err))
		return
	}

	h.Lock()
	defer h.Unlock()
	delete(h.pending, name)
	p := &hostedPlayer{session: session, arena: a}
	h.players[name] = p
	h.logger.Info(fmt.Sprintf("admitted %s of %s with %d coins", name, session.TeamName, a.CoinsLeft()))
	h.publish(ctx, session.LobbyTopic(), []byte(fmt.Sprintf("%s joined", name)))

	if h.started {
		h.observe(ctx, p)
	}
}

// reserve claims name for an admission in flight. It fails when the name is
// already admitted or being admitted.
func (h *ArenaHost) reserve(name string) bool {
	h.Lock()
	defer h.Unlock()
	if _, ok := h.players[name]; ok {
		return false
	}
	if _, ok := h.pending[name]; ok {
		return false
	}
	h.pending[name] = struct{}{}
	return true
}

func (h *ArenaHost) release(name string) {
	h.Lock()
	defer h.Unlock()
	delete(h.pending, name)
}

func (h *ArenaHost) control(ctx context.Context, token string) {
	h.Lock()
	defer h.Unlock()

	switch token {
	case game.StartToken:
		if h.started {
			return
		}
		h.started = true
		h.logger.Info(fmt.Sprintf("lobby %s started with %d players", h.lobby, len(h.players)))
		for _, p := range h.players {
			h.observe(ctx, p)
		}
	case game.StopToken:
		h.logger.Info(fmt.Sprintf("lobby %s stopped", h.lobby))
		h.publishScores(ctx)
		h.close()
	default:
		h.logger.Warning(fmt.Sprintf("unknown control token %q", token))
	}
}

func (h *ArenaHost) play(ctx context.Context, name, command string) {
	h.Lock()
	defer h.Unlock()

	p, ok := h.players[name]
	if !ok || !h.started || p.arena.Done() {
		return
	}

	d, err := move.Parse(command)
	if err != nil {
		h.logger.Warning(fmt.Sprintf("move of %s: %s", name, err))
		h.observe(ctx, p)
		return
	}

	reward, err := p.arena.Move(d)
	if err != nil {
		h.logger.Warning(fmt.Sprintf("move of %s: %s", name, err))
	}
	if reward > 0 {
		h.publishScores(ctx)
	}

	if p.arena.Done() {
		h.logger.Info(fmt.Sprintf("%s collected every coin in %d moves", name, p.arena.Moves()))
		if h.allDone() {
			h.publishScores(ctx)
			h.close()
		}
		return
	}
	h.observe(ctx, p)
}

func (h *ArenaHost) observe(ctx context.Context, p *hostedPlayer) {
	payload, err := h.codec.EncodeObservation(p.arena.Observe())
	if err != nil {
		h.logger.Error(fmt.Sprintf("encoding observation of %s: %s", p.session.PlayerName, err))
		return
	}
	h.publish(ctx, p.session.GameStateTopic(), payload)
}

func (h *ArenaHost) publishScores(ctx context.Context) {
	scores := h.scores()
	if h.leaderboard != nil {
		for team, score := range scores {
			if err := h.leaderboard.Record(ctx, h.lobby, team, score); err != nil {
				h.logger.Warning(fmt.Sprintf("recording score of %s: %s", team, err))
			}
		}
	}

	payload, err := h.codec.EncodeScores(scores)
	if err != nil {
		h.logger.Error(fmt.Sprintf("encoding scores: %s", err))
		return
	}
	h.publish(ctx, game.Session{LobbyName: h.lobby}.ScoresTopic(), payload)
}

func (h *ArenaHost) publish(ctx context.Context, topic string, payload []byte) {
	if err := h.broker.Publish(ctx, topic, payload); err != nil {
		h.logger.Warning(fmt.Sprintf("publishing to %s: %s", topic, err))
	}
}

// scores must be called with the lock held.
func (h *ArenaHost) scores() map[string]int {
	scores := make(map[string]int, len(h.players))
	for _, p := range h.players {
		scores[p.session.TeamName] += p.arena.Score()
	}
	return scores
}

func (h *ArenaHost) allDone() bool {
	for _, p := range h.players {
		if !p.arena.Done() {
			return false
		}
	}
	return true
}

func (h *ArenaHost) close() {
	h.finish.Do(func() { close(h.finished) })
}
