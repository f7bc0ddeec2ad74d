package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/game/visibility"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
)

const (
	defaultInboxSize    = 16
	defaultLeaseRefresh = 5 * time.Second
	defaultJournalLimit = 50
)

var (
	ErrMissingDependency    = errors.New("missing dependency")
	ErrJournalDisabled      = errors.New("turn journal disabled")
	ErrUnknownExhaustPolicy = errors.New("unknown exhaustion policy")
)

// ExhaustionPolicy decides what the player does when nothing is left to reach.
type ExhaustionPolicy string

const (
	// ExhaustionIdle logs and waits for the next observation.
	ExhaustionIdle ExhaustionPolicy = "idle"

	// ExhaustionStop publishes STOP on the lobby start topic once.
	ExhaustionStop ExhaustionPolicy = "stop"
)

// ParseExhaustionPolicy validates a configured policy name.
func ParseExhaustionPolicy(s string) (ExhaustionPolicy, error) {
	switch p := ExhaustionPolicy(s); p {
	case ExhaustionIdle, ExhaustionStop:
		return p, nil
	case "":
		return ExhaustionIdle, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownExhaustPolicy, s)
	}
}

var _ i.AgentMonitor = &PlayerService{}

// PlayerService connects an AutoPlayer to the broker. Broker callbacks only
// enqueue payloads; a single loop in Run hands them to the player in order.
type PlayerService struct {
	player       *game.AutoPlayer
	broker       i.Broker
	codec        i.GameCodec
	turns        i.TurnRepo
	lease        i.Lease
	logger       i.Logger
	policy       ExhaustionPolicy
	moveDelay    time.Duration
	logWorld     bool
	leaseRefresh time.Duration
	inbox        chan []byte
	stopSent     bool
	sync.RWMutex
}

// PlayerConfig holds the dependencies of a PlayerService. Turns and Lease are optional.
type PlayerConfig struct {
	Player           *game.AutoPlayer
	Broker           i.Broker
	Codec            i.GameCodec
	Turns            i.TurnRepo
	Lease            i.Lease
	Logger           i.Logger
	ExhaustionPolicy ExhaustionPolicy
	MoveDelay        time.Duration
	LogWorld         bool
	LeaseRefresh     time.Duration
	InboxSize        int
}

// NewPlayerService validates c and builds the service.
func NewPlayerService(c *PlayerConfig) (*PlayerService, error) {
	if c.Player == nil || c.Broker == nil || c.Codec == nil || c.Logger == nil {
		return nil, ErrMissingDependency
	}

	policy := c.ExhaustionPolicy
	if policy == "" {
		policy = ExhaustionIdle
	}
	inboxSize := c.InboxSize
	if inboxSize <= 0 {
		inboxSize = defaultInboxSize
	}
	leaseRefresh := c.LeaseRefresh
	if leaseRefresh <= 0 {
		leaseRefresh = defaultLeaseRefresh
	}

	return &PlayerService{
		player:       c.Player,
		broker:       c.Broker,
		codec:        c.Codec,
		turns:        c.Turns,
		lease:        c.Lease,
		logger:       c.Logger,
		policy:       policy,
		moveDelay:    c.MoveDelay,
		logWorld:     c.LogWorld,
		leaseRefresh: leaseRefresh,
		inbox:        make(chan []byte, inboxSize),
	}, nil
}

// Run registers the player and plays until ctx is done or an invariant breaks.
func (p *PlayerService) Run(ctx context.Context) error {
	session := p.player.Session()

	if p.lease != nil {
		if err := p.lease.Acquire(ctx); err != nil {
			return err
		}
		defer func() {
			if err := p.lease.Release(context.Background()); err != nil {
				p.logger.Warning(fmt.Sprintf("releasing player lease: %s", err))
			}
		}()
		p.logger.Info(fmt.Sprintf("acquired lease for %s/%s", session.LobbyName, session.PlayerName))
	}

	if err := p.broker.Subscribe(ctx, session.GameStateTopic(), p.enqueue); err != nil {
		return err
	}
	for _, topic := range []string{session.ScoresTopic(), session.LobbyTopic()} {
		if err := p.broker.Subscribe(ctx, topic, p.logMessage); err != nil {
			return err
		}
	}

	registration, err := p.codec.EncodeRegistration(session)
	if err != nil {
		return err
	}
	if err := p.broker.Publish(ctx, game.RegistrationTopic, registration); err != nil {
		return err
	}
	p.logger.Info(fmt.Sprintf("registered %s of %s in lobby %s", session.PlayerName, session.TeamName, session.LobbyName))

	var refresh <-chan time.Time
	if p.lease != nil {
		ticker := time.NewTicker(p.leaseRefresh)
		defer ticker.Stop()
		refresh = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("player stopped")
			return nil
		case payload := <-p.inbox:
			if err := p.handle(ctx, payload); err != nil {
				return err
			}
		case <-refresh:
			if err := p.lease.Refresh(ctx); err != nil {
				p.logger.Error(fmt.Sprintf("refreshing player lease: %s", err))
				return err
			}
		}
	}
}

// enqueue is the game state subscription handler.
func (p *PlayerService) enqueue(_ string, payload []byte) {
	msg := make([]byte, len(payload))
	copy(msg, payload)

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warning("inbox full, dropping observation")
	}
}

func (p *PlayerService) logMessage(topic string, payload []byte) {
	p.logger.Info(fmt.Sprintf("message: %s %s", topic, payload))
}

// handle plays one observation. Only invariant violations are returned.
func (p *PlayerService) handle(ctx context.Context, payload []byte) error {
	obs, err := p.codec.DecodeObservation(payload)
	if err != nil {
		p.logger.Warning(fmt.Sprintf("skipping turn: %s", err))
		return nil
	}

	p.Lock()
	turn, err := p.player.Handle(obs)
	var world string
	if p.logWorld {
		world = p.player.World().String()
	}
	p.Unlock()

	if errors.Is(err, visibility.ErrMalformedObservation) {
		p.logger.Warning(fmt.Sprintf("skipping turn: %s", err))
		return nil
	}
	if err != nil {
		p.logger.Error(fmt.Sprintf("agent invariant violated: %s", err))
		return err
	}

	if world != "" {
		p.logger.Info(fmt.Sprintf("world after turn %d:\n%s", turn.Number, world))
	}
	p.journal(ctx, turn)

	cmd, ok := turn.Command()
	if !ok {
		return p.exhausted(ctx, turn)
	}
	p.stopSent = false

	if p.moveDelay > 0 {
		select {
		case <-time.After(p.moveDelay):
		case <-ctx.Done():
			return nil
		}
	}

	if err := p.broker.Publish(ctx, p.player.Session().MoveTopic(), []byte(cmd)); err != nil {
		p.logger.Warning(fmt.Sprintf("publishing move %s: %s", cmd, err))
		return nil
	}
	p.logger.Info(fmt.Sprintf("turn %d: %s towards %s via %d steps", turn.Number, cmd, turn.Target, len(turn.Path)))
	return nil
}

func (p *PlayerService) exhausted(ctx context.Context, turn game.Turn) error {
	p.logger.Warning(fmt.Sprintf("turn %d: no coin or unexplored cell reachable from %s", turn.Number, turn.Position))
	if p.policy != ExhaustionStop || p.stopSent {
		return nil
	}

	if err := p.StopGame(ctx); err != nil {
		p.logger.Warning(fmt.Sprintf("publishing stop: %s", err))
		return nil
	}
	p.stopSent = true
	return nil
}

func (p *PlayerService) journal(ctx context.Context, turn game.Turn) {
	if p.turns == nil {
		return
	}
	p.RLock()
	record := game.NewTurnRecord(p.player, turn, time.Now())
	p.RUnlock()

	if err := p.turns.Save(ctx, record); err != nil {
		p.logger.Warning(fmt.Sprintf("journaling turn %d: %s", turn.Number, err))
	}
}

// Status implements i.AgentMonitor.
func (p *PlayerService) Status() i.AgentStatus {
	p.RLock()
	defer p.RUnlock()

	status := i.AgentStatus{
		AgentID: p.player.ID(),
		Session: p.player.Session(),
		State:   p.player.State(),
		Turns:   p.player.Turns(),
	}
	if last, ok := p.player.LastTurn(); ok {
		status.LastTurn = &last
	}
	return status
}

// WorldRows implements i.AgentMonitor.
func (p *PlayerService) WorldRows() [][]string {
	p.RLock()
	defer p.RUnlock()
	return p.player.World().Symbols()
}

// RecentTurns implements i.AgentMonitor.
func (p *PlayerService) RecentTurns(ctx context.Context, limit int64) ([]*game.TurnRecord, error) {
	if p.turns == nil {
		return nil, ErrJournalDisabled
	}
	if limit <= 0 {
		limit = defaultJournalLimit
	}
	return p.turns.Recent(ctx, p.player.ID(), limit)
}

// StartGame implements i.AgentMonitor.
func (p *PlayerService) StartGame(ctx context.Context) error {
	return p.broker.Publish(ctx, p.player.Session().StartTopic(), []byte(game.StartToken))
}

// StopGame implements i.AgentMonitor.
func (p *PlayerService) StopGame(ctx context.Context) error {
	return p.broker.Publish(ctx, p.player.Session().StartTopic(), []byte(game.StopToken))
}
