package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/identity"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	"github.com/google/uuid"
)

type message struct {
	topic   string
	payload string
}

// loopback is an in-memory broker that delivers every publish to the
// handlers subscribed to that exact topic.
type loopback struct {
	handlers  map[string][]i.MessageHandler
	published []message
	failOn    map[string]error
	sync.Mutex
}

func newLoopback() *loopback {
	return &loopback{
		handlers: make(map[string][]i.MessageHandler),
		failOn:   make(map[string]error),
	}
}

func (l *loopback) Publish(_ context.Context, topic string, payload []byte) error {
	l.Lock()
	if err, ok := l.failOn[topic]; ok {
		l.Unlock()
		return err
	}
	l.published = append(l.published, message{topic: topic, payload: string(payload)})
	handlers := append([]i.MessageHandler(nil), l.handlers[topic]...)
	l.Unlock()

	for _, h := range handlers {
		h(topic, payload)
	}
	return nil
}

func (l *loopback) Subscribe(_ context.Context, topic string, h i.MessageHandler) error {
	l.Lock()
	defer l.Unlock()
	l.handlers[topic] = append(l.handlers[topic], h)
	return nil
}

func (l *loopback) Close() error {
	return nil
}

func (l *loopback) subscribed(topic string) bool {
	l.Lock()
	defer l.Unlock()
	return len(l.handlers[topic]) > 0
}

func (l *loopback) handlerCount(topic string) int {
	l.Lock()
	defer l.Unlock()
	return len(l.handlers[topic])
}

// on returns the payloads published on topic, in order.
func (l *loopback) on(topic string) []string {
	l.Lock()
	defer l.Unlock()
	var payloads []string
	for _, m := range l.published {
		if m.topic == topic {
			payloads = append(payloads, m.payload)
		}
	}
	return payloads
}

type recordingLogger struct {
	lines []string
	sync.Mutex
}

func (r *recordingLogger) write(level, msg string) {
	r.Lock()
	defer r.Unlock()
	r.lines = append(r.lines, level+" "+msg)
}

func (r *recordingLogger) Info(msg string)    { r.write("INFO", msg) }
func (r *recordingLogger) Warning(msg string) { r.write("WARNING", msg) }
func (r *recordingLogger) Error(msg string)   { r.write("ERROR", msg) }

func (r *recordingLogger) contains(level, fragment string) bool {
	r.Lock()
	defer r.Unlock()
	for _, l := range r.lines {
		if strings.HasPrefix(l, level+" ") && strings.Contains(l, fragment) {
			return true
		}
	}
	return false
}

type memoryTurns struct {
	records []*game.TurnRecord
	err     error
	sync.Mutex
}

func (m *memoryTurns) Save(_ context.Context, r *game.TurnRecord) error {
	m.Lock()
	defer m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, r)
	return nil
}

func (m *memoryTurns) Recent(_ context.Context, agentID uuid.UUID, limit int64) ([]*game.TurnRecord, error) {
	m.Lock()
	defer m.Unlock()
	var result []*game.TurnRecord
	for n := len(m.records) - 1; n >= 0 && int64(len(result)) < limit; n-- {
		if m.records[n].AgentID == agentID {
			result = append(result, m.records[n])
		}
	}
	return result, nil
}

func (m *memoryTurns) count() int {
	m.Lock()
	defer m.Unlock()
	return len(m.records)
}

type stubLease struct {
	acquireErr error
	acquired   bool
	released   bool
	sync.Mutex
}

func (s *stubLease) Acquire(context.Context) error {
	s.Lock()
	defer s.Unlock()
	if s.acquireErr != nil {
		return s.acquireErr
	}
	s.acquired = true
	return nil
}

func (s *stubLease) Refresh(context.Context) error {
	return nil
}

func (s *stubLease) Release(context.Context) error {
	s.Lock()
	defer s.Unlock()
	s.released = true
	return nil
}

func (s *stubLease) wasReleased() bool {
	s.Lock()
	defer s.Unlock()
	return s.released
}

var errOperatorNotFound = errors.New("operator not found")

type memoryOperators struct {
	byName map[string]*identity.Operator
}

func (m *memoryOperators) Save(o *identity.Operator) error {
	m.byName[o.Username] = o
	return nil
}

func (m *memoryOperators) ByID(id uuid.UUID) (*identity.Operator, error) {
	for _, o := range m.byName {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, errOperatorNotFound
}

func (m *memoryOperators) ByUsername(username string) (*identity.Operator, error) {
	if o, ok := m.byName[username]; ok {
		return o, nil
	}
	return nil, errOperatorNotFound
}

type memoryLeaderboard struct {
	scores map[string]int
	sync.Mutex
}

func (m *memoryLeaderboard) Record(_ context.Context, lobby, team string, score int) error {
	m.Lock()
	defer m.Unlock()
	m.scores[lobby+"/"+team] = score
	return nil
}

func (m *memoryLeaderboard) Top(_ context.Context, lobby string, n int64) ([]i.Standing, error) {
	m.Lock()
	defer m.Unlock()
	var standings []i.Standing
	for key, score := range m.scores {
		if team, ok := strings.CutPrefix(key, lobby+"/"); ok && int64(len(standings)) < n {
			standings = append(standings, i.Standing{Team: team, Score: score})
		}
	}
	return standings, nil
}
