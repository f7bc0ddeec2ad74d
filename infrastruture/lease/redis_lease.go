// Package lease keeps a player identity exclusive to one running agent.
package lease

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-autoplayer/game"
	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	leaseKeyFmt  = "autoplayer:%s:%s:lease"
	defaultTries = 3
)

var (
	ErrLeaseNotHeld = errors.New("lease not held")
	ErrLeaseLost    = errors.New("lease lost")
)

// RedisLease is a redsync mutex named after the lobby and player.
type RedisLease struct {
	mutex *redsync.Mutex
}

// NewRedisLease creates a lease for the session that expires after ttl unless refreshed.
func NewRedisLease(client *redis.Client, s game.Session, ttl time.Duration) (i.Lease, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid lease ttl: %s", ttl)
	}

	pool := goredis.NewPool(client)
	locker := redsync.New(pool)
	mutex := locker.NewMutex(
		LeaseKey(s),
		redsync.WithExpiry(ttl),
		redsync.WithTries(defaultTries),
	)
	return &RedisLease{mutex: mutex}, nil
}

// LeaseKey returns the redis key guarding a session.
func LeaseKey(s game.Session) string {
	return fmt.Sprintf(leaseKeyFmt, s.LobbyName, s.PlayerName)
}

// Acquire takes the lease. It fails if another agent holds it.
func (l *RedisLease) Acquire(ctx context.Context) error {
	if err := l.mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("acquiring %s: %w", l.mutex.Name(), err)
	}
	return nil
}

// Refresh extends the lease expiry.
func (l *RedisLease) Refresh(ctx context.Context) error {
	ok, err := l.mutex.ExtendContext(ctx)
	if err != nil {
		return fmt.Errorf("refreshing %s: %w", l.mutex.Name(), err)
	}
	if !ok {
		return ErrLeaseLost
	}
	return nil
}

// Release gives the lease up.
func (l *RedisLease) Release(ctx context.Context) error {
	ok, err := l.mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("releasing %s: %w", l.mutex.Name(), err)
	}
	if !ok {
		return ErrLeaseNotHeld
	}
	return nil
}
