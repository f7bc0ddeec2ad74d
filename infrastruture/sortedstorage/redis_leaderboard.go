package sortedstorage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	"github.com/redis/go-redis/v9"
)

var ErrNilClient = errors.New("redis client is required")

// RedisLeaderboard keeps the team scores of each lobby in a Redis sorted set with TTL support.
type RedisLeaderboard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLeaderboard initializes a RedisLeaderboard with the provided Redis client and TTL.
func NewRedisLeaderboard(client *redis.Client, ttlSeconds int) (i.Leaderboard, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return &RedisLeaderboard{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

// LeaderboardKey is the sorted set holding the scores of a lobby.
func LeaderboardKey(lobby string) string {
	return fmt.Sprintf("autoplayer:%s:scores", lobby)
}

// Record sets the score of a team and sets expiration if necessary.
func (l *RedisLeaderboard) Record(ctx context.Context, lobby, team string, score int) error {
	key := LeaderboardKey(lobby)
	_, err := l.client.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: team}).Result()
	if err != nil {
		return err
	}

	// Set expiration only if it's not already set
	ttl, err := l.client.TTL(ctx, key).Result()
	if err == nil && ttl == -1 && l.ttl > 0 {
		_ = l.client.Expire(ctx, key, l.ttl).Err()
	}

	return nil
}

// Top returns up to n teams with the highest scores.
func (l *RedisLeaderboard) Top(ctx context.Context, lobby string, n int64) ([]i.Standing, error) {
	if n <= 0 {
		return nil, nil
	}

	members, err := l.client.ZRevRangeWithScores(ctx, LeaderboardKey(lobby), 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	standings := make([]i.Standing, 0, len(members))
	for _, m := range members {
		team, ok := m.Member.(string)
		if !ok {
			continue
		}
		standings = append(standings, i.Standing{Team: team, Score: int(m.Score)})
	}
	return standings, nil
}
