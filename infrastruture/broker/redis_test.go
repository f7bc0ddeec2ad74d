package broker

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type discardLogger struct{}

func (discardLogger) Info(string)    {}
func (discardLogger) Warning(string) {}
func (discardLogger) Error(string)   {}

func TestRedisPubSubClose(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	b := NewRedisPubSub(client, discardLogger{})
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close(), "closing twice is a no-op")

	ctx := context.Background()
	assert.ErrorIs(t, b.Publish(ctx, "games/FirstLobby/start", []byte("START")), ErrBrokerClosed)
	assert.ErrorIs(t, b.Subscribe(ctx, "games/FirstLobby/start", func(string, []byte) {}), ErrBrokerClosed)
}
