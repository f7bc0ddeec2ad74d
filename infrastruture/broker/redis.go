// Package broker adapts publish/subscribe transports to i.Broker.
package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	"github.com/redis/go-redis/v9"
)

var (
	ErrBrokerClosed = errors.New("broker closed")
)

// RedisPubSub publishes and subscribes over redis channels named after topics.
type RedisPubSub struct {
	client *redis.Client
	logger i.Logger
	subs   []*redis.PubSub
	closed bool
	wg     sync.WaitGroup
	sync.Mutex
}

// NewRedisPubSub wraps an existing redis client.
func NewRedisPubSub(client *redis.Client, logger i.Logger) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		logger: logger,
	}
}

// Publish implements i.Broker.
func (r *RedisPubSub) Publish(ctx context.Context, topic string, payload []byte) error {
	if r.isClosed() {
		return ErrBrokerClosed
	}
	if err := r.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Subscribe implements i.Broker. Messages are delivered from a goroutine owned by the broker.
func (r *RedisPubSub) Subscribe(ctx context.Context, topic string, h i.MessageHandler) error {
	r.Lock()
	defer r.Unlock()
	if r.closed {
		return ErrBrokerClosed
	}

	sub := r.client.Subscribe(ctx, topic)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	r.subs = append(r.subs, sub)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for msg := range sub.Channel() {
			h(msg.Channel, []byte(msg.Payload))
		}
	}()

	r.logger.Info(fmt.Sprintf("subscribed to %s", topic))
	return nil
}

// Close implements i.Broker.
func (r *RedisPubSub) Close() error {
	r.Lock()
	if r.closed {
		r.Unlock()
		return nil
	}
	r.closed = true
	subs := r.subs
	r.subs = nil
	r.Unlock()

	var errs []error
	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.wg.Wait()
	return errors.Join(errs...)
}

func (r *RedisPubSub) isClosed() bool {
	r.Lock()
	defer r.Unlock()
	return r.closed
}
