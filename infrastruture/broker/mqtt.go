package broker

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	defaultQoS            byte = 1
	defaultConnectTimeout      = 10 * time.Second
)

// MQTTConfig holds the connection settings of an MQTT broker.
type MQTTConfig struct {
	Host     string // Broker host name
	Port     int    // Broker port, 8883 for TLS
	ClientID string // Client identifier, must be unique per connection
	Username string // Username for the broker
	Password string // Password for the broker
	TLS      bool   // Connect over TLS
	QoS      byte   // QoS used for publish and subscribe

	// Unordered runs each handler on its own goroutine. Handlers that publish
	// and wait need it; ordered handlers share the router goroutine and must
	// not block.
	Unordered bool
}

// MQTT is an i.Broker backed by an MQTT client. Subscriptions are kept and
// restored whenever the client reconnects, since a clean session drops them
// on the broker side.
type MQTT struct {
	client mqtt.Client
	qos    byte
	logger i.Logger
	routes map[string]mqtt.MessageHandler
	sync.Mutex
}

// BrokerURL returns the connection URL for c.
func (c MQTTConfig) BrokerURL() string {
	scheme := "tcp"
	if c.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// NewMQTT connects to the broker described by c.
func NewMQTT(ctx context.Context, c MQTTConfig, logger i.Logger) (*MQTT, error) {
	qos := c.QoS
	if qos > 2 {
		qos = defaultQoS
	}
	m := &MQTT{
		qos:    qos,
		logger: logger,
		routes: make(map[string]mqtt.MessageHandler),
	}

	opts := mqtt.NewClientOptions().
		AddBroker(c.BrokerURL()).
		SetClientID(c.ClientID).
		SetUsername(c.Username).
		SetPassword(c.Password).
		SetAutoReconnect(true).
		SetOrderMatters(!c.Unordered).
		SetConnectTimeout(defaultConnectTimeout).
		SetOnConnectHandler(func(client mqtt.Client) {
			logger.Info(fmt.Sprintf("connected to %s", c.BrokerURL()))
			m.resubscribe(client)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warning(fmt.Sprintf("connection lost: %s", err))
		})
	if c.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	m.client = mqtt.NewClient(opts)
	if err := wait(ctx, m.client.Connect()); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.BrokerURL(), err)
	}
	return m, nil
}

// Publish implements i.Broker.
func (m *MQTT) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := wait(ctx, m.client.Publish(topic, m.qos, false, payload)); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Subscribe implements i.Broker. A later subscription to the same topic
// replaces the handler.
func (m *MQTT) Subscribe(ctx context.Context, topic string, h i.MessageHandler) error {
	route := func(_ mqtt.Client, msg mqtt.Message) {
		h(msg.Topic(), msg.Payload())
	}
	if err := wait(ctx, m.client.Subscribe(topic, m.qos, route)); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}

	m.Lock()
	m.routes[topic] = route
	m.Unlock()
	m.logger.Info(fmt.Sprintf("subscribed to %s", topic))
	return nil
}

// resubscribe restores every recorded subscription on client. It runs on the
// client's connect callback goroutine, so waiting here does not stall delivery.
func (m *MQTT) resubscribe(client mqtt.Client) {
	m.Lock()
	routes := make(map[string]mqtt.MessageHandler, len(m.routes))
	for topic, route := range m.routes {
		routes[topic] = route
	}
	m.Unlock()

	for topic, route := range routes {
		token := client.Subscribe(topic, m.qos, route)
		if !token.WaitTimeout(defaultConnectTimeout) {
			m.logger.Error(fmt.Sprintf("resubscribing to %s: timed out", topic))
			continue
		}
		if err := token.Error(); err != nil {
			m.logger.Error(fmt.Sprintf("resubscribing to %s: %s", topic, err))
			continue
		}
		m.logger.Info(fmt.Sprintf("resubscribed to %s", topic))
	}
}

// Close implements i.Broker.
func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}

// wait blocks until the token completes or ctx is done.
func wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
