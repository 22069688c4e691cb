package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// receiveRetryDelay paces the receive loop while the transport is down;
// go-redis handles the actual redial and resubscription.
const receiveRetryDelay = time.Second

// Logger is the slice of the runtime logger the client uses.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

// Client subscribes to the inventory topics over Redis Pub/Sub and feeds the
// sink. Lifecycle transitions and payloads are delivered from a single
// goroutine, so the sink sees strictly ordered, non-concurrent calls.
type Client struct {
	cfg    Config
	sink   Sink
	logger Logger

	rdb    *redis.Client
	pubsub *redis.PubSub
	done   chan struct{}
}

// New constructs a channel client. The sink is required; a nil logger
// discards diagnostics.
func New(cfg Config, sink Sink, logger Logger) *Client {
	return &Client{
		cfg:    cfg.withDefaults(),
		sink:   sink,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Connect dials the transport, subscribes to the inventory topics, and
// starts the receive loop. The initial Connected signal fires once the
// subscription is confirmed.
func (c *Client) Connect(ctx context.Context) error {
	c.rdb = redis.NewClient(&redis.Options{
		Addr:     c.cfg.Addr,
		Password: c.cfg.Password,
		DB:       c.cfg.DB,
	})
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("dial channel transport %q: %w", c.cfg.Addr, err)
	}

	c.pubsub = c.rdb.Subscribe(ctx, c.cfg.topics()...)
	// Confirm the first subscription before reporting connected.
	if _, err := c.pubsub.Receive(ctx); err != nil {
		_ = c.pubsub.Close()
		return fmt.Errorf("subscribe inventory topics: %w", err)
	}
	c.infof("channel connected", "addr", c.cfg.Addr, "topics", c.cfg.topics())

	go c.loop(ctx)
	return nil
}

// Close tears the subscription down. Already-applied state is untouched and
// outstanding notification timers keep running; only event delivery stops.
func (c *Client) Close() error {
	close(c.done)
	var errs []error
	if c.pubsub != nil {
		errs = append(errs, c.pubsub.Close())
	}
	if c.rdb != nil {
		errs = append(errs, c.rdb.Close())
	}
	return errors.Join(errs...)
}

// loop is the single receive goroutine. Receive errors mark the channel down;
// the next successful receive after a failure is a reconnect, which go-redis
// backs with its own redial and resubscription.
func (c *Client) loop(ctx context.Context) {
	c.sink.Connected()

	down := false
	for {
		msg, err := c.pubsub.Receive(ctx)
		if err != nil {
			if c.closing(ctx) {
				return
			}
			if !down {
				down = true
				c.warnf("channel receive failed", "err", err)
				c.sink.Disconnected()
			}
			select {
			case <-time.After(receiveRetryDelay):
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
			continue
		}
		if down {
			down = false
			c.infof("channel reconnected", "addr", c.cfg.Addr)
			c.sink.Reconnected()
		}

		switch m := msg.(type) {
		case *redis.Message:
			c.dispatch(m.Channel, []byte(m.Payload))
		case *redis.Subscription:
			c.debugf("subscription state", "kind", m.Kind, "topic", m.Channel, "count", m.Count)
		}
	}
}

// dispatch routes one payload by topic. The legacy topic shares the item
// event path.
func (c *Client) dispatch(topic string, payload []byte) {
	switch topic {
	case c.cfg.UpdatesTopic, c.cfg.LegacyTopic:
		c.sink.ItemEvent(payload)
	case c.cfg.SyncTopic:
		c.sink.SyncEvent(payload)
	case c.cfg.AlertsTopic:
		c.sink.AlertEvent(payload)
	default:
		c.debugf("ignoring message on unknown topic", "topic", topic)
	}
}

func (c *Client) closing(ctx context.Context) bool {
	select {
	case <-c.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (c *Client) debugf(msg string, keyvals ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, keyvals...)
	}
}

func (c *Client) infof(msg string, keyvals ...interface{}) {
	if c.logger != nil {
		c.logger.Info(msg, keyvals...)
	}
}

func (c *Client) warnf(msg string, keyvals ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, keyvals...)
	}
}
