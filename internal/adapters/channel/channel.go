package channel

// Sink receives decoded channel traffic. All calls happen from one receive
// loop in arrival order; there is never more than one in flight.
type Sink interface {
	ItemEvent(payload []byte)
	SyncEvent(payload []byte)
	AlertEvent(payload []byte)
	Connected()
	Disconnected()
	Reconnected()
}

// Topic names the client subscribes to. Subscribing to the update and alert
// topics is the outbound half of the handshake: the server only targets
// subscribed clients.
const (
	DefaultUpdatesTopic = "inventory:updates"
	DefaultAlertsTopic  = "inventory:alerts"
	DefaultSyncTopic    = "inventory:sync"
	// DefaultLegacyTopic carries the old single-item event name still emitted
	// by older backends; payloads are identical to the updates topic.
	DefaultLegacyTopic = "item:updated"
)

// Config holds the transport settings for the push channel.
type Config struct {
	Addr     string
	Password string
	DB       int

	UpdatesTopic string
	AlertsTopic  string
	SyncTopic    string
	LegacyTopic  string
}

// withDefaults fills unset topic names.
func (c Config) withDefaults() Config {
	if c.UpdatesTopic == "" {
		c.UpdatesTopic = DefaultUpdatesTopic
	}
	if c.AlertsTopic == "" {
		c.AlertsTopic = DefaultAlertsTopic
	}
	if c.SyncTopic == "" {
		c.SyncTopic = DefaultSyncTopic
	}
	if c.LegacyTopic == "" {
		c.LegacyTopic = DefaultLegacyTopic
	}
	return c
}

// topics returns the subscription list in a stable order.
func (c Config) topics() []string {
	return []string{c.UpdatesTopic, c.AlertsTopic, c.SyncTopic, c.LegacyTopic}
}
