package app

import (
	"fmt"
	"time"

	"github.com/hylla/lagerkoll/internal/domain"
	"github.com/hylla/lagerkoll/internal/notify"
)

// Reconciler tuning. The burst window and cap come from the observed delivery
// behavior of the channel: redeliveries arrive in tight bursts, so a short
// window over a handful of records is enough.
const (
	defaultDedupWindow = 1000 * time.Millisecond
	defaultDedupCap    = 10
	defaultAlertKeyCap = 256
	syncLoadedDuration = 3 * time.Second
)

// ServiceConfig holds configuration for the reconciler service.
type ServiceConfig struct {
	DedupWindow time.Duration
	DedupCap    int
	AlertKeyCap int
}

// Service is the update reconciler plus the inventory state it feeds. It
// absorbs raw payloads from the push channel, suppresses redundant
// deliveries, folds admitted events into the item list, and hands the
// resulting change descriptors to the notification producer.
//
// Service is written for a single caller: in the TUI every method runs inside
// the program loop, in headless mode inside the channel receive loop. It
// holds no locks of its own.
type Service struct {
	notifier Notifier
	clock    Clock
	logger   Logger

	items       []domain.Item
	connected   bool
	lastUpdated time.Time
	pending     *domain.Change

	recentUpdates *dedupRing
	seenAlerts    *keyRing
}

// NewService constructs a reconciler service. A nil clock falls back to
// time.Now; a nil logger discards diagnostics.
func NewService(notifier Notifier, clock Clock, logger Logger, cfg ServiceConfig) *Service {
	if clock == nil {
		clock = time.Now
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = defaultDedupWindow
	}
	if cfg.DedupCap <= 0 {
		cfg.DedupCap = defaultDedupCap
	}
	if cfg.AlertKeyCap <= 0 {
		cfg.AlertKeyCap = defaultAlertKeyCap
	}
	return &Service{
		notifier:      notifier,
		clock:         clock,
		logger:        logger,
		recentUpdates: newDedupRing(cfg.DedupCap, cfg.DedupWindow),
		seenAlerts:    newKeyRing(cfg.AlertKeyCap),
	}
}

// Items returns a copy of the current item list in creation order.
func (s *Service) Items() []domain.Item {
	out := make([]domain.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Connected reports the channel connection flag.
func (s *Service) Connected() bool {
	return s.connected
}

// LastUpdated returns the timestamp of the most recent applied change; zero
// when nothing has been applied yet.
func (s *Service) LastUpdated() time.Time {
	return s.lastUpdated
}

// PendingChange exposes the unconsumed change descriptor, if any.
func (s *Service) PendingChange() *domain.Change {
	if s.pending == nil {
		return nil
	}
	c := *s.pending
	return &c
}

// HandleItemEvent absorbs one single-item payload. Malformed payloads and
// redeliveries inside the burst window are dropped with a diagnostic; the
// return value reports whether a change was applied.
func (s *Service) HandleItemEvent(payload []byte) bool {
	item, err := domain.DecodeItemPayload(payload)
	if err != nil {
		s.debugf("dropping malformed item event", "err", err)
		return false
	}
	now := s.clock()
	if s.recentUpdates.Seen(item, now) {
		s.debugf("skipping duplicate update", "item", item.Name)
		return false
	}
	s.recentUpdates.Admit(item, now)
	s.apply(item, now)
	s.publishPending()
	return true
}

// HandleSync absorbs a full-list sync payload. Every entry goes through the
// same per-item validation and apply path but bypasses the burst window:
// sync is authoritative. Returns the number of applied entries.
//
// Intermediate change descriptors overwrite each other unconsumed, so at most
// one item notification leaves a sync, plus the one-time loaded notification
// when the store was empty beforehand. That keeps a reconnect resync from
// turning into a notification storm.
func (s *Service) HandleSync(payload []byte) int {
	entries, err := domain.DecodeSyncPayload(payload)
	if err != nil {
		s.debugf("dropping malformed sync event", "err", err)
		return 0
	}

	wasEmpty := len(s.items) == 0
	applied := 0
	for _, raw := range entries {
		item, err := domain.DecodeItemPayload(raw)
		if err != nil {
			s.debugf("dropping malformed sync entry", "err", err)
			continue
		}
		s.apply(item, s.clock())
		applied++
	}
	s.publishPending()

	if applied > 0 && wasEmpty {
		s.notify(domain.NotificationSpec{
			Message:  fmt.Sprintf("Connected - Loaded %d items", applied),
			Kind:     domain.NotificationSuccess,
			Duration: syncLoadedDuration,
		})
	}
	return applied
}

// HandleAlert absorbs one alert payload from the side channel. Alerts never
// touch the item list; an admitted alert produces exactly one notification.
func (s *Service) HandleAlert(payload []byte) bool {
	alert, err := domain.DecodeAlertPayload(payload)
	if err != nil {
		s.debugf("dropping malformed alert", "err", err)
		return false
	}
	key := alert.DedupKey()
	if s.seenAlerts.Seen(key) {
		s.debugf("skipping duplicate alert", "key", key)
		return false
	}
	s.seenAlerts.Admit(key)

	s.notify(domain.NotificationSpec{
		Message:      alert.ComposeMessage(),
		Kind:         alert.NotificationKind(),
		Duration:     alert.DisplayDuration(),
		Severity:     alert.Severity,
		CurrentCount: alert.CurrentCount,
		Threshold:    alert.Threshold,
	})
	return true
}

// HandleConnected marks the channel connected. Topic subscription is the
// adapter's side of the handshake and has already happened.
func (s *Service) HandleConnected() {
	s.connected = true
}

// HandleDisconnected marks the channel disconnected. Items are retained; the
// flag drives a passive status indicator, not a notification.
func (s *Service) HandleDisconnected() {
	s.connected = false
}

// HandleReconnected clears both dedup records before the adapter's
// resubscription delivers replayed state, then marks the channel connected.
func (s *Service) HandleReconnected() {
	s.recentUpdates.Reset()
	s.seenAlerts.Reset()
	s.connected = true
}

// apply folds one validated item into the list and stages the change
// descriptor. A pending unconsumed descriptor is overwritten, never queued.
func (s *Service) apply(item domain.Item, now time.Time) {
	for idx := range s.items {
		if s.items[idx].ID != item.ID {
			continue
		}
		oldStock := s.items[idx].Stock
		s.items[idx].Name = item.Name
		s.items[idx].Stock = item.Stock
		s.pending = &domain.Change{
			Kind:     domain.ChangeUpdated,
			Item:     s.items[idx],
			OldStock: oldStock,
			At:       now,
		}
		s.lastUpdated = now
		return
	}

	s.items = append(s.items, item)
	s.pending = &domain.Change{
		Kind: domain.ChangeCreated,
		Item: item,
		At:   now,
	}
	s.lastUpdated = now
}

// publishPending consumes the staged change descriptor into a notification,
// exactly once. No-op when nothing is pending.
func (s *Service) publishPending() {
	if s.pending == nil {
		return
	}
	change := *s.pending
	s.pending = nil
	s.notify(notify.FromChange(change))
}

func (s *Service) notify(spec domain.NotificationSpec) {
	if s.notifier == nil {
		return
	}
	s.notifier.Enqueue(spec)
}

func (s *Service) debugf(msg string, keyvals ...interface{}) {
	if s.logger == nil {
		return
	}
	s.logger.Debug(msg, keyvals...)
}
