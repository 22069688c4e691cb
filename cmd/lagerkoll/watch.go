package main

import (
	"context"
	"fmt"

	"github.com/hylla/lagerkoll/internal/adapters/channel"
	"github.com/hylla/lagerkoll/internal/app"
	"github.com/hylla/lagerkoll/internal/domain"
	"github.com/hylla/lagerkoll/internal/notify"
)

// runWatch runs the reconciler headless: same dedup, apply, and notification
// semantics as the dashboard, with every produced notification logged instead
// of rendered. Useful for tailing a live channel from a shell.
func runWatch(ctx context.Context, flags *rootFlags) error {
	env, err := resolveRuntime(flags)
	if err != nil {
		return err
	}
	logger := env.logger
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			logger.Warn("close runtime log sink failed", "err", closeErr)
		}
	}()

	// Real timers expire notifications here; there is no program loop to
	// drive ticks.
	queue := notify.NewQueue(nil, notify.AfterFuncScheduler)
	svc := app.NewService(&loggingNotifier{queue: queue, logger: logger}, nil, logger, app.ServiceConfig{})

	client := channel.New(channelConfig(env.cfg.Channel), &watchSink{svc: svc, logger: logger}, logger)
	if err := client.Connect(ctx); err != nil {
		return fmt.Errorf("connect channel: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("channel close failed", "err", closeErr)
		}
	}()

	logger.Info("watching channel", "addr", env.cfg.Channel.Addr)
	<-ctx.Done()
	logger.Info("watch stopped", "items", len(svc.Items()))
	return nil
}

// loggingNotifier queues notifications and logs each one as it is produced.
type loggingNotifier struct {
	queue  *notify.Queue
	logger *runtimeLogger
}

// Enqueue implements app.Notifier.
func (n *loggingNotifier) Enqueue(spec domain.NotificationSpec) domain.Notification {
	notification := n.queue.Enqueue(spec)
	n.logger.Info("notification",
		"id", notification.ID,
		"kind", notification.Kind,
		"message", notification.Message,
		"duration", notification.Duration,
	)
	return notification
}

// watchSink feeds channel traffic straight into the reconciler. The adapter
// delivers from one goroutine, so the service keeps its single-writer
// guarantee without locks.
type watchSink struct {
	svc    *app.Service
	logger *runtimeLogger
}

func (s *watchSink) ItemEvent(payload []byte) {
	s.svc.HandleItemEvent(payload)
}

func (s *watchSink) SyncEvent(payload []byte) {
	if applied := s.svc.HandleSync(payload); applied > 0 {
		s.logger.Info("sync applied", "items", applied)
	}
}

func (s *watchSink) AlertEvent(payload []byte) {
	s.svc.HandleAlert(payload)
}

func (s *watchSink) Connected() {
	s.svc.HandleConnected()
}

func (s *watchSink) Disconnected() {
	s.svc.HandleDisconnected()
	s.logger.Warn("channel connection lost")
}

func (s *watchSink) Reconnected() {
	s.svc.HandleReconnected()
	s.logger.Info("channel reconnected, dedup state cleared")
}
