package main

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/hylla/lagerkoll/internal/adapters/api"
	"github.com/hylla/lagerkoll/internal/adapters/channel"
	"github.com/hylla/lagerkoll/internal/app"
	"github.com/hylla/lagerkoll/internal/notify"
	"github.com/hylla/lagerkoll/internal/tui"
)

// connectRetryDelay paces dial attempts while the channel transport is
// unreachable at startup.
const connectRetryDelay = 5 * time.Second

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// runDashboard wires the reconciler into the terminal dashboard. All state
// mutation happens inside the program loop; the channel adapter only posts
// messages through program.Send.
func runDashboard(ctx context.Context, flags *rootFlags) error {
	env, err := resolveRuntime(flags)
	if err != nil {
		return err
	}
	logger := env.logger
	// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the dashboard is active.
	logger.SetConsoleEnabled(false)
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			logger.SetConsoleEnabled(true)
			logger.Warn("close runtime log sink failed", "err", closeErr)
		}
	}()

	// No queue scheduler in TUI mode: toast expiry rides the program loop's
	// tick messages so every dismissal stays on the single writer.
	queue := notify.NewQueue(nil, nil)
	svc := app.NewService(queue, nil, logger, app.ServiceConfig{})

	sessionID := uuid.NewString()
	creator := api.New(env.cfg.API.BaseURL, sessionID, time.Duration(env.cfg.API.TimeoutSeconds)*time.Second)
	logger.Debug("api client initialized", "base_url", env.cfg.API.BaseURL, "session_id", sessionID)

	m := tui.NewModel(
		svc,
		queue,
		tui.WithItemCreator(creator),
		tui.WithMaxToasts(env.cfg.UI.MaxToasts),
		tui.WithLowStockAccent(env.cfg.UI.LowStockAccent),
		tui.WithShowHelp(env.cfg.UI.ShowHelp),
	)
	p := programFactory(m)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := channel.New(channelConfig(env.cfg.Channel), &programSink{send: p.Send}, logger)
	go connectWithRetry(ctx, client, logger)
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("channel close failed", "err", closeErr)
		}
	}()

	logger.Info("starting dashboard program loop", "session_id", sessionID)
	if _, err := p.Run(); err != nil {
		logger.Error("dashboard terminated with error", "err", err)
		return fmt.Errorf("run dashboard: %w", err)
	}
	logger.Info("dashboard closed")
	return nil
}

// connectWithRetry dials the channel until it succeeds or the run ends. The
// dashboard starts offline in the meantime and flips live on the Connected
// message.
func connectWithRetry(ctx context.Context, client *channel.Client, logger *runtimeLogger) {
	for {
		err := client.Connect(ctx)
		if err == nil {
			return
		}
		logger.Warn("channel connect failed, retrying", "err", err, "retry_in", connectRetryDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(connectRetryDelay):
		}
	}
}

// programSink forwards channel traffic into the program loop. The receive
// goroutine never touches model state directly.
type programSink struct {
	send func(tea.Msg)
}

func (s *programSink) ItemEvent(payload []byte) { s.send(tui.ItemEventMsg{Payload: payload}) }
func (s *programSink) SyncEvent(payload []byte) { s.send(tui.SyncEventMsg{Payload: payload}) }
func (s *programSink) AlertEvent(payload []byte) {
	s.send(tui.AlertEventMsg{Payload: payload})
}
func (s *programSink) Connected()    { s.send(tui.ConnectedMsg{}) }
func (s *programSink) Disconnected() { s.send(tui.DisconnectedMsg{}) }
func (s *programSink) Reconnected()  { s.send(tui.ReconnectedMsg{}) }
