package progression

import (
	"context"

	"keydojo/adapters/memory"
	"keydojo/analytics"
	"keydojo/core"
	"keydojo/engine"
	"keydojo/leaderboard"
	"keydojo/realtime"
)

// Option configures the progression service builder.
type Option func(*config)

type config struct {
	storage engine.Storage
	clock   engine.Clock
	mode    engine.DispatchMode
	hub     *realtime.Hub
	board   leaderboard.Board
	hooks   []analytics.Hook
}

// WithStorage sets the persistence adapter.
func WithStorage(s engine.Storage) Option { return func(c *config) { c.storage = s } }

// WithClock overrides the time source (tests mostly).
func WithClock(clk engine.Clock) Option { return func(c *config) { c.clock = clk } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all progression events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithLeaderboard keeps a board current from experience events.
func WithLeaderboard(b leaderboard.Board) Option { return func(c *config) { c.board = b } }

// WithAnalytics feeds every event into the given hooks.
func WithAnalytics(hooks ...analytics.Hook) Option {
	return func(c *config) { c.hooks = append(c.hooks, hooks...) }
}

// New builds a configured ProgressionService. If not provided, defaults are used:
//   - storage: in-memory
//   - dispatch: async
func New(opts ...Option) *engine.ProgressionService {
	cfg := &config{mode: engine.DispatchAsync}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.storage == nil {
		cfg.storage = memory.New()
	}
	bus := engine.NewEventBus(cfg.mode)
	svc := engine.NewProgressionService(cfg.storage, bus, cfg.clock)

	if cfg.hub != nil {
		bus.SubscribeAll(func(ctx context.Context, e core.Event) { cfg.hub.Broadcast(ctx, e) })
	}
	if cfg.board != nil {
		board := cfg.board
		bus.Subscribe(core.EventExperienceGranted, func(_ context.Context, e core.Event) {
			board.Update(e.Account, int64(e.Total))
		})
	}
	for _, hook := range cfg.hooks {
		hook := hook
		bus.SubscribeAll(func(_ context.Context, e core.Event) { hook.OnEvent(e) })
	}
	return svc
}
