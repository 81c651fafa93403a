package injector

import (
	"time"

	"github.com/google/wire"

	"github.com/zeusync/handarena/internal/config"
	"github.com/zeusync/handarena/internal/core/arena"
	"github.com/zeusync/handarena/internal/core/events/bus"
	"github.com/zeusync/handarena/internal/core/observability/log"
	"github.com/zeusync/handarena/internal/driver"
	"github.com/zeusync/handarena/internal/scores"
	"github.com/zeusync/handarena/internal/server"
)

// LogOutput is a zap output path: a file, "stdout" or "stderr".
type LogOutput string

// App is the assembled application graph.
type App struct {
	Config  config.Config
	Logger  log.Log
	Bus     bus.EventBus
	Arena   *arena.Arena
	Driver  *driver.Driver
	Tracker *scores.Tracker
	Server  *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideArena,
	ProvideStore,
	ProvideTracker,
	ProvideDriver,
	ProvideServer,
)

func ProvideLogger(cfg config.Config, out LogOutput) (log.Log, func(), error) {
	if out == "" {
		out = "stderr"
	}
	l, err := log.NewWithOutput(cfg.Level(), string(out))
	if err != nil {
		return nil, nil, err
	}
	return l, func() { _ = l.Sync() }, nil
}

func ProvideBus() bus.EventBus {
	return bus.New()
}

// ProvideArena seeds the jitter source from the config, or from the clock
// when the seed is zero.
func ProvideArena(cfg config.Config, logger log.Log, b bus.EventBus) (*arena.Arena, error) {
	ac, err := cfg.ArenaConfig()
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Info("Arena seeded", log.Uint64("seed", seed))
	return arena.New(ac, arena.WithLogger(logger), arena.WithBus(b), arena.WithSeed(seed))
}

func ProvideStore(cfg config.Config) scores.Store {
	if cfg.BestTimePath == "" {
		return &scores.MemoryStore{}
	}
	return scores.NewFileStore(cfg.BestTimePath)
}

func ProvideTracker(store scores.Store, logger log.Log, b bus.EventBus) (*scores.Tracker, func(), error) {
	t := scores.NewTracker(store, logger)
	if err := t.Attach(b); err != nil {
		return nil, nil, err
	}
	return t, t.Detach, nil
}

func ProvideDriver(cfg config.Config, a *arena.Arena, b bus.EventBus, logger log.Log) (*driver.Driver, error) {
	return driver.New(a, b, driver.Config{
		ClockPeriod: cfg.Driver.ClockPeriod,
		FramePeriod: cfg.Driver.FramePeriod,
		EndedDelay:  cfg.Driver.EndedDelay,
		InboxSize:   cfg.Driver.InboxSize,
	}, logger)
}

func ProvideServer(cfg config.Config, d *driver.Driver, t *scores.Tracker, logger log.Log) *server.Server {
	return server.New(server.Config{
		ListenAddr:     cfg.ListenAddr,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		PingPeriod:     cfg.Server.PingPeriod,
		MaxMessageSize: cfg.Server.MaxMessageSize,
	}, d, t, logger)
}
