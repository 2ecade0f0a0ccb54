package injector

import (
	"github.com/google/wire"

	"github.com/fermisquasar/Filling-the-Void/internal/config"
	"github.com/fermisquasar/Filling-the-Void/internal/core/events/bus"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/server"
	"github.com/fermisquasar/Filling-the-Void/internal/simulation"
)

// Runtime is everything a command needs to drive one session.
type Runtime struct {
	Config *config.Config
	Logger log.Log
	Bus    bus.EventBus
	World  *simulation.World
	Runner *simulation.Runner
	Hub    *server.Hub
	Server *server.HTTPServer
}

// TelemetryEnabled reports whether Server should be started.
func (r *Runtime) TelemetryEnabled() bool { return r.Config.Telemetry.Enabled }

var ProviderSet = wire.NewSet(
	ProvideBus,
	ProvideWorld,
	ProvideScript,
	ProvideRunner,
	ProvideHub,
	ProvideHTTPServer,
	ProvideRuntime,
)

func ProvideBus() bus.EventBus {
	return bus.New()
}

func ProvideWorld(cfg *config.Config, b bus.EventBus, logger log.Log) (*simulation.World, func(), error) {
	w, err := simulation.NewWorld(*cfg, b, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := w.Close(); err != nil {
			logger.Warn("Failed to close world", log.Error(err))
		}
	}
	return w, cleanup, nil
}

func ProvideScript(cfg *config.Config) (*simulation.Script, error) {
	return simulation.ParseScript(cfg.Script)
}

func ProvideRunner(cfg *config.Config, w *simulation.World, script *simulation.Script, logger log.Log) *simulation.Runner {
	return simulation.NewRunner(w, cfg.Runner, script, logger)
}

func ProvideHub(cfg *config.Config, logger log.Log) *server.Hub {
	return server.NewHub(server.HubConfigFrom(cfg.Telemetry), logger)
}

func ProvideHTTPServer(cfg *config.Config, hub *server.Hub, logger log.Log) *server.HTTPServer {
	return server.NewHTTPServer(cfg.Telemetry, hub, logger)
}

// ProvideRuntime feeds detailed frames to the hub when telemetry is on.
func ProvideRuntime(
	cfg *config.Config,
	logger log.Log,
	b bus.EventBus,
	w *simulation.World,
	runner *simulation.Runner,
	hub *server.Hub,
	srv *server.HTTPServer,
) *Runtime {
	if cfg.Telemetry.Enabled {
		runner.OnFrame(func(s simulation.Snapshot) { hub.Publish(s) }, true)
	}
	return &Runtime{
		Config: cfg,
		Logger: logger,
		Bus:    b,
		World:  w,
		Runner: runner,
		Hub:    hub,
		Server: srv,
	}
}
