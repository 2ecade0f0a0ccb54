package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/injector"
)

const shutdownTimeout = 5 * time.Second

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one session and print its final snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd)
		},
	}

	flags := cmd.Flags()
	flags.Float64("duration", 0, "simulated seconds to run, 0 runs until interrupted")
	flags.Bool("realtime", false, "pace frames with the wall clock")
	flags.Bool("telemetry", false, "serve snapshots over HTTP and websocket")
	flags.String("addr", "", "telemetry listen address")
	flags.String("seed", "", "session seed")
	for key, name := range map[string]string{
		"runner.duration":   "duration",
		"runner.realtime":   "realtime",
		"telemetry.enabled": "telemetry",
		"telemetry.addr":    "addr",
		"seed":              "seed",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}
	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command) error {
	rt, cleanup, err := injector.InitializeRuntime(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if rt.TelemetryEnabled() {
		if err := rt.Server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := rt.Server.Stop(stopCtx); err != nil {
				a.logger.Warn("Telemetry shutdown failed", log.Error(err))
			}
		}()
	}

	a.logger.Info("Session starting", log.String("seed", a.cfg.Seed))
	final, err := rt.Runner.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(final)
}
