package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/internal/simulation"
)

type sweepOutput struct {
	Summary  simulation.SweepSummary     `json:"summary"`
	Sessions []simulation.SessionResult `json:"sessions,omitempty"`
}

func newSweepCmd(a *app) *cobra.Command {
	var (
		sessions int
		parallel int
		verbose  bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run seeded headless sessions in parallel and summarize them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := simulation.Sweep(cmd.Context(), *a.cfg, sessions, parallel, a.logger)
			if err != nil {
				return err
			}
			out := sweepOutput{Summary: simulation.Summarize(results)}
			if verbose {
				out.Sessions = results
			}
			a.logger.Info("Sweep finished",
				log.Int("sessions", out.Summary.Sessions),
				log.Float64("mean_score", out.Summary.MeanScore))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().IntVar(&sessions, "sessions", 8, "number of sessions")
	cmd.Flags().IntVar(&parallel, "parallel", runtime.NumCPU(), "sessions run at once")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "include every session's final snapshot")
	return cmd
}
