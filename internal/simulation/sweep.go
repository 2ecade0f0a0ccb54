package simulation

import (
	"context"
	"fmt"
	"math"

	"github.com/fermisquasar/Filling-the-Void/internal/config"
	"github.com/fermisquasar/Filling-the-Void/internal/core/observability/log"
	"github.com/fermisquasar/Filling-the-Void/pkg/concurrent"
)

// SessionResult is the outcome of one headless session of a sweep.
type SessionResult struct {
	Name  string   `json:"name"`
	Final Snapshot `json:"final"`
}

// SweepSummary aggregates a sweep.
type SweepSummary struct {
	Sessions      int     `json:"sessions"`
	MeanScore     float64 `json:"mean_score"`
	MinScore      int     `json:"min_score"`
	MaxScore      int     `json:"max_score"`
	MeanCollected float64 `json:"mean_collected"`
	MeanConsumed  float64 `json:"mean_consumed"`
}

// RunSession runs one headless session to completion.
func RunSession(ctx context.Context, cfg config.Config, logger log.Log) (Snapshot, error) {
	cfg.Runner.Realtime = false
	if cfg.Runner.Duration <= 0 {
		return Snapshot{}, fmt.Errorf("%w: headless session needs a positive duration", config.ErrInvalidConfig)
	}
	script, err := ParseScript(cfg.Script)
	if err != nil {
		return Snapshot{}, err
	}
	w, err := NewWorld(cfg, nil, logger)
	if err != nil {
		return Snapshot{}, err
	}
	defer w.Close()
	return NewRunner(w, cfg.Runner, script, logger).Run(ctx)
}

// Sweep runs sessions independent copies of base, each seeded from its
// derived session name, at most parallel at a time.
func Sweep(ctx context.Context, base config.Config, sessions, parallel int, logger log.Log) ([]SessionResult, error) {
	if logger == nil {
		logger = log.NewNop()
	}
	names := make([]string, sessions)
	for i := range names {
		names[i] = SessionName(base.Seed, i)
	}
	return concurrent.Map(ctx, names, parallel, func(ctx context.Context, name string) (SessionResult, error) {
		cfg := base
		cfg.Seed = name
		final, err := RunSession(ctx, cfg, logger)
		if err != nil {
			return SessionResult{}, fmt.Errorf("session %s: %w", name, err)
		}
		return SessionResult{Name: name, Final: final}, nil
	})
}

func Summarize(results []SessionResult) SweepSummary {
	s := SweepSummary{Sessions: len(results)}
	if len(results) == 0 {
		return s
	}
	s.MinScore = math.MaxInt
	s.MaxScore = math.MinInt
	var score, collected, consumed float64
	for _, r := range results {
		st := r.Final.Stats
		score += float64(st.Score)
		collected += float64(st.Collected)
		consumed += float64(st.TotalConsumed())
		s.MinScore = min(s.MinScore, st.Score)
		s.MaxScore = max(s.MaxScore, st.Score)
	}
	n := float64(len(results))
	s.MeanScore = score / n
	s.MeanCollected = collected / n
	s.MeanConsumed = consumed / n
	return s
}
