package integration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dcversus/prp-sub007/internal/engine"
	"github.com/dcversus/prp-sub007/internal/orchestrator"
)

// Sweeper periodically re-drives running executions. Executions idle in
// wait states advance only when driven, so a sweep guarantees that a
// wait condition satisfied by out-of-band context changes is eventually
// noticed.
type Sweeper struct {
	engine   *engine.Engine
	cron     *cron.Cron
	interval time.Duration
}

func NewSweeper(eng *engine.Engine, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		engine:   eng,
		cron:     cron.New(),
		interval: interval,
	}
}

// Start schedules the sweep and begins the cron scheduler.
func (s *Sweeper) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("schedule redrive sweep: %w", err)
	}
	s.cron.Start()
	slog.Info("redrive sweeper started", "interval", s.interval)
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	ctx := context.Background()
	execs, err := s.engine.ListExecutions(ctx)
	if err != nil {
		slog.Warn("redrive sweep list failed", "err", err)
		return
	}
	redriven := 0
	for _, exec := range execs {
		if exec.Status != orchestrator.ExecutionRunning {
			continue
		}
		if err := s.engine.Redrive(ctx, exec.ID); err != nil {
			slog.Warn("redrive failed", "execution", exec.ID, "err", err)
			continue
		}
		redriven++
	}
	if redriven > 0 {
		slog.Debug("redrive sweep", "executions", redriven)
	}
}
