package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/najmulislamnajim/odms-cache/internal/domain"
	"github.com/najmulislamnajim/odms-cache/internal/platform/obs"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

// Orchestrator runs a full populate: enumerate today's units, partition them
// and fan out one Populator call per partition.
type Orchestrator struct {
	Source     ports.SourceConnector
	Populator  *Populator
	MaxWorkers int
	Log        *zap.Logger
	Clock      clockwork.Clock
}

func NewOrchestrator(source ports.SourceConnector, cache ports.CacheConnector, maxWorkers int, log *zap.Logger, clock clockwork.Clock) *Orchestrator {
	return &Orchestrator{
		Source:     source,
		Populator:  NewPopulator(source, cache, log),
		MaxWorkers: maxWorkers,
		Log:        log,
		Clock:      clock,
	}
}

// Run executes one batch and returns its summary. An error means the run
// stopped before any worker started.
func (o *Orchestrator) Run(ctx context.Context) (domain.RunSummary, error) {
	runID := uuid.NewString()
	ctx = obs.WithRunID(ctx, runID)
	log := o.Log.With(zap.String("run_id", runID))

	start := o.Clock.Now()
	log.Info("process started")

	units, err := Enumerate(ctx, o.Source, o.Log, o.Clock)
	if err != nil {
		log.Error("enumeration failed, stopping run", zap.Error(err))
		return domain.RunSummary{RunID: runID, Duration: o.Clock.Since(start)}, fmt.Errorf("run: %w", err)
	}

	log.Info("work units found", zap.Int("total", len(units)))
	if len(units) == 0 {
		log.Warn("no work units found for today")
		return domain.RunSummary{RunID: runID, Duration: o.Clock.Since(start)}, nil
	}

	reports, err := o.Dispatch(ctx, units)
	if err != nil {
		return domain.RunSummary{RunID: runID, Duration: o.Clock.Since(start)}, fmt.Errorf("run: %w", err)
	}

	summary := domain.Summarize(runID, reports, o.Clock.Since(start))
	log.Info("process completed",
		zap.Int("workers", summary.Workers),
		zap.Int("units", summary.Units),
		zap.Int("written", summary.Written),
		zap.Int("empty", summary.Empty),
		zap.Int("failed", summary.Failed),
		zap.Duration("total_time", summary.Duration),
	)
	for _, f := range summary.FailedUnits {
		log.Warn("failed unit",
			zap.String("billing_date", f.Unit.Date()),
			zap.String("da_code", f.Unit.AgentCode),
			zap.String("status", string(f.Status)),
			zap.Error(f.Err),
		)
	}

	return summary, nil
}

// Dispatch partitions units across min(MaxWorkers, len(units)) workers and
// blocks until every worker has returned. Reports are indexed by partition.
func (o *Orchestrator) Dispatch(ctx context.Context, units []domain.WorkUnit) ([]domain.WorkerReport, error) {
	workers := WorkerCount(o.MaxWorkers, len(units))
	if workers == 0 {
		return nil, nil
	}

	parts, err := Partition(units, workers)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %w", err)
	}

	reports := make([]domain.WorkerReport, len(parts))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, part := range parts {
		g.Go(func() error {
			reports[i] = o.Populator.Populate(ctx, i, part)
			return nil
		})
	}
	_ = g.Wait()

	return reports, nil
}
