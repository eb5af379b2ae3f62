package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/najmulislamnajim/odms-cache/internal/codec"
	"github.com/najmulislamnajim/odms-cache/internal/domain"
	"github.com/najmulislamnajim/odms-cache/internal/platform/obs"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

// Populator materializes one partition of work units into the cache.
// Each Populate call owns one source and one cache connection for its whole
// partition and shares nothing with other calls.
type Populator struct {
	Source ports.SourceConnector
	Cache  ports.CacheConnector
	Log    *zap.Logger
}

func NewPopulator(source ports.SourceConnector, cache ports.CacheConnector, log *zap.Logger) *Populator {
	return &Populator{Source: source, Cache: cache, Log: log}
}

// Populate processes units strictly in order. Per-unit failures are recorded
// and skipped; failing to connect at startup fails every unit in the partition.
func (p *Populator) Populate(ctx context.Context, worker int, units []domain.WorkUnit) (report domain.WorkerReport) {
	report = domain.WorkerReport{Worker: worker, Outcomes: make([]domain.UnitOutcome, 0, len(units))}
	if len(units) == 0 {
		return report
	}

	log := p.Log.With(zap.String("run_id", obs.RunID(ctx)), zap.Int("worker", worker))

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("worker %d panicked: %v", worker, r)
			log.Error("worker aborted", zap.Error(err))
			report.Outcomes = failRemaining(report.Outcomes, units, domain.StatusWorkerFailed, err)
		}
	}()

	src, err := p.Source.Connect(ctx)
	if err != nil {
		log.Error("source connection failed, skipping partition", zap.Int("units", len(units)), zap.Error(err))
		report.Outcomes = failRemaining(report.Outcomes, units, domain.StatusConnectFailed, err)
		return report
	}
	defer closeLogged(log, "source", src.Close)

	store, err := p.Cache.Connect(ctx)
	if err != nil {
		log.Error("cache connection failed, skipping partition", zap.Int("units", len(units)), zap.Error(err))
		report.Outcomes = failRemaining(report.Outcomes, units, domain.StatusConnectFailed, err)
		return report
	}
	defer closeLogged(log, "cache", store.Close)

	for _, unit := range units {
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled, skipping remaining units", zap.Int("remaining", len(units)-len(report.Outcomes)))
			report.Outcomes = failRemaining(report.Outcomes, units, domain.StatusWorkerFailed, err)
			return report
		}

		outcome := processUnit(ctx, src, store, unit)
		logOutcome(log, outcome)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}

// processUnit runs extract, serialize and write for one unit against
// already-open connections.
func processUnit(ctx context.Context, src ports.DeliverySource, store ports.CacheStore, unit domain.WorkUnit) domain.UnitOutcome {
	out := domain.UnitOutcome{Unit: unit, Key: unit.CacheKey()}

	rs, err := src.FetchDeliveryInfo(ctx, unit)
	if err != nil {
		out.Status, out.Err = domain.StatusQueryFailed, err
		return out
	}
	if rs.Empty() {
		out.Status, out.Err = domain.StatusEmpty, domain.ErrNoData
		return out
	}
	out.Rows = len(rs.Rows)

	body, err := codec.Encode(rs)
	if err != nil {
		out.Status, out.Err = domain.StatusEncodeFailed, err
		return out
	}

	if err := store.Set(ctx, out.Key, body); err != nil {
		out.Status, out.Err = domain.StatusWriteFailed, err
		return out
	}

	out.Status = domain.StatusWritten
	return out
}

func logOutcome(log *zap.Logger, o domain.UnitOutcome) {
	fields := []zap.Field{
		zap.String("billing_date", o.Unit.Date()),
		zap.String("da_code", o.Unit.AgentCode),
		zap.String("key", o.Key),
	}

	switch o.Status {
	case domain.StatusWritten:
		log.Info("saved", append(fields, zap.Int("rows", o.Rows))...)
	case domain.StatusEmpty:
		log.Warn("no data found", fields...)
	case domain.StatusEncodeFailed:
		// Points at a column type the codec does not know: schema drift.
		log.Error("serialize failed", append(fields, zap.Error(o.Err))...)
	default:
		log.Warn("unit failed", append(fields, zap.String("status", string(o.Status)), zap.Error(o.Err))...)
	}
}

// failRemaining records status for every unit not yet in done.
func failRemaining(done []domain.UnitOutcome, units []domain.WorkUnit, status domain.UnitStatus, err error) []domain.UnitOutcome {
	for _, u := range units[len(done):] {
		done = append(done, domain.UnitOutcome{Unit: u, Key: u.CacheKey(), Status: status, Err: err})
	}
	return done
}

func closeLogged(log *zap.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		log.Warn("close "+what, zap.Error(err))
	}
}
