package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/najmulislamnajim/odms-cache/internal/domain"
	"github.com/najmulislamnajim/odms-cache/internal/platform/obs"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

// TodaySentinel stands in for the current date in a refresh request.
const TodaySentinel = "1"

// Refresher rebuilds a single cache entry on demand, outside the batch.
type Refresher struct {
	Source ports.SourceConnector
	Cache  ports.CacheConnector
	Log    *zap.Logger
	Clock  clockwork.Clock
}

func NewRefresher(source ports.SourceConnector, cache ports.CacheConnector, log *zap.Logger, clock clockwork.Clock) *Refresher {
	return &Refresher{Source: source, Cache: cache, Log: log, Clock: clock}
}

// ResolveBillingDate turns a refresh date argument into a calendar date.
// TodaySentinel resolves to now's date in now's location.
func ResolveBillingDate(arg string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(arg) == TodaySentinel {
		return now, nil
	}
	return domain.ParseBillingDate(arg)
}

// Refresh extracts, serializes and writes the entry for one
// (agent code, billing date) pair on fresh connections. Unlike a batch
// worker it stops at the first problem, including an empty result.
func (r *Refresher) Refresh(ctx context.Context, agentCode, billingDate string) (_ domain.UnitOutcome, err error) {
	ctx = obs.WithRunID(ctx, uuid.NewString())
	defer obs.Time(ctx, r.Log, r.Clock, "refresh")(&err)

	agentCode = strings.TrimSpace(agentCode)
	if agentCode == "" {
		return domain.UnitOutcome{}, errors.New("refresh: agent code must not be empty")
	}

	date, err := ResolveBillingDate(billingDate, r.Clock.Now())
	if err != nil {
		return domain.UnitOutcome{}, fmt.Errorf("refresh: %w", err)
	}
	unit := domain.NewWorkUnit(date, agentCode)

	log := r.Log.With(
		zap.String("run_id", obs.RunID(ctx)),
		zap.String("billing_date", unit.Date()),
		zap.String("da_code", unit.AgentCode),
	)
	start := r.Clock.Now()
	log.Info("refresh started")

	src, err := r.Source.Connect(ctx)
	if err != nil {
		log.Error("source connection failed", zap.Error(err))
		return domain.UnitOutcome{Unit: unit, Key: unit.CacheKey(), Status: domain.StatusConnectFailed, Err: err}, fmt.Errorf("refresh %s: %w", unit, err)
	}
	defer closeLogged(log, "source", src.Close)

	store, err := r.Cache.Connect(ctx)
	if err != nil {
		log.Error("cache connection failed", zap.Error(err))
		return domain.UnitOutcome{Unit: unit, Key: unit.CacheKey(), Status: domain.StatusConnectFailed, Err: err}, fmt.Errorf("refresh %s: %w", unit, err)
	}
	defer closeLogged(log, "cache", store.Close)

	outcome := processUnit(ctx, src, store, unit)
	logOutcome(log, outcome)
	if outcome.Status != domain.StatusWritten {
		return outcome, fmt.Errorf("refresh %s: %s: %w", unit, outcome.Status, outcome.Err)
	}

	log.Info("refresh completed", zap.Duration("total_time", r.Clock.Since(start)))
	return outcome, nil
}
