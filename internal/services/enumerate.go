package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/najmulislamnajim/odms-cache/internal/domain"
	"github.com/najmulislamnajim/odms-cache/internal/platform/obs"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

var ErrSourceUnavailable = errors.New("source store unavailable")

// Enumerate lists today's work units over a short-lived source connection.
// A connection failure is reported as ErrSourceUnavailable with no units.
func Enumerate(ctx context.Context, connector ports.SourceConnector, log *zap.Logger, clock clockwork.Clock) (_ []domain.WorkUnit, err error) {
	defer obs.Time(ctx, log, clock, "enumerate")(&err)

	src, err := connector.Connect(ctx)
	if err != nil {
		log.Error("source connection failed",
			zap.String("run_id", obs.RunID(ctx)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("enumerate: %w: %w", ErrSourceUnavailable, err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			log.Warn("close source", zap.Error(cerr))
		}
	}()

	units, err := src.ListWorkUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate: %w", err)
	}
	return units, nil
}
