package obs

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

type ctxKey string

const RunIDKey ctxKey = "run_id"

// WithRunID tags ctx with the id of the current populate or refresh run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func RunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// Time logs the duration of op, measured on clock, when the returned func is
// called, along with the error errp points to, if any.
func Time(ctx context.Context, log *zap.Logger, clock clockwork.Clock, op string) func(errp *error) {
	start := clock.Now()
	runID := RunID(ctx)

	return func(errp *error) {
		fields := []zap.Field{
			zap.String("run_id", runID),
			zap.String("op", op),
			zap.Int64("dur_ms", clock.Since(start).Milliseconds()),
		}

		if errp != nil && *errp != nil {
			log.Warn("op failed", append(fields, zap.Error(*errp))...)
			return
		}
		log.Debug("op done", fields...)
	}
}
