package obs

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const requestIDKey ctxKey = "req_id"

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Time logs how long the named operation took once the returned func is deferred.
//
//	defer obs.Time(ctx, logger, "reoptimize_routes")(&err)
func Time(ctx context.Context, logger *slog.Logger, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		attrs := []any{
			"req_id", RequestID(ctx),
			"op", name,
			"dur_ms", time.Since(start).Milliseconds(),
		}

		if errp != nil && *errp != nil {
			logger.ErrorContext(ctx, "operation failed", append(attrs, "err", *errp)...)
			return
		}
		logger.InfoContext(ctx, "operation finished", attrs...)
	}
}
