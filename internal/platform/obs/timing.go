package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID stores the request id used by Time and the HTTP logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id carried by ctx, or "".
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

// Time starts a timer for the named operation. Call the returned func with a
// pointer to the operation's error, typically from a defer.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		outcome := "ok"
		if errp != nil && *errp != nil {
			outcome = "error"
		}
		OperationDuration.WithLabelValues(name, outcome).Observe(dur.Seconds())

		if outcome == "error" {
			zap.L().Warn("operation failed",
				zap.String("req_id", reqID),
				zap.String("op", name),
				zap.Int64("dur_ms", dur.Milliseconds()),
				zap.Error(*errp),
			)
			return
		}
		zap.L().Debug("operation done",
			zap.String("req_id", reqID),
			zap.String("op", name),
			zap.Int64("dur_ms", dur.Milliseconds()),
		)
	}
}
