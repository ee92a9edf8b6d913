package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Timeouts bounds every repository call
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
}

// WithTimeout bounds ctx by timeout unless the caller already set an earlier
// deadline. A SessionContext is returned unchanged because wrapping it would
// detach the operation from its session.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}
