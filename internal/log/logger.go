package log

import (
	"context"

	"github.com/go-logr/logr"
)

// FromContext returns the logger carried by ctx, or a discarding logger when
// none was attached.
func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}

// NewContext attaches logger to ctx.
func NewContext(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}
