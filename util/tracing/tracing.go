package tracing

import (
	"context"

	"github.com/bwise1/groupsplit_api/util/values"
)

// Context carries the identifiers attached to every request by the tracing middleware.
type Context struct {
	RequestID     string `json:"request_id"`
	RequestSource string `json:"request_source"`
}

// FromContext returns the tracing context stored on ctx, or an empty one.
func FromContext(ctx context.Context) Context {
	tc, _ := ctx.Value(values.ContextTracingKey).(Context)
	return tc
}
