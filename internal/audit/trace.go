package audit

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string // 32 lowercase hex chars, empty without an active span
	SpanID  string
}

// ExtractTraceInfo reads the active span from ctx. Both fields are empty when
// ctx carries no valid span, as in unit tests.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry stamps e with the current time and the trace ids found in ctx.
func NewEntry(ctx context.Context, e Entry) *Entry {
	ti := ExtractTraceInfo(ctx)
	e.TraceID = ti.TraceID
	e.SpanID = ti.SpanID
	e.At = time.Now().UTC()
	return &e
}

// Record saves e through repo. A nil repo disables auditing; save failures
// are logged and never fail the audited action.
func Record(ctx context.Context, repo Repository, e Entry) {
	if repo == nil {
		return
	}
	if err := repo.Save(ctx, NewEntry(ctx, e)); err != nil {
		slog.ErrorContext(ctx, "failed to write audit entry",
			"order_id", e.OrderID,
			"action", e.Action,
			"outcome", e.Outcome,
			"error", err,
		)
	}
}
