package interceptors

import (
	"context"
	"net/http"

	"github.com/jcmexdev/koi-console/internal/pkg/interceptors/constants"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, constants.ContextKeyIdempotencyKey, key)
}

// RequestID returns the request id stored in ctx, or "" when none is set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(constants.ContextKeyRequestID).(string)
	return id
}

func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(constants.ContextKeyIdempotencyKey).(string)
	return key
}

// propagatingTransport copies request-scoped ids from the request context onto
// outgoing headers so the API can correlate console calls with its own logs.
type propagatingTransport struct {
	next http.RoundTripper
}

// NewPropagatingTransport wraps next; a nil next uses http.DefaultTransport.
func NewPropagatingTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &propagatingTransport{next: next}
}

func (t *propagatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	requestID := RequestID(ctx)
	idempotencyKey := IdempotencyKey(ctx)
	if requestID == "" && idempotencyKey == "" {
		return t.next.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	out := req.Clone(ctx)
	if requestID != "" && out.Header.Get(constants.HeaderXRequestId) == "" {
		out.Header.Set(constants.HeaderXRequestId, requestID)
	}
	if idempotencyKey != "" && out.Header.Get(constants.HeaderXIdempotencyKey) == "" {
		out.Header.Set(constants.HeaderXIdempotencyKey, idempotencyKey)
	}
	return t.next.RoundTrip(out)
}
