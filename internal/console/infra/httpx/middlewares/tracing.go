package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/koi-console/internal/pkg/interceptors"
	"github.com/jcmexdev/koi-console/internal/pkg/interceptors/constants"
)

// AttachTracingMetadata moves the chi request id and the caller's
// idempotency key into the request context, where the API client picks them
// up for outgoing calls.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(constants.HeaderXIdempotencyKey)

		ctx := r.Context()
		if requestID != "" {
			ctx = interceptors.WithRequestID(ctx, requestID)
			w.Header().Set(constants.HeaderXRequestId, requestID)
		}
		if idempotencyKey != "" {
			ctx = interceptors.WithIdempotencyKey(ctx, idempotencyKey)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
