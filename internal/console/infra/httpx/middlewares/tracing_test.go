package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/jcmexdev/koi-console/internal/pkg/interceptors"
	"github.com/jcmexdev/koi-console/internal/pkg/interceptors/constants"
)

func TestAttachTracingMetadata(t *testing.T) {
	var gotID, gotKey string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = interceptors.RequestID(r.Context())
		gotKey = interceptors.IdempotencyKey(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.Header.Set(constants.HeaderXIdempotencyKey, "key-1")
	rec := httptest.NewRecorder()
	middleware.RequestID(AttachTracingMetadata(next)).ServeHTTP(rec, req)

	assert.NotEmpty(t, gotID)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, gotID, rec.Header().Get(constants.HeaderXRequestId))
}
