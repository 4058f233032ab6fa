package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/koi-console/internal/console/core/domain/entity"
)

// Anonymous is the subject of requests made without a session.
const Anonymous = "anonymous"

type subjectKey struct{}

// SessionSource is the part of the store the session middleware reads.
type SessionSource interface {
	Current(ctx context.Context) (entity.Session, error)
}

// Session resolves the caller's role and stores it as the request subject.
// A session that expired since the last request is answered with 401 so the
// client can send the user back to the login form.
func Session(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := Anonymous
			sess, err := src.Current(r.Context())
			switch {
			case err == nil:
				if role, ok := entity.ParseRole(sess.User.Role); ok {
					subject = string(role)
				} else {
					slog.WarnContext(r.Context(), "session carries unknown role", "role", sess.User.Role)
				}
			case errors.Is(err, entity.ErrExpiredSession):
				writeError(w, http.StatusUnauthorized, "session_expired", err.Error())
				return
			case !errors.Is(err, entity.ErrNoSession):
				writeError(w, http.StatusInternalServerError, "session_error", err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Subject returns the role the session middleware resolved, or Anonymous.
func Subject(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey{}).(string); ok {
		return s
	}
	return Anonymous
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: code, Message: msg})
}
