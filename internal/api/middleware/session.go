package middleware

import (
	"context"
	"net/http"

	"github.com/phrazzld/task-api/internal/platform/logger"
	"github.com/phrazzld/task-api/internal/store"
)

// SessionOpener opens a request-scoped store session.
type SessionOpener interface {
	Begin(ctx context.Context) *store.Session
}

// SessionScope opens one store session per request and ends it when the
// handler returns, including when it panics. The session and its logger are
// placed in the request context.
func SessionScope(opener SessionOpener) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := opener.Begin(r.Context())
			defer s.End()

			ctx := logger.WithLogger(r.Context(), s.Logger())
			ctx = store.WithSession(ctx, s)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
