package http

import (
	"context"
	"net/http"

	"github.com/edavydova/shortlink/internal/models"
	"github.com/edavydova/shortlink/pkg/response"
	"github.com/go-chi/render"
)

// sessionCookie is the name of the cookie carrying the opaque session token.
const sessionCookie = "session"

type ctxKey int

const authUserKey ctxKey = iota

// loadSession resolves the session cookie, if any, and attaches the
// authenticated identity to the request context. Requests without a live
// session pass through untouched; requireSession draws the line.
func loadSession(sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := sessions.Get(r.Context(), cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), authUserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireSession rejects requests that don't carry a live session.
func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := authUserFrom(r.Context()); !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.UnauthorizedResponse)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func authUserFrom(ctx context.Context) (models.AuthUser, bool) {
	user, ok := ctx.Value(authUserKey).(models.AuthUser)
	return user, ok
}
