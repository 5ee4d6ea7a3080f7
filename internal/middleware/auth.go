package middleware

import (
	"net/http"
	"strings"

	"github.com/streamslot/streamslot/internal/auth"
	"github.com/streamslot/streamslot/internal/store"
)

const sessionCookieName = "streamslot_session"

// sessionToken pulls the session token from the Authorization header
// (Bearer scheme) or the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tok
		}
	}
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// RequireAuth validates the session token and attaches the caller identity
// to the request context. API clients get a plain 401, never a redirect.
func RequireAuth(sessions *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := sessionToken(r)
			if tok == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			sess, err := sessions.GetByToken(tok)
			if err != nil || sess == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			caller := auth.Caller{
				UserID:    sess.UserID,
				SessionID: sess.Token,
			}

			ctx := auth.WithCaller(r.Context(), caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
