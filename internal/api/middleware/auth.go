package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/ladder/internal/api/apierr"
	"github.com/mcoot/ladder/internal/model"
	"github.com/mcoot/ladder/internal/services/auth"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Auth creates authentication middleware
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Fall back to cookie
	cookie, err := r.Cookie("session")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// MustGetUserID returns the authenticated user's ID or panics
func MustGetUserID(ctx context.Context) model.UserID {
	session := GetSession(ctx)
	if session == nil {
		panic("no session in context - auth middleware not applied?")
	}
	return session.UserID
}
