package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/marina-office/internal/domain"
	"github.com/user/marina-office/internal/pkg/token"
)

type contextKey string

const actorKey contextKey = "actor"

// Auth is a middleware factory that validates the bearer token and attaches
// the resolved actor to the request context.
func Auth(jwtSecret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized: bearer token required", http.StatusUnauthorized)
				return
			}

			claims, err := token.Validate(strings.TrimPrefix(header, "Bearer "), jwtSecret)
			if err != nil {
				logger.Warn("invalid bearer token", "remote_addr", r.RemoteAddr, "error", err)
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom returns the actor attached by Auth.
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

// RequireRole rejects requests whose actor holds none of the given roles.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
