package middleware

import (
	"context"
	"errors"
	"net/http"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"
	"evalue-storefront/pkg/utils"
)

// Authenticator turns a bearer token into a session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
}

// RequireAuth rejects requests without a valid, unrevoked token.
func RequireAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := utils.TokenFromRequest(r)
			if token == "" {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
				return
			}

			sess, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrRemoteUnavailable) {
					logger.WithContext(r.Context()).Error().Err(err).Msg("Token check failed")
					utils.WriteError(w, http.StatusServiceUnavailable, "Authentication temporarily unavailable")
					return
				}
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
		})
	}
}

// OptionalAuth attaches a session when the request carries a valid token and
// passes anonymous requests through unchanged.
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := utils.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				logger.WithContext(r.Context()).Debug().Err(err).Msg("Ignoring unusable token")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
		})
	}
}

func withSession(ctx context.Context, sess *domain.Session) context.Context {
	ctx = domain.ContextWithSession(ctx, sess)
	l := logger.WithUserID(*logger.WithContext(ctx), sess.UserID())
	return logger.NewContext(ctx, &l)
}
